package scene

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/projection"
)

const epsilon = 1e-9

func testCamera(t *testing.T) projection.Camera {
	t.Helper()
	cam, err := projection.NewCamera(projection.DefaultParams(16.0 / 9.0))
	if err != nil {
		t.Fatalf("NewCamera() error = %v", err)
	}
	return cam
}

func frame(hands ...detector.HandLandmarks) *detector.FrameResult {
	return &detector.FrameResult{Hands: hands, ImageWidth: 1280, ImageHeight: 720}
}

func mapLandmark(t *testing.T, lm detector.Point3D, cam projection.Camera) r3.Vec {
	t.Helper()
	pos, err := projection.Map(lm.X, lm.Y, lm.Z, 1280, 720, cam)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	return pos
}

func assertSideHidden(t *testing.T, pool *Pool, side detector.Side) {
	t.Helper()
	if n := pool.VisibleCount(side); n != 0 {
		t.Errorf("%s: expected no visible markers, got %d", side, n)
	}
}

func assertSideMatches(t *testing.T, pool *Pool, side detector.Side, hand detector.HandLandmarks, cam projection.Camera) {
	t.Helper()
	for i := 0; i < detector.NumLandmarks; i++ {
		m, _ := pool.Marker(side, i)
		if !m.Visible {
			t.Errorf("%s[%d]: expected visible", side, i)
		}
		want := mapLandmark(t, hand.Points[i], cam)
		if m.Position != want {
			t.Errorf("%s[%d]: position %+v, want %+v", side, i, m.Position, want)
		}
		if wantScale := ScaleForDepth(want.Z, DefaultScaleOffset); math.Abs(m.Scale-wantScale) > epsilon {
			t.Errorf("%s[%d]: scale %f, want %f", side, i, m.Scale, wantScale)
		}
	}
}

func TestSynchronizer_NoHands(t *testing.T) {
	cam := testCamera(t)

	inputs := map[string]*detector.FrameResult{
		"nil result":  nil,
		"empty hands": frame(),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			pool := NewPool()
			s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

			// Populate first so the empty frame has something to clear.
			if _, err := s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideLeft), detector.OpenPalmLandmarks(detector.SideRight)), cam); err != nil {
				t.Fatalf("OnFrame() error = %v", err)
			}

			stats, err := s.OnFrame(input, cam)
			if err != nil {
				t.Fatalf("OnFrame() error = %v", err)
			}

			assertSideHidden(t, pool, detector.SideLeft)
			assertSideHidden(t, pool, detector.SideRight)
			if pool.Anchor().Visible {
				t.Error("anchor should be hidden")
			}
			if stats.PalmFound || stats.Processed != 0 {
				t.Errorf("unexpected stats %+v", stats)
			}
		})
	}
}

func TestSynchronizer_SingleRightHand(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)
	hand := detector.OpenPalmLandmarks(detector.SideRight)

	stats, err := s.OnFrame(frame(hand), cam)
	if err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	assertSideHidden(t, pool, detector.SideLeft)
	assertSideMatches(t, pool, detector.SideRight, hand, cam)

	anchor := pool.Anchor()
	if !anchor.Visible {
		t.Error("anchor should be visible")
	}
	if anchor.Scale != 1 {
		t.Errorf("anchor scale = %f, want 1 regardless of depth", anchor.Scale)
	}
	if want := mapLandmark(t, hand.Points[detector.PalmReference], cam); anchor.Position != want {
		t.Errorf("anchor at %+v, want %+v", anchor.Position, want)
	}

	if !stats.Sides[detector.SideRight] || stats.Sides[detector.SideLeft] {
		t.Errorf("unexpected sides %+v", stats.Sides)
	}
	if stats.Hands != 1 || stats.Processed != 1 || !stats.PalmFound {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSynchronizer_BothHands(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)
	left := detector.OpenPalmLandmarks(detector.SideLeft)
	right := detector.OpenPalmLandmarks(detector.SideRight)

	if _, err := s.OnFrame(frame(left, right), cam); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	assertSideMatches(t, pool, detector.SideLeft, left, cam)
	assertSideMatches(t, pool, detector.SideRight, right, cam)

	// The anchor follows the last hand processed.
	if want := mapLandmark(t, right.Points[detector.PalmReference], cam); pool.Anchor().Position != want {
		t.Errorf("anchor at %+v, want %+v", pool.Anchor().Position, want)
	}
}

func TestSynchronizer_HandDisappears(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

	s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideLeft), detector.OpenPalmLandmarks(detector.SideRight)), cam)

	right := detector.OpenPalmLandmarks(detector.SideRight)
	if _, err := s.OnFrame(frame(right), cam); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	assertSideHidden(t, pool, detector.SideLeft)
	assertSideMatches(t, pool, detector.SideRight, right, cam)
}

func TestSynchronizer_DuplicateSideLastWins(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

	first := detector.OpenPalmLandmarks(detector.SideRight)
	second := detector.ThumbsUpLandmarks()

	stats, err := s.OnFrame(frame(first, second), cam)
	if err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	assertSideHidden(t, pool, detector.SideLeft)
	assertSideMatches(t, pool, detector.SideRight, second, cam)
	if want := mapLandmark(t, second.Points[detector.PalmReference], cam); pool.Anchor().Position != want {
		t.Errorf("anchor should follow the second hand")
	}
	if stats.Processed != 2 {
		t.Errorf("expected both hands processed, got %d", stats.Processed)
	}
}

func TestSynchronizer_MalformedSkip(t *testing.T) {
	cam := testCamera(t)

	short := detector.OpenPalmLandmarks(detector.SideLeft)
	short.Points = short.Points[:5]

	unlabeled := detector.OpenPalmLandmarks(detector.SideLeft)
	unlabeled.Handedness = "Unknown"

	t.Run("good hand survives", func(t *testing.T) {
		pool := NewPool()
		s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)
		right := detector.OpenPalmLandmarks(detector.SideRight)

		stats, err := s.OnFrame(frame(short, right, unlabeled), cam)
		if err != nil {
			t.Fatalf("OnFrame() error = %v", err)
		}

		assertSideHidden(t, pool, detector.SideLeft)
		assertSideMatches(t, pool, detector.SideRight, right, cam)
		if stats.Skipped != 2 || len(stats.Malformed) != 2 {
			t.Errorf("expected 2 skipped hands, got %+v", stats)
		}
		for _, err := range stats.Malformed {
			if !errors.Is(err, ErrMalformedHand) {
				t.Errorf("expected ErrMalformedHand, got %v", err)
			}
		}
		if !pool.Anchor().Visible {
			t.Error("anchor should be visible")
		}
	})

	t.Run("only malformed hands", func(t *testing.T) {
		pool := NewPool()
		s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

		stats, err := s.OnFrame(frame(short), cam)
		if err != nil {
			t.Fatalf("OnFrame() error = %v", err)
		}
		if pool.Anchor().Visible || stats.PalmFound {
			t.Error("anchor should be hidden when no hand was processed")
		}
		assertSideHidden(t, pool, detector.SideLeft)
	})
}

func TestSynchronizer_MalformedStrict(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicyStrict, DefaultScaleOffset)

	s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideRight)), cam)

	bad := detector.OpenPalmLandmarks(detector.SideLeft)
	bad.Points = append(bad.Points, detector.Point3D{})

	_, err := s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideRight), bad), cam)
	if !errors.Is(err, ErrMalformedHand) {
		t.Fatalf("expected ErrMalformedHand, got %v", err)
	}
	if !errors.Is(err, detector.ErrLandmarkCount) {
		t.Errorf("expected ErrLandmarkCount in the chain, got %v", err)
	}

	assertSideHidden(t, pool, detector.SideLeft)
	assertSideHidden(t, pool, detector.SideRight)
	if pool.Anchor().Visible {
		t.Error("rejected frame should hide the anchor")
	}
}

func TestSynchronizer_InvalidFrame(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

	s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideRight)), cam)

	bad := frame(detector.OpenPalmLandmarks(detector.SideRight))
	bad.ImageHeight = 0

	if _, err := s.OnFrame(bad, cam); !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
	assertSideHidden(t, pool, detector.SideRight)
	if pool.Anchor().Visible {
		t.Error("anchor should be hidden")
	}
}

func TestSynchronizer_DegenerateCamera(t *testing.T) {
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

	_, err := s.OnFrame(frame(detector.OpenPalmLandmarks(detector.SideRight)), projection.Camera{})
	if !errors.Is(err, projection.ErrDegenerateCamera) {
		t.Fatalf("expected ErrDegenerateCamera, got %v", err)
	}
	assertSideHidden(t, pool, detector.SideRight)
}

func TestNewSynchronizer_UnknownPolicy(t *testing.T) {
	s := NewSynchronizer(NewPool(), MalformedPolicy("panic"), DefaultScaleOffset)
	if s.Policy() != PolicySkip {
		t.Errorf("expected fallback to skip, got %q", s.Policy())
	}
}

func TestEndToEnd_ImageCenter(t *testing.T) {
	cam := testCamera(t)
	pool := NewPool()
	s := NewSynchronizer(pool, PolicySkip, DefaultScaleOffset)

	hand := detector.OpenPalmLandmarks(detector.SideRight)
	for i := range hand.Points {
		hand.Points[i] = detector.Point3D{X: 0.5, Y: 0.5, Z: 0}
	}

	if _, err := s.OnFrame(frame(hand), cam); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	m, _ := pool.Marker(detector.SideRight, detector.PalmReference)
	if math.Abs(m.Position.X) > 1e-6 || math.Abs(m.Position.Y) > 1e-6 {
		t.Errorf("image center should land on the view axis, got %+v", m.Position)
	}
	if want := 1 / (m.Position.Z + 2); math.Abs(m.Scale-want) > epsilon {
		t.Errorf("scale = %f, want %f", m.Scale, want)
	}
}
