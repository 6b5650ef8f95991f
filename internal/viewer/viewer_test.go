package viewer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handscene/internal/projection"
	"github.com/ayusman/handscene/internal/scene"
)

func newTestCamera(t *testing.T) projection.Camera {
	t.Helper()

	cam, err := projection.NewCamera(projection.DefaultParams(16.0 / 9.0))
	if err != nil {
		t.Fatalf("NewCamera() error = %v", err)
	}
	return cam
}

func TestToScreen(t *testing.T) {
	cam := newTestCamera(t)

	t.Run("camera target is the screen center", func(t *testing.T) {
		x, y, ok := ToScreen(cam, r3.Vec{}, 1280, 720)
		if !ok {
			t.Fatal("origin should be visible")
		}
		if math.Abs(x-640) > 1e-6 || math.Abs(y-360) > 1e-6 {
			t.Errorf("ToScreen(origin) = (%f, %f), want (640, 360)", x, y)
		}
	})

	t.Run("up is toward the top of the screen", func(t *testing.T) {
		_, y, ok := ToScreen(cam, r3.Vec{Y: 0.2}, 1280, 720)
		if !ok || y >= 360 {
			t.Errorf("y = %f, ok = %v; want above center", y, ok)
		}
	})

	t.Run("behind the camera is clipped", func(t *testing.T) {
		if _, _, ok := ToScreen(cam, r3.Vec{Z: 10}, 1280, 720); ok {
			t.Error("point behind the camera should be clipped")
		}
	})

	t.Run("round trip through the mapper", func(t *testing.T) {
		p, err := projection.Map(0.25, 0.75, 0, 1280, 720, cam)
		if err != nil {
			t.Fatalf("Map() error = %v", err)
		}
		x, y, ok := ToScreen(cam, p, 1280, 720)
		if !ok {
			t.Fatal("mapped point should be visible")
		}
		// The mapper stretches X by the image aspect; Y is unchanged.
		wantX := ((2*0.25-1)*1280.0/720.0 + 1) / 2 * 1280
		if math.Abs(x-wantX) > 1e-4 || math.Abs(y-540) > 1e-4 {
			t.Errorf("ToScreen = (%f, %f), want (%f, 540)", x, y, wantX)
		}
	})
}

func TestRadiusPx(t *testing.T) {
	cam := newTestCamera(t)

	near := RadiusPx(cam, r3.Vec{Z: 1}, 0.05, 720)
	far := RadiusPx(cam, r3.Vec{Z: -5}, 0.05, 720)
	if near <= far {
		t.Errorf("closer markers should be larger: near=%f far=%f", near, far)
	}

	if got := RadiusPx(cam, r3.Vec{Z: -900}, scene.MarkerRadius, 720); got != minRadiusPx {
		t.Errorf("tiny marker radius = %f, want clamp %f", got, minRadiusPx)
	}
}

func TestAnchorCorners(t *testing.T) {
	a := scene.Anchor{Marker: scene.Marker{Position: r3.Vec{X: 1}, Scale: 1}}

	corners := AnchorCorners(a)
	for i, c := range corners {
		d := r3.Sub(c, a.Position)
		for _, v := range []float64{d.X, d.Y, d.Z} {
			if math.Abs(math.Abs(v)-scene.AnchorEdgeSize/2) > 1e-12 {
				t.Fatalf("corner %d = %+v, want half-edge offsets from %+v", i, c, a.Position)
			}
		}
	}

	a.Rotation = r3.Vec{X: 0.3, Y: 1.1, Z: -0.4}
	rotated := AnchorCorners(a)
	want := math.Sqrt(3) * scene.AnchorEdgeSize / 2
	for i, c := range rotated {
		if got := r3.Norm(r3.Sub(c, a.Position)); math.Abs(got-want) > 1e-9 {
			t.Errorf("corner %d distance = %f, want %f", i, got, want)
		}
	}
}

func TestAnchorCorners_EulerOrder(t *testing.T) {
	a := scene.Anchor{Marker: scene.Marker{Scale: 1}}
	a.Rotation = r3.Vec{X: math.Pi / 2, Z: math.Pi / 2}

	// Rz(90) maps (x,y,z) to (-y,x,z), then Rx(90) maps that to (-y,-z,x).
	corners := AnchorCorners(a)
	for i, c := range cubeCorners {
		v := r3.Scale(scene.AnchorEdgeSize, c)
		want := r3.Vec{X: -v.Y, Y: -v.Z, Z: v.X}
		if d := r3.Norm(r3.Sub(corners[i], want)); d > 1e-9 {
			t.Errorf("corner %d = %+v, want %+v", i, corners[i], want)
		}
	}
}

func TestHUD(t *testing.T) {
	var snap scene.Snapshot
	snap.Frame = 42
	for i := range snap.Right {
		snap.Right[i].Visible = true
	}
	snap.Left[3].Visible = true

	want := "frame 42  L 1/21  R 21/21  60 tps"
	if got := HUD(snap, 60); got != want {
		t.Errorf("HUD() = %q, want %q", got, want)
	}
}
