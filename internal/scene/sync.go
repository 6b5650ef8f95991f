package scene

import (
	"errors"
	"fmt"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/projection"
)

// Frame errors returned by Synchronizer.OnFrame.
var (
	ErrMalformedHand = errors.New("malformed hand detection")
	ErrInvalidFrame  = errors.New("invalid frame")
)

// MalformedPolicy decides what happens to hands that break the detector
// contract (wrong landmark count or unknown side label).
type MalformedPolicy string

const (
	// PolicySkip drops the offending hand and keeps processing the frame.
	PolicySkip MalformedPolicy = "skip"
	// PolicyStrict rejects the whole frame, which then renders as "no hands".
	PolicyStrict MalformedPolicy = "strict"
)

// Valid reports whether p is a known policy.
func (p MalformedPolicy) Valid() bool {
	return p == PolicySkip || p == PolicyStrict
}

// FrameStats summarizes what OnFrame did with a frame.
type FrameStats struct {
	Hands     int                     // hands reported by the detector
	Processed int                     // hands written to the pool
	Skipped   int                     // malformed hands dropped
	Sides     [detector.NumSides]bool // sides populated this frame
	PalmFound bool                    // anchor visible after the frame
	Malformed []error                 // one entry per skipped hand
}

// Synchronizer writes detector results into a Pool. It is the pool's only
// writer. Hands sharing a side label overwrite each other in order, so the
// last one wins, including for the anchor.
type Synchronizer struct {
	pool        *Pool
	policy      MalformedPolicy
	scaleOffset float64
}

// NewSynchronizer creates a Synchronizer writing into pool.
// An unknown policy falls back to PolicySkip.
func NewSynchronizer(pool *Pool, policy MalformedPolicy, scaleOffset float64) *Synchronizer {
	if !policy.Valid() {
		policy = PolicySkip
	}
	return &Synchronizer{
		pool:        pool,
		policy:      policy,
		scaleOffset: scaleOffset,
	}
}

// Policy returns the malformed hand policy in effect.
func (s *Synchronizer) Policy() MalformedPolicy {
	return s.policy
}

// hideAll hides every landmark marker and the anchor.
func (s *Synchronizer) hideAll() {
	s.pool.HideAll()
	s.pool.SetAnchorVisible(false)
}

// OnFrame applies one detector result to the pool using the camera snapshot
// cam for every landmark.
//
// A nil result or one with no hands hides every marker. Otherwise all
// landmark markers are hidden first and then repopulated from each hand; the
// anchor follows landmark 9 and is visible only if some hand was processed.
func (s *Synchronizer) OnFrame(result *detector.FrameResult, cam projection.Camera) (FrameStats, error) {
	var stats FrameStats

	if result.Empty() {
		s.hideAll()
		return stats, nil
	}
	stats.Hands = len(result.Hands)

	if result.ImageWidth <= 0 || result.ImageHeight <= 0 {
		s.hideAll()
		return stats, fmt.Errorf("%w: image %dx%d", ErrInvalidFrame, result.ImageWidth, result.ImageHeight)
	}

	if s.policy == PolicyStrict {
		for i := range result.Hands {
			if err := result.Hands[i].Validate(); err != nil {
				s.hideAll()
				return stats, fmt.Errorf("%w: hand %d: %w", ErrMalformedHand, i, err)
			}
		}
	}

	s.pool.HideAll()
	palmFound := false

	for i := range result.Hands {
		hand := &result.Hands[i]
		if err := hand.Validate(); err != nil {
			stats.Skipped++
			stats.Malformed = append(stats.Malformed, fmt.Errorf("%w: hand %d: %w", ErrMalformedHand, i, err))
			continue
		}
		side, _ := hand.Side()

		for idx, lm := range hand.Points {
			pos, err := projection.Map(lm.X, lm.Y, lm.Z, result.ImageWidth, result.ImageHeight, cam)
			if err != nil {
				s.hideAll()
				return stats, fmt.Errorf("map landmark %d of hand %d: %w", idx, i, err)
			}

			s.pool.SetVisible(side, idx, true)
			s.pool.SetPosition(side, idx, pos)
			s.pool.SetScale(side, idx, ScaleForDepth(pos.Z, s.scaleOffset))

			if idx == detector.PalmReference {
				s.pool.SetAnchorPosition(pos)
				palmFound = true
			}
		}

		stats.Processed++
		stats.Sides[side] = true
	}

	s.pool.SetAnchorVisible(palmFound)
	stats.PalmFound = palmFound
	return stats, nil
}
