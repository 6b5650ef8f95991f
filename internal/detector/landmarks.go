// Package detector provides hand detection interfaces and the landmark types
// emitted by a detector for each camera frame.
package detector

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// PalmReference is the landmark that stands in for the hand's position.
const PalmReference = MiddleMCP

// Handedness labels reported by the detector.
const (
	LabelLeft  = "Left"
	LabelRight = "Right"
)

// Validation errors for a single detected hand.
var (
	ErrLandmarkCount = errors.New("hand does not have 21 landmarks")
	ErrUnknownSide   = errors.New("hand has no Left/Right label")
)

// Side identifies which hand a detection belongs to.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// NumSides is the number of hand sides a frame can carry.
const NumSides = 2

// String returns the detector label for the side.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return LabelLeft
	case SideRight:
		return LabelRight
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide converts a handedness label into a Side.
func ParseSide(label string) (Side, error) {
	switch label {
	case LabelLeft:
		return SideLeft, nil
	case LabelRight:
		return SideRight, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, label)
	}
}

// Point3D is a normalized landmark position. X and Y are in image space
// ([0,1], y grows downward); Z is relative depth, smaller is closer.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand in a single frame.
// A well-formed hand has exactly NumLandmarks points.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Side returns the parsed handedness label.
func (h *HandLandmarks) Side() (Side, error) {
	return ParseSide(h.Handedness)
}

// Validate reports whether the hand satisfies the detector contract.
func (h *HandLandmarks) Validate() error {
	if len(h.Points) != NumLandmarks {
		return fmt.Errorf("%w: got %d", ErrLandmarkCount, len(h.Points))
	}
	if _, err := h.Side(); err != nil {
		return err
	}
	return nil
}

// Palm returns the palm reference landmark.
// The hand must have been validated first.
func (h *HandLandmarks) Palm() Point3D {
	return h.Points[PalmReference]
}

// FrameResult is everything the detector produced for one camera frame.
// ImageWidth and ImageHeight are the source frame's pixel dimensions; the
// normalized landmark coordinates are relative to them.
type FrameResult struct {
	Hands       []HandLandmarks `json:"hands"`
	ImageWidth  int             `json:"image_width"`
	ImageHeight int             `json:"image_height"`
}

// Empty reports whether the frame carries no hands.
func (r *FrameResult) Empty() bool {
	return r == nil || len(r.Hands) == 0
}
