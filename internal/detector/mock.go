package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a preset open palm for the given side.
// All fingers are extended; the palm sits slightly right of and below the
// image center. The Left hand is the mirror image of the Right hand.
func OpenPalmLandmarks(side Side) HandLandmarks {
	right := []Point3D{
		Wrist: {X: 0.50, Y: 0.80, Z: 0.0},

		ThumbCMC: {X: 0.55, Y: 0.75, Z: -0.02},
		ThumbMCP: {X: 0.62, Y: 0.70, Z: -0.03},
		ThumbIP:  {X: 0.68, Y: 0.65, Z: -0.03},
		ThumbTip: {X: 0.73, Y: 0.60, Z: -0.04},

		IndexMCP: {X: 0.55, Y: 0.68, Z: -0.01},
		IndexPIP: {X: 0.57, Y: 0.55, Z: -0.02},
		IndexDIP: {X: 0.58, Y: 0.45, Z: -0.03},
		IndexTip: {X: 0.58, Y: 0.35, Z: -0.04},

		MiddleMCP: {X: 0.50, Y: 0.66, Z: -0.01},
		MiddlePIP: {X: 0.50, Y: 0.52, Z: -0.02},
		MiddleDIP: {X: 0.50, Y: 0.40, Z: -0.03},
		MiddleTip: {X: 0.50, Y: 0.28, Z: -0.04},

		RingMCP: {X: 0.45, Y: 0.68, Z: -0.01},
		RingPIP: {X: 0.43, Y: 0.55, Z: -0.02},
		RingDIP: {X: 0.42, Y: 0.45, Z: -0.03},
		RingTip: {X: 0.42, Y: 0.35, Z: -0.04},

		PinkyMCP: {X: 0.40, Y: 0.70, Z: -0.01},
		PinkyPIP: {X: 0.37, Y: 0.60, Z: -0.02},
		PinkyDIP: {X: 0.35, Y: 0.50, Z: -0.03},
		PinkyTip: {X: 0.34, Y: 0.42, Z: -0.04},
	}

	hand := HandLandmarks{
		Points:     right,
		Handedness: side.String(),
		Score:      0.95,
	}
	if side == SideLeft {
		for i := range hand.Points {
			hand.Points[i].X = 1 - hand.Points[i].X
		}
	}
	return hand
}

// ThumbsUpLandmarks returns a preset Right hand with the thumb extended
// upward while the other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	return HandLandmarks{
		Handedness: LabelRight,
		Score:      0.95,
		Points: []Point3D{
			Wrist: {X: 0.5, Y: 0.8, Z: 0.0},

			ThumbCMC: {X: 0.55, Y: 0.75, Z: 0.0},
			ThumbMCP: {X: 0.58, Y: 0.65, Z: 0.0},
			ThumbIP:  {X: 0.58, Y: 0.50, Z: 0.0},
			ThumbTip: {X: 0.58, Y: 0.35, Z: 0.0},

			IndexMCP: {X: 0.55, Y: 0.70, Z: -0.02},
			IndexPIP: {X: 0.55, Y: 0.68, Z: -0.05},
			IndexDIP: {X: 0.52, Y: 0.70, Z: -0.04},
			IndexTip: {X: 0.50, Y: 0.72, Z: -0.02},

			MiddleMCP: {X: 0.50, Y: 0.68, Z: -0.02},
			MiddlePIP: {X: 0.50, Y: 0.66, Z: -0.05},
			MiddleDIP: {X: 0.47, Y: 0.68, Z: -0.04},
			MiddleTip: {X: 0.45, Y: 0.70, Z: -0.02},

			RingMCP: {X: 0.45, Y: 0.70, Z: -0.02},
			RingPIP: {X: 0.45, Y: 0.68, Z: -0.05},
			RingDIP: {X: 0.42, Y: 0.70, Z: -0.04},
			RingTip: {X: 0.40, Y: 0.72, Z: -0.02},

			PinkyMCP: {X: 0.40, Y: 0.72, Z: -0.02},
			PinkyPIP: {X: 0.40, Y: 0.70, Z: -0.05},
			PinkyDIP: {X: 0.37, Y: 0.72, Z: -0.04},
			PinkyTip: {X: 0.35, Y: 0.74, Z: -0.02},
		},
	}
}
