package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int `yaml:"max_hands"`

	// ModelComplexity selects the landmark model (0 = lite, 1 = full).
	ModelComplexity int `yaml:"model_complexity"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// ScriptPath overrides the lookup of mediapipe_service.py.
	ScriptPath string `yaml:"script_path"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// FrameDetector is implemented by detectors that know the image size of
// each result themselves, such as a recording replay.
type FrameDetector interface {
	DetectFrame(frame *gocv.Mat) (*FrameResult, error)
}

// Detect runs d on frame and packages the result with the frame dimensions.
// A FrameDetector supplies its own dimensions. A detection error yields an
// empty result alongside the error so callers can treat the frame as
// "no hands".
func Detect(d Detector, frame *gocv.Mat) (*FrameResult, error) {
	if fd, ok := d.(FrameDetector); ok {
		result, err := fd.DetectFrame(frame)
		if err != nil || result == nil {
			return &FrameResult{}, err
		}
		return result, nil
	}

	result := &FrameResult{}
	if frame != nil {
		result.ImageWidth = frame.Cols()
		result.ImageHeight = frame.Rows()
	}

	hands, err := d.Detect(frame)
	if err != nil {
		return result, err
	}
	result.Hands = hands
	return result, nil
}
