package detector

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// LoadRecording decodes a JSON array of frame results.
func LoadRecording(r io.Reader) ([]FrameResult, error) {
	var frames []FrameResult
	if err := json.NewDecoder(r).Decode(&frames); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	return frames, nil
}

// LoadRecordingFile reads a recording from disk.
func LoadRecordingFile(path string) ([]FrameResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	return LoadRecording(f)
}

// ReplayDetector returns recorded hands in order, one frame per Detect call.
// The input frame only supplies the image size for recorded frames that
// carry none.
type ReplayDetector struct {
	mu     sync.Mutex
	frames []FrameResult
	index  int
	loop   bool
}

// NewReplayDetector creates a detector that plays back frames. When loop is
// false, Detect returns io.EOF after the last frame.
func NewReplayDetector(frames []FrameResult, loop bool) *ReplayDetector {
	return &ReplayDetector{frames: frames, loop: loop}
}

func (d *ReplayDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	result, err := d.next()
	if err != nil {
		return nil, err
	}
	return result.Hands, nil
}

// DetectFrame returns the next recorded frame with its recorded image size.
func (d *ReplayDetector) DetectFrame(frame *gocv.Mat) (*FrameResult, error) {
	result, err := d.next()
	if err != nil {
		return nil, err
	}
	if (result.ImageWidth <= 0 || result.ImageHeight <= 0) && frame != nil {
		result.ImageWidth = frame.Cols()
		result.ImageHeight = frame.Rows()
	}
	return &result, nil
}

func (d *ReplayDetector) next() (FrameResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return FrameResult{}, io.EOF
		}
		d.index = 0
	}

	result := d.frames[d.index]
	d.index++
	return result, nil
}

func (d *ReplayDetector) Close() error {
	return nil
}

// FrameSize returns the image size of the first recorded frame. It only
// sizes the placeholder camera; each replayed result keeps its own size.
func (d *ReplayDetector) FrameSize() (width, height int) {
	if len(d.frames) == 0 {
		return 0, 0
	}
	return d.frames[0].ImageWidth, d.frames[0].ImageHeight
}
