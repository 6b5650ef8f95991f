package detector

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"
)

const recordingsDir = "../../testdata/recordings"

func TestLoadRecordingFile(t *testing.T) {
	entries, err := os.ReadDir(recordingsDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	for _, entry := range entries {
		t.Run(entry.Name(), func(t *testing.T) {
			frames, err := LoadRecordingFile(filepath.Join(recordingsDir, entry.Name()))
			if err != nil {
				t.Fatalf("LoadRecordingFile() error = %v", err)
			}
			for i, f := range frames {
				if f.ImageWidth <= 0 || f.ImageHeight <= 0 {
					t.Errorf("frame %d has no image size", i)
				}
				for j := range f.Hands {
					if _, err := f.Hands[j].Side(); err != nil {
						t.Errorf("frame %d hand %d: %v", i, j, err)
					}
				}
			}
		})
	}
}

func TestLoadRecording_Errors(t *testing.T) {
	if _, err := LoadRecording(strings.NewReader(`{"hands": [`)); err == nil {
		t.Error("expected decode error")
	}
	if _, err := LoadRecordingFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestReplayDetector(t *testing.T) {
	frames := []FrameResult{
		{Hands: []HandLandmarks{OpenPalmLandmarks(SideLeft)}, ImageWidth: 640, ImageHeight: 480},
		{ImageWidth: 640, ImageHeight: 480},
	}

	t.Run("plays once", func(t *testing.T) {
		d := NewReplayDetector(frames, false)

		if w, h := d.FrameSize(); w != 640 || h != 480 {
			t.Errorf("FrameSize() = %dx%d, want 640x480", w, h)
		}

		hands, err := d.Detect(nil)
		if err != nil || len(hands) != 1 {
			t.Fatalf("first Detect() = %d hands, %v", len(hands), err)
		}
		hands, err = d.Detect(nil)
		if err != nil || len(hands) != 0 {
			t.Fatalf("second Detect() = %d hands, %v", len(hands), err)
		}
		if _, err := d.Detect(nil); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF after the last frame, got %v", err)
		}
	})

	t.Run("loops", func(t *testing.T) {
		d := NewReplayDetector(frames, true)
		for i := 0; i < 5; i++ {
			hands, err := d.Detect(nil)
			if err != nil {
				t.Fatalf("Detect() %d error = %v", i, err)
			}
			if want := 1 - i%2; len(hands) != want {
				t.Errorf("Detect() %d returned %d hands, want %d", i, len(hands), want)
			}
		}
	})

	t.Run("empty recording", func(t *testing.T) {
		d := NewReplayDetector(nil, true)
		if _, err := d.Detect(nil); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
		if w, h := d.FrameSize(); w != 0 || h != 0 {
			t.Errorf("FrameSize() = %dx%d, want 0x0", w, h)
		}
	})
}

func TestDetect_ReplayKeepsRecordedSize(t *testing.T) {
	frames := []FrameResult{
		{Hands: []HandLandmarks{OpenPalmLandmarks(SideRight)}, ImageWidth: 640, ImageHeight: 480},
		{Hands: []HandLandmarks{OpenPalmLandmarks(SideLeft)}, ImageWidth: 1920, ImageHeight: 1080},
		{Hands: []HandLandmarks{OpenPalmLandmarks(SideLeft)}},
	}
	d := NewReplayDetector(frames, false)

	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	want := [][2]int{{640, 480}, {1920, 1080}, {1280, 720}}
	for i, size := range want {
		result, err := Detect(d, &frame)
		if err != nil {
			t.Fatalf("Detect() %d error = %v", i, err)
		}
		if result.ImageWidth != size[0] || result.ImageHeight != size[1] {
			t.Errorf("frame %d size = %dx%d, want %dx%d",
				i, result.ImageWidth, result.ImageHeight, size[0], size[1])
		}
		if len(result.Hands) != 1 {
			t.Errorf("frame %d has %d hands, want 1", i, len(result.Hands))
		}
	}

	result, err := Detect(d, &frame)
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if !result.Empty() {
		t.Error("exhausted replay should yield an empty result")
	}
}
