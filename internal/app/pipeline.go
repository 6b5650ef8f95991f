package app

import (
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/scene"
)

// runPipeline reads frames at the camera rate and feeds each one through the
// detector into the scene. Frames are processed one at a time, in order.
// Errors are logged and the loop keeps going.
func (a *App) runPipeline(stop <-chan struct{}) {
	defer a.wg.Done()

	fps := a.Camera().FPS()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				a.errs.Add(1)
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if _, err := a.ProcessFrame(frame); err != nil {
				log.Printf("Error processing frame: %v", err)
			}
			frame.Close()
		}
	}
}

// ProcessFrame runs one captured frame through detection and applies the
// result to the scene. A detector failure is treated as a frame with no
// hands, so every marker is hidden, and the error is returned. A frame whose
// detection finishes after tracking was disabled is dropped.
func (a *App) ProcessFrame(frame *gocv.Mat) (scene.FrameStats, error) {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()

	a.frames.Add(1)

	result, detectErr := detector.Detect(a.Detector(), frame)
	if detectErr != nil {
		a.errs.Add(1)
		result = &detector.FrameResult{}
	}
	if !a.IsEnabled() {
		result = &detector.FrameResult{}
	}

	stats, err := a.scene.OnFrame(result)
	a.hands.Add(int64(stats.Processed))
	a.skipped.Add(int64(stats.Skipped))

	for _, m := range stats.Malformed {
		log.Printf("Skipped malformed hand: %v", m)
	}

	if detectErr != nil {
		return stats, fmt.Errorf("detect: %w", detectErr)
	}
	if err != nil {
		a.errs.Add(1)
		return stats, err
	}
	return stats, nil
}

// runRenderLoop advances the scene animation by real elapsed time and hands
// each resulting snapshot to the registered listeners.
func (a *App) runRenderLoop(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.RenderFPS))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.Tick(now.Sub(last))
			last = now
		}
	}
}

// Tick advances the animation by dt and notifies render listeners.
func (a *App) Tick(dt time.Duration) scene.Snapshot {
	a.scene.Animate(dt)
	snap := a.scene.Snapshot()

	a.listenerMu.RLock()
	listeners := make([]RenderListener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}
