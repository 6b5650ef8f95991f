// Package app wires capture, detection and the scene into the running
// handscene pipeline.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ayusman/handscene/internal/capture"
	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/scene"
	"github.com/ayusman/handscene/internal/store"
)

// DefaultRenderFPS is the render loop rate when none is configured.
const DefaultRenderFPS = 60

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	Scene     *scene.Scene
	Camera    capture.Config
	Detector  detector.Config
	RenderFPS int
}

// RenderListener receives a scene snapshot on every render tick.
type RenderListener func(scene.Snapshot)

// Stats counts pipeline activity since Start.
type Stats struct {
	Frames  int64 `json:"frames"`
	Hands   int64 `json:"hands"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}

// App runs the detection pipeline and the render loop.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	scene    *scene.Scene
	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	wg       sync.WaitGroup

	// pipelineMu covers one detect-then-apply step so a disable cannot be
	// overwritten by a frame that was already in flight.
	pipelineMu sync.Mutex

	listeners  map[uuid.UUID]RenderListener
	listenerMu sync.RWMutex

	session *store.Session
	frames  atomic.Int64
	hands   atomic.Int64
	skipped atomic.Int64
	errs    atomic.Int64
}

// New creates a new App. A nil Scene is replaced by one built from
// scene.DefaultConfig.
func New(config Config) (*App, error) {
	if config.RenderFPS <= 0 {
		config.RenderFPS = DefaultRenderFPS
	}

	sc := config.Scene
	if sc == nil {
		var err error
		sc, err = scene.New(scene.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("create scene: %w", err)
		}
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.Camera),
		scene:     sc,
		enabled:   true,
		listeners: make(map[uuid.UUID]RenderListener),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.loadEnabled()
	return a, nil
}

// loadEnabled restores the tracking toggle saved by a previous run.
func (a *App) loadEnabled() {
	if a.config.Store == nil {
		return
	}

	var enabled bool
	err := a.config.Store.Settings().GetJSON(store.KeyEnabled, &enabled)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load tracking state: %v", err)
		}
		return
	}
	a.enabled = enabled
}

// SetEnabled enables or disables hand tracking. Disabling hides every marker.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.pipelineMu.Lock()
		a.scene.OnFrame(&detector.FrameResult{})
		a.pipelineMu.Unlock()
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetJSON(store.KeyEnabled, enabled); err != nil {
			log.Printf("Failed to save tracking state: %v", err)
		}
	}
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the capture device. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnRender registers fn to be called on every render tick. The returned
// function unregisters it.
func (a *App) OnRender(fn RenderListener) (cancel func()) {
	id := uuid.New()

	a.listenerMu.Lock()
	a.listeners[id] = fn
	a.listenerMu.Unlock()

	return func() {
		a.listenerMu.Lock()
		delete(a.listeners, id)
		a.listenerMu.Unlock()
	}
}

// Start opens the camera and begins the detection and render loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.Camera.FPS)

	a.frames.Store(0)
	a.hands.Store(0)
	a.skipped.Store(0)
	a.errs.Store(0)
	a.startSession()

	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runPipeline(a.stopCh)
	go a.runRenderLoop(a.stopCh)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts both loops and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	a.mu.Unlock()

	a.wg.Wait()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.finishSession()
	log.Println("Tracking pipeline stopped")
}

// IsRunning reports whether Start has been called without a matching Stop.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

func (a *App) startSession() {
	if a.config.Store == nil {
		return
	}

	sess := &store.Session{ID: uuid.NewString()}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		log.Printf("Failed to record session: %v", err)
		return
	}
	a.session = sess
}

func (a *App) finishSession() {
	if a.config.Store == nil || a.session == nil {
		return
	}

	stats := a.Stats()
	a.session.Frames = stats.Frames
	a.session.Hands = stats.Hands
	a.session.Skipped = stats.Skipped
	if err := a.config.Store.Sessions().Finish(a.session); err != nil {
		log.Printf("Failed to finish session %s: %v", a.session.ID, err)
	}
	a.session = nil
}

// Stats returns the pipeline counters.
func (a *App) Stats() Stats {
	return Stats{
		Frames:  a.frames.Load(),
		Hands:   a.hands.Load(),
		Skipped: a.skipped.Load(),
		Errors:  a.errs.Load(),
	}
}

// Camera returns the capture device.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Scene returns the scene driven by this app.
func (a *App) Scene() *scene.Scene {
	return a.scene
}
