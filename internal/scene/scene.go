package scene

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/projection"
)

// DefaultSpinRate is the anchor's rotation speed about X and Y in radians per
// second (0.01 rad per tick at 60 ticks per second).
const DefaultSpinRate = 0.6

// Config holds the scene settings.
type Config struct {
	Camera      projection.Params
	ScaleOffset float64
	SpinRate    float64
	Policy      MalformedPolicy
}

// DefaultConfig returns the scene defaults for a 16:9 viewport.
func DefaultConfig() Config {
	return Config{
		Camera:      projection.DefaultParams(16.0 / 9.0),
		ScaleOffset: DefaultScaleOffset,
		SpinRate:    DefaultSpinRate,
		Policy:      PolicySkip,
	}
}

// CameraView is the part of the camera a renderer needs to draw the scene.
type CameraView struct {
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position r3.Vec  `json:"position"`
	Target   r3.Vec  `json:"target"`
}

// Snapshot is a consistent copy of the scene taken between frame updates.
type Snapshot struct {
	Frame  uint64                        `json:"frame"`
	Left   [detector.NumLandmarks]Marker `json:"left"`
	Right  [detector.NumLandmarks]Marker `json:"right"`
	Anchor Anchor                        `json:"anchor"`
	Camera CameraView                    `json:"camera"`
}

// Markers returns the markers for one side.
func (s *Snapshot) Markers(side detector.Side) [detector.NumLandmarks]Marker {
	if side == detector.SideRight {
		return s.Right
	}
	return s.Left
}

// Scene owns the marker pool and the current camera.
//
// Frame updates and render reads may come from different goroutines, so all
// pool access goes through a read/write lock. OnFrame holds the write lock
// for the whole frame; readers never see a partially applied frame.
type Scene struct {
	mu       sync.RWMutex
	pool     *Pool
	sync     *Synchronizer
	camera   projection.Camera
	spinRate float64
	frame    uint64
}

// New builds a scene. A camera that cannot be inverted is an error.
func New(cfg Config) (*Scene, error) {
	cam, err := projection.NewCamera(cfg.Camera)
	if err != nil {
		return nil, err
	}

	pool := NewPool()
	return &Scene{
		pool:     pool,
		sync:     NewSynchronizer(pool, cfg.Policy, cfg.ScaleOffset),
		camera:   cam,
		spinRate: cfg.SpinRate,
	}, nil
}

// OnFrame applies a detector result. The camera is captured once at the start
// of the frame and used for every landmark.
func (s *Scene) OnFrame(result *detector.FrameResult) (FrameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	return s.sync.OnFrame(result, s.camera)
}

// Animate advances the anchor's free-running rotation by elapsed time dt.
// It is independent of detection updates.
func (s *Scene) Animate(dt time.Duration) {
	if dt <= 0 {
		return
	}
	step := s.spinRate * dt.Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Rotate(r3.Vec{X: step, Y: step})
}

// Resize updates the camera for a new viewport. On error the previous camera
// stays in place.
func (s *Scene) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cam, err := s.camera.WithViewport(width, height)
	if err != nil {
		return err
	}
	s.camera = cam
	return nil
}

// Camera returns the current camera snapshot.
func (s *Scene) Camera() projection.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// Policy returns the malformed hand policy.
func (s *Scene) Policy() MalformedPolicy {
	return s.sync.Policy()
}

// Snapshot copies the current marker state.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.camera.Params()
	return Snapshot{
		Frame:  s.frame,
		Left:   s.pool.Side(detector.SideLeft),
		Right:  s.pool.Side(detector.SideRight),
		Anchor: s.pool.Anchor(),
		Camera: CameraView{
			FOV:      p.FOV,
			Aspect:   p.Aspect,
			Near:     p.Near,
			Far:      p.Far,
			Position: p.Position,
			Target:   p.Target,
		},
	}
}
