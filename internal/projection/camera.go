// Package projection converts normalized detector coordinates into scene
// world space using a perspective camera.
//
// Matrices are stored row-major. A Camera is an immutable value: resizing
// produces a new Camera, so a frame can capture one snapshot and use it for
// every landmark without seeing a concurrent resize.
package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateCamera is returned when a camera cannot be inverted.
var ErrDegenerateCamera = errors.New("degenerate camera state")

// minW is the smallest homogeneous w accepted during a perspective divide.
const minW = 1e-12

// Default camera settings.
const (
	DefaultFOV         = 75.0
	DefaultNear        = 0.1
	DefaultFar         = 1000.0
	DefaultOrbitRadius = 2.0
	DefaultOrbitAngle  = math.Pi / 2
)

// Mat4 is a 4x4 row-major matrix.
type Mat4 [16]float64

// mulPoint transforms p (w=1) and performs the perspective divide.
func (m Mat4) mulPoint(p r3.Vec) (r3.Vec, error) {
	x := m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3]
	y := m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7]
	z := m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11]
	w := m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15]
	if math.Abs(w) < minW || math.IsNaN(w) {
		return r3.Vec{}, fmt.Errorf("%w: w=%g", ErrDegenerateCamera, w)
	}
	return r3.Vec{X: x / w, Y: y / w, Z: z / w}, nil
}

func (m Mat4) dense() *mat.Dense {
	return mat.NewDense(4, 4, m[:])
}

// invert returns the inverse of m or ErrDegenerateCamera if m is singular.
func invert(m Mat4) (Mat4, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Mat4{}, fmt.Errorf("%w: %v", ErrDegenerateCamera, err)
	}

	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// Params describes a perspective camera looking at a target.
type Params struct {
	FOV      float64 `yaml:"fov"` // vertical field of view in degrees
	Aspect   float64 `yaml:"aspect"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Position r3.Vec  `yaml:"-"`
	Target   r3.Vec  `yaml:"-"`
	Up       r3.Vec  `yaml:"-"`
}

// OrbitPosition places a camera on a circle of the given radius in the XZ
// plane, angle measured from the +X axis toward +Z.
func OrbitPosition(radius, angle float64) r3.Vec {
	return r3.Vec{X: radius * math.Cos(angle), Y: 0, Z: radius * math.Sin(angle)}
}

// DefaultParams returns a 75° camera at distance 2 on the +Z axis looking at
// the origin with the given aspect ratio.
func DefaultParams(aspect float64) Params {
	return Params{
		FOV:      DefaultFOV,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: OrbitPosition(DefaultOrbitRadius, DefaultOrbitAngle),
		Target:   r3.Vec{},
		Up:       r3.Vec{Y: 1},
	}
}

// Camera is an immutable perspective camera snapshot.
type Camera struct {
	params        Params
	projection    Mat4
	projectionInv Mat4
	world         Mat4 // camera to world
	view          Mat4 // world to camera
	valid         bool
}

// NewCamera validates p and precomputes the camera's transforms.
func NewCamera(p Params) (Camera, error) {
	if !(p.FOV > 0 && p.FOV < 180) {
		return Camera{}, fmt.Errorf("%w: fov %g", ErrDegenerateCamera, p.FOV)
	}
	if !(p.Aspect > 0) || math.IsInf(p.Aspect, 0) {
		return Camera{}, fmt.Errorf("%w: aspect %g", ErrDegenerateCamera, p.Aspect)
	}
	if !(p.Near > 0 && p.Far > p.Near) {
		return Camera{}, fmt.Errorf("%w: near %g far %g", ErrDegenerateCamera, p.Near, p.Far)
	}

	world, err := lookAt(p.Position, p.Target, p.Up)
	if err != nil {
		return Camera{}, err
	}
	view, err := invert(world)
	if err != nil {
		return Camera{}, err
	}

	proj := perspective(p.FOV, p.Aspect, p.Near, p.Far)
	projInv, err := invert(proj)
	if err != nil {
		return Camera{}, err
	}

	return Camera{
		params:        p,
		projection:    proj,
		projectionInv: projInv,
		world:         world,
		view:          view,
		valid:         true,
	}, nil
}

// Params returns the parameters the camera was built from.
func (c Camera) Params() Params {
	return c.params
}

// Position returns the camera's world position.
func (c Camera) Position() r3.Vec {
	return c.params.Position
}

// Valid reports whether the camera was built by NewCamera.
func (c Camera) Valid() bool {
	return c.valid
}

// WithAspect returns a copy of the camera with a new aspect ratio.
func (c Camera) WithAspect(aspect float64) (Camera, error) {
	p := c.params
	p.Aspect = aspect
	return NewCamera(p)
}

// WithViewport returns a copy of the camera matching a viewport size in pixels.
func (c Camera) WithViewport(width, height int) (Camera, error) {
	if width <= 0 || height <= 0 {
		return Camera{}, fmt.Errorf("%w: viewport %dx%d", ErrDegenerateCamera, width, height)
	}
	return c.WithAspect(float64(width) / float64(height))
}

// Unproject maps a point in normalized device coordinates to world space.
func (c Camera) Unproject(ndc r3.Vec) (r3.Vec, error) {
	if !c.valid {
		return r3.Vec{}, ErrDegenerateCamera
	}
	eye, err := c.projectionInv.mulPoint(ndc)
	if err != nil {
		return r3.Vec{}, err
	}
	return c.world.mulPoint(eye)
}

// Project maps a world-space point to normalized device coordinates.
// It fails for points on the camera plane.
func (c Camera) Project(p r3.Vec) (r3.Vec, error) {
	if !c.valid {
		return r3.Vec{}, ErrDegenerateCamera
	}
	eye, err := c.view.mulPoint(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return c.projection.mulPoint(eye)
}

// perspective builds an OpenGL-style projection matrix (camera looks down -Z,
// depth maps to [-1,1]).
func perspective(fov, aspect, near, far float64) Mat4 {
	top := near * math.Tan(fov*math.Pi/360)
	height := 2 * top
	width := aspect * height

	x := 2 * near / width
	y := 2 * near / height
	c := -(far + near) / (far - near)
	d := -2 * far * near / (far - near)

	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, c, d,
		0, 0, -1, 0,
	}
}

// lookAt builds the camera-to-world matrix for a camera at eye facing target.
func lookAt(eye, target, up r3.Vec) (Mat4, error) {
	forward := r3.Sub(eye, target)
	if r3.Norm(forward) < minW {
		return Mat4{}, fmt.Errorf("%w: camera sits on its target", ErrDegenerateCamera)
	}
	z := r3.Unit(forward)

	side := r3.Cross(up, z)
	if r3.Norm(side) < minW {
		return Mat4{}, fmt.Errorf("%w: up vector parallel to view direction", ErrDegenerateCamera)
	}
	x := r3.Unit(side)
	y := r3.Cross(z, x)

	return Mat4{
		x.X, y.X, z.X, eye.X,
		x.Y, y.Y, z.Y, eye.Y,
		x.Z, y.Z, z.Z, eye.Z,
		0, 0, 0, 1,
	}, nil
}
