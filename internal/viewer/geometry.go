package viewer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handscene/internal/projection"
	"github.com/ayusman/handscene/internal/scene"
)

// minRadiusPx keeps far markers visible.
const minRadiusPx = 1.5

// ToScreen projects a world point to pixel coordinates on a width x height
// surface. ok is false for points outside the clip volume.
func ToScreen(cam projection.Camera, p r3.Vec, width, height int) (x, y float64, ok bool) {
	ndc, err := cam.Project(p)
	if err != nil {
		return 0, 0, false
	}
	if ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, false
	}

	x = (ndc.X + 1) / 2 * float64(width)
	y = (1 - ndc.Y) / 2 * float64(height)
	return x, y, true
}

// RadiusPx returns the on-screen radius of a sphere of the given world radius
// centered at p.
func RadiusPx(cam projection.Camera, p r3.Vec, radius float64, height int) float64 {
	params := cam.Params()
	dist := r3.Norm(r3.Sub(p, params.Position))
	if dist <= 0 {
		return minRadiusPx
	}

	halfFOV := params.FOV * math.Pi / 360
	px := radius / (dist * math.Tan(halfFOV)) * float64(height) / 2
	return math.Max(px, minRadiusPx)
}

// cubeCorners indexes the corners of a unit cube centered at the origin.
var cubeCorners = [8]r3.Vec{
	{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
	{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
	{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
	{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// AnchorCorners returns the world positions of the anchor cube's corners,
// scaled and rotated by the anchor's XYZ Euler angles. The combined rotation
// is Rx·Ry·Rz, so Z is applied to a corner first.
func AnchorCorners(a scene.Anchor) [8]r3.Vec {
	rx := r3.NewRotation(a.Rotation.X, r3.Vec{X: 1})
	ry := r3.NewRotation(a.Rotation.Y, r3.Vec{Y: 1})
	rz := r3.NewRotation(a.Rotation.Z, r3.Vec{Z: 1})
	edge := scene.AnchorEdgeSize * a.Scale

	var out [8]r3.Vec
	for i, c := range cubeCorners {
		p := rx.Rotate(ry.Rotate(rz.Rotate(r3.Scale(edge, c))))
		out[i] = r3.Add(a.Position, p)
	}
	return out
}
