package projection

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidImage is returned when the source image has no area.
var ErrInvalidImage = errors.New("invalid image dimensions")

// NDC converts a normalized detector coordinate into normalized device
// coordinates.
//
// X is stretched by the image aspect ratio so the hand keeps its shape
// regardless of the viewport; the mapped region therefore does not line up
// exactly with the camera frustum. Y is flipped because image rows grow
// downward. Depth is negated so that closer landmarks move toward the camera.
// Values outside [0,1] pass through unclamped.
func NDC(x, y, z float64, imageWidth, imageHeight int) r3.Vec {
	aspect := float64(imageWidth) / float64(imageHeight)
	return r3.Vec{
		X: (2*x - 1) * aspect,
		Y: -(2*y - 1),
		Z: -z,
	}
}

// Map converts a normalized landmark into world space using cam.
// It has no side effects and returns the same result for the same inputs.
func Map(x, y, z float64, imageWidth, imageHeight int, cam Camera) (r3.Vec, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return r3.Vec{}, fmt.Errorf("%w: %dx%d", ErrInvalidImage, imageWidth, imageHeight)
	}
	return cam.Unproject(NDC(x, y, z, imageWidth, imageHeight))
}
