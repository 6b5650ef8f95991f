// Package scene keeps the persistent hand markers that a renderer draws and
// updates them from per-frame detector results.
package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handscene/internal/detector"
)

// Marker sizes in world units at scale 1.
const (
	MarkerRadius   = 0.01
	AnchorEdgeSize = 0.1
)

// DefaultScaleOffset matches the camera's resting distance from the origin.
const DefaultScaleOffset = 2.0

// minScaleDenominator keeps ScaleForDepth finite for points at or behind the
// offset plane.
const minScaleDenominator = 1e-3

// Marker is a persistent visual object for one landmark.
type Marker struct {
	Position r3.Vec  `json:"position"`
	Visible  bool    `json:"visible"`
	Scale    float64 `json:"scale"`
}

// Anchor is the marker that follows the palm reference point and spins.
type Anchor struct {
	Marker
	Rotation r3.Vec `json:"rotation"` // Euler angles in radians
}

// ScaleForDepth returns the perspective compensation factor for a marker at
// world depth z: 1 / (z + offset).
func ScaleForDepth(z, offset float64) float64 {
	return 1 / math.Max(z+offset, minScaleDenominator)
}

// Pool is the fixed set of markers: 21 per side plus the palm anchor.
// Its size never changes; updates only overwrite attributes.
// Pool is not safe for concurrent use; see Scene.
type Pool struct {
	sides  [detector.NumSides][detector.NumLandmarks]Marker
	anchor Anchor
}

// NewPool returns a pool with every marker hidden at the origin.
func NewPool() *Pool {
	p := &Pool{}
	p.Reset()
	return p
}

// Reset hides everything and restores unit scale.
func (p *Pool) Reset() {
	for s := range p.sides {
		for i := range p.sides[s] {
			p.sides[s][i] = Marker{Scale: 1}
		}
	}
	rotation := p.anchor.Rotation
	p.anchor = Anchor{Marker: Marker{Scale: 1}, Rotation: rotation}
}

func (p *Pool) marker(side detector.Side, index int) *Marker {
	if side < 0 || int(side) >= detector.NumSides {
		return nil
	}
	if index < 0 || index >= detector.NumLandmarks {
		return nil
	}
	return &p.sides[side][index]
}

// SetVisible shows or hides one landmark marker.
// Out of range sides or indices are ignored.
func (p *Pool) SetVisible(side detector.Side, index int, visible bool) {
	if m := p.marker(side, index); m != nil {
		m.Visible = visible
	}
}

// SetPosition moves one landmark marker.
// Out of range sides or indices are ignored.
func (p *Pool) SetPosition(side detector.Side, index int, pos r3.Vec) {
	if m := p.marker(side, index); m != nil {
		m.Position = pos
	}
}

// SetScale sets the uniform scale of one landmark marker.
// Out of range sides or indices are ignored.
func (p *Pool) SetScale(side detector.Side, index int, factor float64) {
	if m := p.marker(side, index); m != nil {
		m.Scale = factor
	}
}

// Marker returns a copy of one landmark marker.
func (p *Pool) Marker(side detector.Side, index int) (Marker, bool) {
	m := p.marker(side, index)
	if m == nil {
		return Marker{}, false
	}
	return *m, true
}

// HideAll hides every landmark marker on both sides. The anchor is untouched.
func (p *Pool) HideAll() {
	for s := range p.sides {
		for i := range p.sides[s] {
			p.sides[s][i].Visible = false
		}
	}
}

// SetAnchorVisible shows or hides the palm anchor.
func (p *Pool) SetAnchorVisible(visible bool) { p.anchor.Visible = visible }

// SetAnchorPosition moves the palm anchor.
func (p *Pool) SetAnchorPosition(pos r3.Vec) { p.anchor.Position = pos }

// SetAnchorScale sets the anchor's uniform scale. The synchronizer never
// calls it: only landmark markers are scaled by depth and the anchor stays
// at scale 1.
func (p *Pool) SetAnchorScale(factor float64) { p.anchor.Scale = factor }

// Rotate advances the anchor's rotation by delta.
func (p *Pool) Rotate(delta r3.Vec) {
	p.anchor.Rotation = r3.Add(p.anchor.Rotation, delta)
}

// Anchor returns a copy of the palm anchor.
func (p *Pool) Anchor() Anchor {
	return p.anchor
}

// Side returns a copy of all markers for one side.
func (p *Pool) Side(side detector.Side) [detector.NumLandmarks]Marker {
	if side < 0 || int(side) >= detector.NumSides {
		return [detector.NumLandmarks]Marker{}
	}
	return p.sides[side]
}

// VisibleCount returns how many landmark markers are visible on a side.
func (p *Pool) VisibleCount(side detector.Side) int {
	n := 0
	for _, m := range p.Side(side) {
		if m.Visible {
			n++
		}
	}
	return n
}
