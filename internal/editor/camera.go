package editor

import (
	"math"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// Camera owns the viewport over a target node, normally the tree root.
// Panning and zooming mutate the target's local transform, so every node's
// absolute matrix picks up the viewport for free. Scale is uniform and
// clamped to [MinScale, MaxScale].
type Camera struct {
	tree   *engine.Tree
	target string

	MinScale float64
	MaxScale float64
}

// NewCamera creates a camera over the tree's root node.
func NewCamera(t *engine.Tree, minScale, maxScale float64) *Camera {
	if minScale <= 0 {
		minScale = 0.02
	}
	if maxScale < minScale {
		maxScale = minScale
	}
	return &Camera{
		tree:     t,
		target:   t.Root(),
		MinScale: minScale,
		MaxScale: maxScale,
	}
}

// Scale returns the current viewport scale.
func (c *Camera) Scale() float64 {
	n, ok := c.tree.Get(c.target)
	if !ok {
		return 1
	}
	return n.Transform.SX
}

// Position returns the target's position in its parent coordinate space.
func (c *Camera) Position() engine.Point {
	n, ok := c.tree.Get(c.target)
	if !ok {
		return engine.Point{}
	}
	return engine.Point{X: n.Transform.X, Y: n.Transform.Y}
}

// Pan adds (dx, dy) to the target position in screen pixels. No clamping.
func (c *Camera) Pan(dx, dy float64) {
	n, ok := c.tree.Get(c.target)
	if !ok {
		return
	}
	tr := n.Transform
	tr.X += dx
	tr.Y += dy
	c.tree.SetLocalTransform(c.target, tr)
}

// Zoom multiplies the viewport scale by factor, clamped to the scale range.
// If anchor is non-nil, the target position is adjusted so the local point
// under the anchor stays visually fixed across the step; without an anchor
// scaling happens around the origin. A requested factor that is non-finite
// or would produce a non-positive scale is treated as 1 (no-op).
func (c *Camera) Zoom(factor float64, anchor *engine.Point) {
	c.PanZoom(0, 0, factor, anchor)
}

// PanZoom applies a pan and an anchor-preserving zoom in one step. The
// translation is applied before the anchor math so a combined wheel
// pan-then-zoom gesture anchors against the panned position.
func (c *Camera) PanZoom(dx, dy, factor float64, anchor *engine.Point) {
	n, ok := c.tree.Get(c.target)
	if !ok {
		return
	}
	tr := n.Transform
	tr.X += dx
	tr.Y += dy

	oldScale := tr.SX
	newScale := oldScale * factor
	if math.IsNaN(newScale) || math.IsInf(newScale, 0) || newScale <= 0 {
		newScale = oldScale
	}
	newScale = min(max(newScale, c.MinScale), c.MaxScale)

	// The effective factor is clamped/old, never the raw request.
	if anchor != nil && oldScale != 0 {
		tr.X = anchor.X - (anchor.X-tr.X)/oldScale*newScale
		tr.Y = anchor.Y - (anchor.Y-tr.Y)/oldScale*newScale
	}
	tr.SX = newScale
	tr.SY = newScale

	c.tree.SetLocalTransform(c.target, tr)
}

// Reset restores the identity viewport.
func (c *Camera) Reset() {
	n, ok := c.tree.Get(c.target)
	if !ok {
		return
	}
	tr := n.Transform
	tr.X, tr.Y = 0, 0
	tr.SX, tr.SY = 1, 1
	c.tree.SetLocalTransform(c.target, tr)
}
