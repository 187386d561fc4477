package editor

import (
	"math"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// minNodeSize is the smallest extent a resize gesture may shrink a node to.
const minNodeSize = 1.0

func powf(base, exp float64) float64 { return math.Pow(base, exp) }

// --- node drag ---

func (gc *GestureCoordinator) startDrag(id string, ev PointerEvent) {
	gc.beginSession(&GestureSession{Kind: GestureDrag, Node: id}, ev)
}

// moveDrag translates the node so it follows the pointer. The screen-space
// delta is mapped through the inverse of the parent's absolute matrix:
// dragging must feel 1:1 on screen regardless of how ancestors are scaled
// or rotated.
func (gc *GestureCoordinator) moveDrag(s *GestureSession, ev PointerEvent) {
	deltaWorld := engine.Point{X: ev.Pos.X - s.startPointer.X, Y: ev.Pos.Y - s.startPointer.Y}
	deltaParent := gc.parentVector(s.Node, deltaWorld)

	tr := s.startTransform
	tr.X += deltaParent.X
	tr.Y += deltaParent.Y
	gc.tree.SetLocalTransform(s.Node, tr)
}

// --- rotation with pivot preservation ---

func (gc *GestureCoordinator) startRotate(id string, corner int, ev PointerEvent) {
	n, ok := gc.tree.Get(id)
	if !ok {
		return
	}
	center := gc.tree.AbsolutePoint(id, engine.Point{X: n.Size.W / 2, Y: n.Size.H / 2})

	s := &GestureSession{
		Kind:              GestureRotate,
		Node:              id,
		corner:            corner,
		startCenterAbs:    center,
		startPointerAngle: angleDeg(center, ev.Pos),
	}
	gc.beginSession(s, ev)
}

// moveRotate derives the new rotation from the pointer's angle around the
// center recorded at drag start, snaps only while the snap modifier is
// held, then translates the node so its absolute center returns to the
// recorded pivot so rotation never drifts the node's visual position.
func (gc *GestureCoordinator) moveRotate(s *GestureSession, ev PointerEvent) {
	delta := angleDeg(s.startCenterAbs, ev.Pos) - s.startPointerAngle
	newR := s.startTransform.R + delta

	if ev.Mods.Shift && gc.SnapIncrement > 0 {
		snapped := math.Round(newR/gc.SnapIncrement) * gc.SnapIncrement
		if math.Abs(snapped-newR) <= gc.SnapTolerance {
			newR = snapped
		}
	}

	tr := s.startTransform
	tr.R = newR
	gc.tree.SetLocalTransform(s.Node, tr)

	n, ok := gc.tree.Get(s.Node)
	if !ok {
		return
	}
	centerNow := gc.tree.AbsolutePoint(s.Node, engine.Point{X: n.Size.W / 2, Y: n.Size.H / 2})
	driftWorld := engine.Point{X: s.startCenterAbs.X - centerNow.X, Y: s.startCenterAbs.Y - centerNow.Y}
	driftParent := gc.parentVector(s.Node, driftWorld)

	tr.X += driftParent.X
	tr.Y += driftParent.Y
	gc.tree.SetLocalTransform(s.Node, tr)
}

// --- edge resize ---

func (gc *GestureCoordinator) startResize(id string, edge int, ev PointerEvent) {
	gc.beginSession(&GestureSession{Kind: GestureResize, Node: id, edge: edge}, ev)
}

// moveResize recomputes size from the pointer's position in the node's
// pre-gesture local frame, keeping the opposite edge fixed. Dragging the
// left or top edge shifts the local origin, expressed as composing the
// pre-gesture local matrix with a translation so rotation and scale are
// untouched.
func (gc *GestureCoordinator) moveResize(s *GestureSession, ev PointerEvent) {
	// Work against the start state every move so the gesture is stable:
	// the local frame must not shift under the pointer mid-drag.
	startLocal := engine.FromTransform(s.startTransform)
	parentAbs := engine.Identity()
	if p := gc.tree.Parent(s.Node); p != "" {
		parentAbs = gc.tree.AbsoluteMatrix(p)
	}
	startAbs := parentAbs.Multiply(startLocal)
	local := startAbs.Invert().TransformPoint(ev.Pos)

	size := s.startSize
	var shift engine.Point

	switch s.edge {
	case EdgeRight:
		size.W = max(minNodeSize, local.X)
	case EdgeBottom:
		size.H = max(minNodeSize, local.Y)
	case EdgeLeft:
		delta := min(local.X, s.startSize.W-minNodeSize)
		size.W = s.startSize.W - delta
		shift = engine.Point{X: delta}
	case EdgeTop:
		delta := min(local.Y, s.startSize.H-minNodeSize)
		size.H = s.startSize.H - delta
		shift = engine.Point{Y: delta}
	}

	tr := s.startTransform
	if shift.X != 0 || shift.Y != 0 {
		moved := startLocal.Multiply(engine.Translate(shift.X, shift.Y))
		fields, _ := engine.FieldsFromMatrix(moved, tr.AX, tr.AY)
		tr = fields
	}

	gc.tree.SetLocalTransform(s.Node, tr)
	gc.tree.SetSize(s.Node, size)
}

// --- corner radius ---

func (gc *GestureCoordinator) startRadius(id string, set HandleSet, ev PointerEvent) {
	if _, ok := gc.tree.Get(id); !ok {
		return
	}

	candidates := set.CoincidentRadiusHandles(ev.Pos)
	if len(candidates) == 0 {
		return
	}

	sx, sy := gc.tree.AbsoluteScale(id)
	own := scaleMagnitude(sx, sy)
	if own <= 0 {
		own = 1
	}

	s := &GestureSession{
		Kind:       GestureRadius,
		Node:       id,
		corner:     -1,
		candidates: candidates,
		insetLocal: radiusHandleInsetPx / own,
	}
	if len(candidates) == 1 {
		s.corner = candidates[0]
	}
	gc.beginSession(s, ev)
}

// moveRadius slides the handle along the corner→center diagonal: the
// pointer is projected onto the segment and the projection, minus the
// inset, becomes the radius, clamped to [0, min(w,h)/2]. With the link
// modifier the same value applies to all four corners. While several
// coincident handles are still candidates, the first real movement picks
// the corner whose diagonal best aligns with the drag direction; ties fall
// to the lowest index in clockwise corner order.
func (gc *GestureCoordinator) moveRadius(s *GestureSession, ev PointerEvent) {
	n, ok := gc.tree.Get(s.Node)
	if !ok {
		return
	}

	if s.corner < 0 {
		if dist(ev.Pos, s.startPointer) < 2 {
			return // direction not yet meaningful
		}
		s.corner = gc.disambiguateCorner(s, ev)
	}

	abs := gc.tree.AbsoluteMatrix(s.Node)
	local := abs.Invert().TransformPoint(ev.Pos)

	lc := n.LocalCorner(s.corner)
	dir := normalize(engine.Point{X: n.Size.W/2 - lc.X, Y: n.Size.H/2 - lc.Y})
	proj := (local.X-lc.X)*dir.X + (local.Y-lc.Y)*dir.Y

	maxR := n.MaxCornerRadius()
	radius := max(0.0, min(proj-s.insetLocal, maxR))

	if ev.Mods.Shift {
		for c := range n.Radius {
			n.Radius[c] = radius
		}
	} else {
		n.Radius[s.corner] = radius
	}
	gc.tree.MarkDirty()
}

// disambiguateCorner picks, among coincident radius handles, the corner
// whose corner→center diagonal is most aligned with the drag direction
// from the shared start point.
func (gc *GestureCoordinator) disambiguateCorner(s *GestureSession, ev PointerEvent) int {
	n, ok := gc.tree.Get(s.Node)
	if !ok {
		return s.candidates[0]
	}
	abs := gc.tree.AbsoluteMatrix(s.Node)
	center := abs.TransformPoint(engine.Point{X: n.Size.W / 2, Y: n.Size.H / 2})
	dragDir := normalize(engine.Point{X: ev.Pos.X - s.startPointer.X, Y: ev.Pos.Y - s.startPointer.Y})

	best := s.candidates[0]
	bestScore := math.Inf(-1)
	for _, c := range s.candidates {
		corner := abs.TransformPoint(n.LocalCorner(c))
		diag := normalize(engine.Point{X: center.X - corner.X, Y: center.Y - corner.Y})
		score := diag.X*dragDir.X + diag.Y*dragDir.Y
		if score > bestScore { // strict: ties keep clockwise-first corner
			bestScore = score
			best = c
		}
	}
	return best
}

// parentVector maps a world-space vector into a node's parent coordinate
// space through the inverse of the parent's absolute matrix (linear part
// only).
func (gc *GestureCoordinator) parentVector(id string, v engine.Point) engine.Point {
	p := gc.tree.Parent(id)
	if p == "" {
		return v
	}
	return gc.tree.AbsoluteMatrix(p).Invert().TransformVector(v)
}

// angleDeg returns the angle of the vector from a to b, in degrees.
func angleDeg(a, b engine.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180.0 / math.Pi
}
