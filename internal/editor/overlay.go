package editor

import (
	"math"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// Handle layout constants, all in screen pixels so handles keep a constant
// on-screen size regardless of zoom.
const (
	rotateHandleOffsetPx = 16 // how far outside a corner the rotate handle sits
	radiusHandleInsetPx  = 12 // where along the diagonal the radius handle starts
	handlePickRadiusPx   = 8  // pointer pick tolerance around a handle
)

// Edge indices in clockwise order.
const (
	EdgeTop = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// SideAnchor is a resize handle stretched along one full edge of the node.
// Start/End/Mid are absolute screen points; Length is the edge length on
// screen, derived from the unrotated local size times the node's own
// absolute scale so a rotated node never swaps its long and short anchors
// the way bounding-box axes would.
type SideAnchor struct {
	Edge   int          `json:"edge"`
	Start  engine.Point `json:"start"`
	End    engine.Point `json:"end"`
	Mid    engine.Point `json:"mid"`
	Length float64      `json:"length"`
	Angle  float64      `json:"angle"` // degrees on screen
}

// Handle is a point-sized overlay handle anchored to a corner.
type Handle struct {
	Corner int          `json:"corner"`
	Pos    engine.Point `json:"pos"`
}

// RadiusHandle is a corner-radius handle constrained to the corner→center
// diagonal. T encodes the radius as distance-from-corner over the maximum
// possible radius, in [0, 1].
type RadiusHandle struct {
	Corner int          `json:"corner"`
	Pos    engine.Point `json:"pos"`
	T      float64      `json:"t"`
}

// HandleSet is the full overlay for one node, recomputed fresh from the
// node's current absolute transform on every affected frame. It is never
// cached, because any ancestor motion or camera change invalidates it.
type HandleSet struct {
	NodeID        string          `json:"nodeId"`
	Valid         bool            `json:"valid"`
	SideAnchors   [4]SideAnchor   `json:"sideAnchors"`
	RotateHandles [4]Handle       `json:"rotateHandles"`
	RadiusHandles [4]RadiusHandle `json:"radiusHandles"`

	// Compensation is 1/ancestorAbsoluteScale: the factor a renderer
	// multiplies handle glyph geometry by to keep its on-screen size
	// constant under zoom.
	Compensation float64 `json:"compensation"`
}

// ComputeHandleSet derives the overlay geometry for a node from its local
// rect and absolute transform. A node with no valid geometry (zero width or
// height) yields an invalid set: handles are simply not drawn rather than
// dividing by zero.
func ComputeHandleSet(t *engine.Tree, id string) HandleSet {
	set := HandleSet{NodeID: id, Compensation: 1}

	n, ok := t.Get(id)
	if !ok || n.Size.W <= 0 || n.Size.H <= 0 {
		return set
	}

	abs := t.AbsoluteMatrix(id)
	absTr, ok := abs.Decompose()
	if !ok {
		return set
	}

	ownScale := scaleMagnitude(absTr.SX, absTr.SY)
	if ownScale <= 0 {
		return set
	}

	parentScaleX, parentScaleY := 1.0, 1.0
	if p := t.Parent(id); p != "" {
		parentScaleX, parentScaleY = t.AbsoluteScale(p)
	}
	ancestorScale := scaleMagnitude(parentScaleX, parentScaleY)
	if ancestorScale > 0 {
		set.Compensation = 1 / ancestorScale
	}

	// Treat near-axis-aligned rotation as exactly zero so anchors do not
	// flicker between angles at the boundary.
	angle := absTr.R
	if mod := math.Mod(math.Abs(angle), 180); mod < rotationEps || 180-mod < rotationEps {
		angle = 0
	}

	corners := [4]engine.Point{
		abs.TransformPoint(n.LocalCorner(engine.CornerTopLeft)),
		abs.TransformPoint(n.LocalCorner(engine.CornerTopRight)),
		abs.TransformPoint(n.LocalCorner(engine.CornerBottomRight)),
		abs.TransformPoint(n.LocalCorner(engine.CornerBottomLeft)),
	}
	center := abs.TransformPoint(engine.Point{X: n.Size.W / 2, Y: n.Size.H / 2})

	// Side anchors span the full edge between adjacent corners.
	edgeLen := [4]float64{
		n.Size.W * math.Abs(absTr.SX),
		n.Size.H * math.Abs(absTr.SY),
		n.Size.W * math.Abs(absTr.SX),
		n.Size.H * math.Abs(absTr.SY),
	}
	for e := range 4 {
		a, b := corners[e], corners[(e+1)%4]
		edgeAngle := angle
		if e == EdgeRight || e == EdgeLeft {
			edgeAngle = angle + 90
		}
		set.SideAnchors[e] = SideAnchor{
			Edge:   e,
			Start:  a,
			End:    b,
			Mid:    engine.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
			Length: edgeLen[e],
			Angle:  edgeAngle,
		}
	}

	// Rotation handles sit a fixed screen distance outside each corner,
	// along the outward center→corner direction.
	for c := range 4 {
		dir := normalize(engine.Point{X: corners[c].X - center.X, Y: corners[c].Y - center.Y})
		set.RotateHandles[c] = Handle{
			Corner: c,
			Pos: engine.Point{
				X: corners[c].X + dir.X*rotateHandleOffsetPx,
				Y: corners[c].Y + dir.Y*rotateHandleOffsetPx,
			},
		}
	}

	// Radius handles slide along the corner→center diagonal. The handle
	// sits at inset + radius from the corner in local units, with the
	// inset converted from screen pixels so it reads the same at any zoom.
	maxR := n.MaxCornerRadius()
	insetLocal := radiusHandleInsetPx / ownScale
	for c := range 4 {
		lc := n.LocalCorner(c)
		dir := normalize(engine.Point{X: n.Size.W/2 - lc.X, Y: n.Size.H/2 - lc.Y})
		radius := max(0, min(n.Radius[c], maxR))
		local := engine.Point{
			X: lc.X + dir.X*(insetLocal+radius),
			Y: lc.Y + dir.Y*(insetLocal+radius),
		}
		tVal := 0.0
		if maxR > 0 {
			tVal = radius / maxR
		}
		set.RadiusHandles[c] = RadiusHandle{
			Corner: c,
			Pos:    abs.TransformPoint(local),
			T:      tVal,
		}
	}

	set.Valid = true
	return set
}

// HandleKind identifies which overlay family a pick landed on.
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleSide
	HandleRotate
	HandleRadius
)

// HitHandle tests a screen point against the overlay: point handles first
// (rotate, then radius, which may coincide on small shapes), then the side
// anchor segments. Returns the family, the corner or edge index, and
// whether anything was hit.
func (hs HandleSet) HitHandle(p engine.Point) (HandleKind, int, bool) {
	if !hs.Valid {
		return HandleNone, 0, false
	}
	for c := range 4 {
		if dist(p, hs.RotateHandles[c].Pos) <= handlePickRadiusPx {
			return HandleRotate, c, true
		}
	}
	for c := range 4 {
		if dist(p, hs.RadiusHandles[c].Pos) <= handlePickRadiusPx {
			return HandleRadius, c, true
		}
	}
	for e := range 4 {
		if distToSegment(p, hs.SideAnchors[e].Start, hs.SideAnchors[e].End) <= handlePickRadiusPx {
			return HandleSide, e, true
		}
	}
	return HandleNone, 0, false
}

// CoincidentRadiusHandles returns every corner whose radius handle lies
// within pick range of the given point. More than one entry means the
// shape is small or the radius large and the drag direction must
// disambiguate which corner is meant.
func (hs HandleSet) CoincidentRadiusHandles(p engine.Point) []int {
	var corners []int
	for c := range 4 {
		if dist(p, hs.RadiusHandles[c].Pos) <= handlePickRadiusPx {
			corners = append(corners, c)
		}
	}
	return corners
}

func scaleMagnitude(sx, sy float64) float64 {
	return math.Sqrt(math.Abs(sx * sy))
}

func normalize(v engine.Point) engine.Point {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return engine.Point{}
	}
	return engine.Point{X: v.X / l, Y: v.Y / l}
}

func dist(a, b engine.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func distToSegment(p, a, b engine.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2
	t = max(0, min(1, t))
	return dist(p, engine.Point{X: a.X + t*abx, Y: a.Y + t*aby})
}
