package editor

import (
	"errors"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// ErrGestureActive is returned when a gesture cannot start because another
// session already owns the pointer.
var ErrGestureActive = errors.New("another gesture session is active")

// GestureKind names the mutually-exclusive interactive operations.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GesturePan
	GestureDrag
	GestureRotate
	GestureResize
	GestureRadius
	GestureMarquee
)

// GesturePhase is the state of a session's machine:
// Idle → Dragging → (Committed | Cancelled).
type GesturePhase int

const (
	PhaseIdle GesturePhase = iota
	PhaseDragging
	PhaseCommitted
	PhaseCancelled
)

// GestureSession is the transient state of one pointer-down-to-pointer-up
// interaction. At most one session exists per pointer at a time; it owns
// exclusive write access to the node it transforms until it ends.
type GestureSession struct {
	Kind  GestureKind
	Phase GesturePhase
	Node  string

	startPointer engine.Point
	lastPointer  engine.Point
	moved        bool

	// Pre-gesture state, restored on cancel (transform) and teardown (flags).
	startTransform engine.Transform
	startSize      engine.Size
	startRadius    [4]float64
	prevDraggable  bool

	// Rotation gesture: pivot recorded at drag start.
	startCenterAbs    engine.Point
	startPointerAngle float64

	// Resize gesture.
	edge int

	// Radius gesture. corner is -1 while coincident handles await
	// direction-based disambiguation.
	corner     int
	candidates []int
	insetLocal float64

	handle engine.Transformable
}

// GestureCoordinator sequences the interactive operations. Each incoming
// event is processed synchronously; an active session suspends hover
// resolution and viewport panning, and restores the node's draggable flag
// when it ends for any reason.
type GestureCoordinator struct {
	tree     *engine.Tree
	camera   *Camera
	sel      *SelectionSession
	transfer *GroupTransfer

	active *GestureSession

	buttonDown bool

	// marquee extent, tracked only during a marquee session
	marqueeStart engine.Point
	marqueeEnd   engine.Point

	// SnapIncrement and SnapTolerance configure rotation snapping, applied
	// only while the snap modifier is held.
	SnapIncrement float64
	SnapTolerance float64

	// WheelZoomBase converts a wheel step into a zoom factor.
	WheelZoomBase float64
}

// NewGestureCoordinator wires the coordinator over the editor's parts.
func NewGestureCoordinator(t *engine.Tree, cam *Camera, sel *SelectionSession, tr *GroupTransfer) *GestureCoordinator {
	return &GestureCoordinator{
		tree:          t,
		camera:        cam,
		sel:           sel,
		transfer:      tr,
		SnapIncrement: 15,
		SnapTolerance: 4,
		WheelZoomBase: 1.0015,
	}
}

// Active returns the running session, or nil.
func (gc *GestureCoordinator) Active() *GestureSession { return gc.active }

// HandlePointer processes one pointer event in arrival order.
func (gc *GestureCoordinator) HandlePointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		gc.buttonDown = true
		gc.pointerDown(ev)
	case PointerMove:
		if gc.active != nil {
			gc.pointerMove(ev)
			return
		}
		// Hover resolution runs only while no button is held and no
		// gesture is active.
		if !gc.buttonDown {
			leaf := gc.tree.HitTest(ev.Pos)
			gc.sel.SetHovered(gc.sel.ResolveHover(leaf, ev.Mods))
		}
	case PointerUp:
		gc.buttonDown = false
		if gc.active != nil {
			gc.finishSession(false)
		}
	case PointerLeave:
		gc.buttonDown = false
		if gc.active != nil {
			gc.finishSession(false)
		}
		gc.sel.SetHovered("")
	}
}

// HandleWheel pans, or zooms about the pointer when the zoom modifier is
// held. Pan and zoom in one event go through a single camera call so the
// anchor math sees the panned position.
func (gc *GestureCoordinator) HandleWheel(ev WheelEvent) {
	if ev.Mods.Ctrl {
		factor := powf(gc.WheelZoomBase, -ev.DY)
		anchor := ev.Pos
		gc.camera.PanZoom(-ev.DX, 0, factor, &anchor)
		return
	}
	gc.camera.Pan(-ev.DX, -ev.DY)
}

// HandleKey reacts to the gesture-relevant keys; Escape cancels the active
// session, reverting the node to its pre-gesture transform.
func (gc *GestureCoordinator) HandleKey(ev KeyEvent) {
	if ev.Down && ev.Key == "Escape" && gc.active != nil {
		gc.finishSession(true)
	}
}

func (gc *GestureCoordinator) pointerDown(ev PointerEvent) {
	if gc.active != nil {
		return // one session per pointer; the running one keeps ownership
	}

	// Middle button (or held space) always pans.
	if ev.Button == ButtonMiddle || ev.Mods.Space {
		gc.beginSession(&GestureSession{Kind: GesturePan}, ev)
		return
	}

	// Overlay handles of the selected node take precedence over node hits.
	if selID := gc.sel.Selected(); selID != "" {
		set := ComputeHandleSet(gc.tree, selID)
		if kind, idx, ok := set.HitHandle(ev.Pos); ok {
			switch kind {
			case HandleRotate:
				gc.startRotate(selID, idx, ev)
			case HandleRadius:
				gc.startRadius(selID, set, ev)
			case HandleSide:
				gc.startResize(selID, idx, ev)
			}
			return
		}
	}

	leaf := gc.tree.HitTest(ev.Pos)

	if ev.ClickCnt >= 2 {
		gc.sel.DoubleClick(leaf, ev.Mods)
		gc.tree.MarkDirty()
		return
	}

	res := gc.sel.ResolveClick(leaf, ev.Pos, ev.Mods)
	switch res.Action {
	case ClickStartDrag:
		gc.startDrag(res.Target, ev)
	case ClickSelect:
		gc.sel.ApplyClick(res)
		gc.tree.MarkDirty()
	case ClickClear, ClickNone:
		if res.Action == ClickClear {
			gc.sel.ApplyClick(res)
		}
		gc.marqueeStart = ev.Pos
		gc.marqueeEnd = ev.Pos
		gc.beginSession(&GestureSession{Kind: GestureMarquee}, ev)
	}
}

func (gc *GestureCoordinator) pointerMove(ev PointerEvent) {
	s := gc.active
	if !s.moved && dist(ev.Pos, s.startPointer) > 0 {
		s.moved = true
	}

	switch s.Kind {
	case GesturePan:
		gc.camera.Pan(ev.Pos.X-s.lastPointer.X, ev.Pos.Y-s.lastPointer.Y)
	case GestureDrag:
		gc.moveDrag(s, ev)
	case GestureRotate:
		gc.moveRotate(s, ev)
	case GestureResize:
		gc.moveResize(s, ev)
	case GestureRadius:
		gc.moveRadius(s, ev)
	case GestureMarquee:
		gc.marqueeEnd = ev.Pos
	}

	s.lastPointer = ev.Pos
	gc.tree.MarkDirty()
}

// beginSession installs a session, snapshotting the affected node's
// pre-gesture transform and interactive flags.
func (gc *GestureCoordinator) beginSession(s *GestureSession, ev PointerEvent) {
	s.Phase = PhaseDragging
	s.startPointer = ev.Pos
	s.lastPointer = ev.Pos

	if s.Node != "" {
		if n, ok := gc.tree.Get(s.Node); ok {
			s.startTransform = n.Transform
			s.startSize = n.Size
			s.startRadius = n.Radius
		}
		s.handle = gc.tree.Bind(s.Node)
		s.prevDraggable = s.handle.IsDraggable()
		s.handle.SetDraggable(false)
	}
	gc.active = s
}

// finishSession tears the active session down, restoring pre-gesture flags
// always and the pre-gesture transform on cancellation.
func (gc *GestureCoordinator) finishSession(cancel bool) {
	s := gc.active
	if s == nil {
		return
	}

	if cancel && s.Node != "" {
		gc.tree.SetLocalTransform(s.Node, s.startTransform)
		gc.tree.SetSize(s.Node, s.startSize)
		if n, ok := gc.tree.Get(s.Node); ok {
			n.Radius = s.startRadius
		}
		s.Phase = PhaseCancelled
	} else {
		s.Phase = PhaseCommitted
	}

	if s.handle != nil {
		s.handle.SetDraggable(s.prevDraggable)
	}

	if !cancel && s.Kind == GestureMarquee && s.moved {
		gc.commitMarquee()
	}

	gc.active = nil
	gc.tree.MarkDirty()
}

// commitMarquee selects the registered nodes whose absolute bounds
// intersect the marquee rect; a single hit becomes the plain selection.
func (gc *GestureCoordinator) commitMarquee() {
	r := engine.Rect{
		X:      min(gc.marqueeStart.X, gc.marqueeEnd.X),
		Y:      min(gc.marqueeStart.Y, gc.marqueeEnd.Y),
		Width:  absf(gc.marqueeEnd.X - gc.marqueeStart.X),
		Height: absf(gc.marqueeEnd.Y - gc.marqueeStart.Y),
	}
	if r.IsEmpty() {
		return
	}

	var hits []string
	gc.tree.Walk(func(n *engine.Node) {
		if !gc.sel.IsRegistered(n.ID) {
			return
		}
		if gc.tree.AbsoluteBounds(n.ID).Intersects(r) {
			hits = append(hits, n.ID)
		}
	})

	switch len(hits) {
	case 0:
	case 1:
		gc.sel.Select(hits[0])
	default:
		gc.sel.SetMulti(hits)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
