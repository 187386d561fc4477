package editor

import (
	"math"
	"testing"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// gestureRig builds a tree with one registered 100x100 rect at (100,100)
// and a coordinator wired over it.
func gestureRig(t *testing.T) (*engine.Tree, *SelectionSession, *GestureCoordinator) {
	t.Helper()
	tree := engine.NewTree("root")
	addRect(t, tree, "box", "root", engine.Transform{X: 100, Y: 100, SX: 1, SY: 1}, 100, 100)

	sel := NewSelectionSession(tree)
	sel.Register("box")
	cam := NewCamera(tree, 0.1, 10)
	gc := NewGestureCoordinator(tree, cam, sel, NewGroupTransfer(tree))
	return tree, sel, gc
}

func down(gc *GestureCoordinator, x, y float64) {
	gc.HandlePointer(PointerEvent{Kind: PointerDown, Pos: engine.Point{X: x, Y: y}, Button: ButtonLeft, ClickCnt: 1})
}

func downMods(gc *GestureCoordinator, x, y float64, mods Modifiers) {
	gc.HandlePointer(PointerEvent{Kind: PointerDown, Pos: engine.Point{X: x, Y: y}, Button: ButtonLeft, ClickCnt: 1, Mods: mods})
}

func move(gc *GestureCoordinator, x, y float64) {
	gc.HandlePointer(PointerEvent{Kind: PointerMove, Pos: engine.Point{X: x, Y: y}})
}

func moveMods(gc *GestureCoordinator, x, y float64, mods Modifiers) {
	gc.HandlePointer(PointerEvent{Kind: PointerMove, Pos: engine.Point{X: x, Y: y}, Mods: mods})
}

func up(gc *GestureCoordinator, x, y float64) {
	gc.HandlePointer(PointerEvent{Kind: PointerUp, Pos: engine.Point{X: x, Y: y}, Button: ButtonLeft})
}

func TestGesture_DragFollowsPointer(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	down(gc, 150, 150) // inside selected bounds, away from handles
	if s := gc.Active(); s == nil || s.Kind != GestureDrag {
		t.Fatalf("active = %+v, want drag session", s)
	}

	// Draggable flag is suspended for the duration.
	if n, _ := tree.Get("box"); n.Draggable {
		t.Error("draggable not suspended during drag")
	}

	move(gc, 160, 145)
	up(gc, 160, 145)

	n, _ := tree.Get("box")
	if n.Transform.X != 110 || n.Transform.Y != 95 {
		t.Errorf("position = (%v, %v), want (110, 95)", n.Transform.X, n.Transform.Y)
	}
	if !n.Draggable {
		t.Error("draggable not restored after drag")
	}
	if gc.Active() != nil {
		t.Error("session still active after pointer up")
	}
}

func TestGesture_DragInScaledParentFeelsOneToOne(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	addGroup(t, tree, "zoom", "root", engine.Transform{SX: 2, SY: 2})
	if err := NewGroupTransfer(tree).MoveInto("box", "zoom"); err != nil {
		t.Fatalf("move: %v", err)
	}
	sel.Select("box")

	before := tree.AbsolutePoint("box", engine.Point{})
	down(gc, 150, 150)
	move(gc, 170, 150)
	up(gc, 170, 150)

	after := tree.AbsolutePoint("box", engine.Point{})
	if math.Abs(after.X-before.X-20) > eps || math.Abs(after.Y-before.Y) > eps {
		t.Errorf("moved (%v, %v) on screen, want (20, 0)", after.X-before.X, after.Y-before.Y)
	}
}

func TestGesture_OneSessionAtATime(t *testing.T) {
	_, _, gc := gestureRig(t)

	gc.HandlePointer(PointerEvent{Kind: PointerDown, Pos: engine.Point{X: 10, Y: 10}, Button: ButtonMiddle})
	if s := gc.Active(); s == nil || s.Kind != GesturePan {
		t.Fatalf("active = %+v, want pan", s)
	}

	// A second pointer-down must not replace the running session.
	down(gc, 150, 150)
	if s := gc.Active(); s == nil || s.Kind != GesturePan {
		t.Errorf("active = %+v after second down, want the original pan session", s)
	}
}

func TestGesture_EscapeCancelsAndReverts(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	down(gc, 150, 150)
	move(gc, 250, 250)

	gc.HandleKey(KeyEvent{Key: "Escape", Down: true})

	n, _ := tree.Get("box")
	if n.Transform.X != 100 || n.Transform.Y != 100 {
		t.Errorf("position = (%v, %v) after cancel, want reverted (100, 100)", n.Transform.X, n.Transform.Y)
	}
	if !n.Draggable {
		t.Error("draggable not restored after cancel")
	}
	if gc.Active() != nil {
		t.Error("session still active after cancel")
	}
}

func TestGesture_SpaceDragPans(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	downMods(gc, 150, 150, Modifiers{Space: true})
	if s := gc.Active(); s == nil || s.Kind != GesturePan {
		t.Fatalf("active = %+v, want pan with space held", s)
	}
	move(gc, 180, 160)
	up(gc, 180, 160)

	// The camera moved, the node did not.
	n, _ := tree.Get("box")
	if n.Transform.X != 100 || n.Transform.Y != 100 {
		t.Errorf("node moved to (%v, %v) during pan", n.Transform.X, n.Transform.Y)
	}
	root, _ := tree.Get("root")
	if root.Transform.X != 30 || root.Transform.Y != 10 {
		t.Errorf("camera at (%v, %v), want (30, 10)", root.Transform.X, root.Transform.Y)
	}
}

func TestGesture_RotatePivotInvariance(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	set := ComputeHandleSet(tree, "box")
	start := set.RotateHandles[engine.CornerTopRight].Pos
	center := engine.Point{X: 150, Y: 150}

	down(gc, start.X, start.Y)
	if s := gc.Active(); s == nil || s.Kind != GestureRotate {
		t.Fatalf("active = %+v, want rotate", s)
	}

	// Sweep the pointer through a few arbitrary angles around the center.
	for _, deg := range []float64{-20, 10, 73, 155} {
		rad := deg * math.Pi / 180
		move(gc, center.X+90*math.Cos(rad), center.Y+90*math.Sin(rad))

		got := tree.AbsolutePoint("box", engine.Point{X: 50, Y: 50})
		if math.Abs(got.X-center.X) > 1e-6 || math.Abs(got.Y-center.Y) > 1e-6 {
			t.Fatalf("center drifted to %+v at %v degrees, want %+v", got, deg, center)
		}
	}
	up(gc, center.X, center.Y-90)

	n, _ := tree.Get("box")
	if n.Transform.R == 0 {
		t.Error("rotation unchanged after rotate gesture")
	}
}

func TestGesture_RotateSnapsOnlyWithShift(t *testing.T) {
	// The top-right handle direction is -45 degrees from center, so a
	// pointer at angle -1 degree corresponds to a rotation of 44 degrees,
	// within the 4-degree snap tolerance of 45.
	pointerAt := func(deg float64) (float64, float64) {
		rad := deg * math.Pi / 180
		return 150 + 90*math.Cos(rad), 150 + 90*math.Sin(rad)
	}

	t.Run("with shift", func(t *testing.T) {
		tree, sel, gc := gestureRig(t)
		sel.Select("box")
		set := ComputeHandleSet(tree, "box")
		start := set.RotateHandles[engine.CornerTopRight].Pos

		down(gc, start.X, start.Y)
		x, y := pointerAt(-1)
		moveMods(gc, x, y, Modifiers{Shift: true})
		up(gc, x, y)

		n, _ := tree.Get("box")
		if math.Abs(n.Transform.R-45) > 1e-6 {
			t.Errorf("rotation = %v, want snapped 45", n.Transform.R)
		}
	})

	t.Run("without shift", func(t *testing.T) {
		tree, sel, gc := gestureRig(t)
		sel.Select("box")
		set := ComputeHandleSet(tree, "box")
		start := set.RotateHandles[engine.CornerTopRight].Pos

		down(gc, start.X, start.Y)
		x, y := pointerAt(-1)
		move(gc, x, y)
		up(gc, x, y)

		n, _ := tree.Get("box")
		if math.Abs(n.Transform.R-44) > 1e-6 {
			t.Errorf("rotation = %v, want unsnapped 44", n.Transform.R)
		}
	})
}

func TestGesture_ResizeRightEdge(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	set := ComputeHandleSet(tree, "box")
	mid := set.SideAnchors[EdgeRight].Mid

	down(gc, mid.X, mid.Y)
	if s := gc.Active(); s == nil || s.Kind != GestureResize {
		t.Fatalf("active = %+v, want resize", s)
	}
	move(gc, mid.X+50, mid.Y)
	up(gc, mid.X+50, mid.Y)

	n, _ := tree.Get("box")
	if n.Size.W != 150 || n.Size.H != 100 {
		t.Errorf("size = %+v, want 150x100", n.Size)
	}
	// Opposite (left) edge stays put.
	if left := tree.AbsolutePoint("box", engine.Point{}); left.X != 100 {
		t.Errorf("left edge at %v, want fixed 100", left.X)
	}
}

func TestGesture_ResizeTopEdgeKeepsBottomFixed(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	set := ComputeHandleSet(tree, "box")
	mid := set.SideAnchors[EdgeTop].Mid

	down(gc, mid.X, mid.Y)
	move(gc, mid.X, mid.Y+30)
	up(gc, mid.X, mid.Y+30)

	n, _ := tree.Get("box")
	if n.Size.H != 70 {
		t.Errorf("height = %v, want 70", n.Size.H)
	}
	bottom := tree.AbsolutePoint("box", engine.Point{Y: n.Size.H})
	if math.Abs(bottom.Y-200) > 1e-9 {
		t.Errorf("bottom edge at %v, want fixed 200", bottom.Y)
	}
}

func TestGesture_ResizeNeverBelowMinimum(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	set := ComputeHandleSet(tree, "box")
	mid := set.SideAnchors[EdgeRight].Mid

	down(gc, mid.X, mid.Y)
	move(gc, 0, mid.Y) // far past the left edge
	up(gc, 0, mid.Y)

	n, _ := tree.Get("box")
	if n.Size.W < minNodeSize {
		t.Errorf("width = %v, want >= %v", n.Size.W, minNodeSize)
	}
}

func TestGesture_ResizeRotatedNodeStaysOnAxis(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	tree.SetLocalTransform("box", engine.Transform{X: 100, Y: 100, SX: 1, SY: 1, R: 90, AX: 50, AY: 50})
	sel.Select("box")

	set := ComputeHandleSet(tree, "box")
	mid := set.SideAnchors[EdgeRight].Mid

	// The local right edge points down on screen after the 90-degree
	// rotation; dragging along it grows the local width.
	down(gc, mid.X, mid.Y)
	move(gc, mid.X, mid.Y+40)
	up(gc, mid.X, mid.Y+40)

	n, _ := tree.Get("box")
	if math.Abs(n.Size.W-140) > 1e-9 {
		t.Errorf("width = %v, want 140", n.Size.W)
	}
	if math.Abs(n.Transform.R-90) > 1e-9 {
		t.Errorf("rotation = %v disturbed by resize, want 90", n.Transform.R)
	}
}

func radiusHandleAt(r float64) engine.Point {
	// Top-left corner of the rig's box plus (inset + r) along the
	// corner-to-center diagonal.
	d := (radiusHandleInsetPx + r) / math.Sqrt2
	return engine.Point{X: 100 + d, Y: 100 + d}
}

func TestGesture_RadiusDragMonotonicAndClamped(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	start := radiusHandleAt(0)
	down(gc, start.X, start.Y)
	if s := gc.Active(); s == nil || s.Kind != GestureRadius {
		t.Fatalf("active = %+v, want radius", s)
	}

	radius := func() float64 {
		n, _ := tree.Get("box")
		return n.Radius[engine.CornerTopLeft]
	}

	// Toward the center: radius grows.
	p := radiusHandleAt(20)
	move(gc, p.X, p.Y)
	if got := radius(); math.Abs(got-20) > 1e-9 {
		t.Errorf("radius = %v, want 20", got)
	}

	p = radiusHandleAt(35)
	move(gc, p.X, p.Y)
	if got := radius(); math.Abs(got-35) > 1e-9 {
		t.Errorf("radius = %v, want 35", got)
	}

	// Back away from the center: radius shrinks.
	p = radiusHandleAt(10)
	move(gc, p.X, p.Y)
	if got := radius(); math.Abs(got-10) > 1e-9 {
		t.Errorf("radius = %v, want 10", got)
	}

	// Deep past the center: clamped to min(w,h)/2.
	p = radiusHandleAt(500)
	move(gc, p.X, p.Y)
	if got := radius(); got != 50 {
		t.Errorf("radius = %v, want clamped 50", got)
	}

	// At the corner itself: clamped to zero, never negative.
	move(gc, 100, 100)
	if got := radius(); got != 0 {
		t.Errorf("radius = %v, want clamped 0", got)
	}
	up(gc, 100, 100)
}

func TestGesture_RadiusShiftLinksAllCorners(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	start := radiusHandleAt(0)
	down(gc, start.X, start.Y)
	p := radiusHandleAt(25)
	moveMods(gc, p.X, p.Y, Modifiers{Shift: true})
	up(gc, p.X, p.Y)

	n, _ := tree.Get("box")
	for c, r := range n.Radius {
		if math.Abs(r-25) > 1e-9 {
			t.Errorf("corner %d radius = %v, want linked 25", c, r)
		}
	}
}

func TestGesture_RadiusEscapeRestoresRadii(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	n, _ := tree.Get("box")
	n.Radius = [4]float64{5, 5, 5, 5}
	sel.Select("box")

	start := radiusHandleAt(5)
	down(gc, start.X, start.Y)
	p := radiusHandleAt(40)
	move(gc, p.X, p.Y)

	gc.HandleKey(KeyEvent{Key: "Escape", Down: true})

	n, _ = tree.Get("box")
	if n.Radius != [4]float64{5, 5, 5, 5} {
		t.Errorf("radii = %v after cancel, want restored fives", n.Radius)
	}
}

func TestGesture_RadiusCoincidentDisambiguatesByDirection(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	addRect(t, tree, "tiny", "root", engine.Transform{X: 300, Y: 300, SX: 1, SY: 1}, 10, 10)
	sel.Register("tiny")
	sel.Select("tiny")

	// All four radius handles coincide near the center of a 10x10 shape.
	down(gc, 305, 305)
	if s := gc.Active(); s == nil || s.Kind != GestureRadius {
		t.Fatalf("active = %+v, want radius", s)
	}

	// Dragging down-right aligns with the top-left corner's diagonal.
	move(gc, 312, 312)
	up(gc, 312, 312)

	n, _ := tree.Get("tiny")
	if n.Radius[engine.CornerTopLeft] <= 0 {
		t.Error("top-left radius not edited")
	}
	for _, c := range []int{engine.CornerTopRight, engine.CornerBottomRight, engine.CornerBottomLeft} {
		if n.Radius[c] != 0 {
			t.Errorf("corner %d radius = %v, want untouched", c, n.Radius[c])
		}
	}
}

func TestGesture_MarqueeSelectsIntersecting(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	addRect(t, tree, "east", "root", engine.Transform{X: 400, Y: 100, SX: 1, SY: 1}, 50, 50)
	sel.Register("east")

	down(gc, 600, 600) // empty space starts a marquee
	if s := gc.Active(); s == nil || s.Kind != GestureMarquee {
		t.Fatalf("active = %+v, want marquee", s)
	}
	move(gc, 90, 90)
	up(gc, 90, 90)

	multi := sel.Multi()
	if len(multi) != 2 {
		t.Fatalf("multi = %v, want both rects", multi)
	}
}

func TestGesture_MarqueeSingleHitBecomesSelection(t *testing.T) {
	_, sel, gc := gestureRig(t)

	down(gc, 600, 600)
	move(gc, 150, 150)
	up(gc, 150, 150)

	if got := sel.Selected(); got != "box" {
		t.Errorf("selected = %q, want box", got)
	}
	if len(sel.Multi()) != 0 {
		t.Errorf("multi = %v for a single hit, want empty", sel.Multi())
	}
}

func TestGesture_HoverSuppressedWhileButtonDown(t *testing.T) {
	_, sel, gc := gestureRig(t)

	// Plain move hovers.
	move(gc, 150, 150)
	if got := sel.Hovered(); got != "box" {
		t.Fatalf("hovered = %q, want box", got)
	}

	// Selecting click, button still down: hover must freeze.
	down(gc, 150, 150)
	move(gc, 600, 600)
	if got := sel.Hovered(); got != "box" {
		t.Errorf("hovered = %q while button down, want frozen box", got)
	}

	up(gc, 600, 600)
	move(gc, 600, 600)
	if got := sel.Hovered(); got != "" {
		t.Errorf("hovered = %q over empty space, want cleared", got)
	}
}

func TestGesture_PointerLeaveCommitsAndClearsHover(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	sel.Select("box")

	down(gc, 150, 150)
	move(gc, 180, 180)
	gc.HandlePointer(PointerEvent{Kind: PointerLeave})

	// Leave commits the drag rather than reverting it.
	n, _ := tree.Get("box")
	if n.Transform.X != 130 || n.Transform.Y != 130 {
		t.Errorf("position = (%v, %v), want committed (130, 130)", n.Transform.X, n.Transform.Y)
	}
	if gc.Active() != nil {
		t.Error("session survived pointer leave")
	}
	if sel.Hovered() != "" {
		t.Error("hover survived pointer leave")
	}
}

func TestGesture_WheelPansWithoutModifier(t *testing.T) {
	tree, _, gc := gestureRig(t)

	gc.HandleWheel(WheelEvent{Pos: engine.Point{X: 100, Y: 100}, DX: 30, DY: -50})

	root, _ := tree.Get("root")
	if root.Transform.X != -30 || root.Transform.Y != 50 {
		t.Errorf("camera at (%v, %v), want (-30, 50)", root.Transform.X, root.Transform.Y)
	}
	if root.Transform.SX != 1 {
		t.Errorf("scale = %v, want unchanged 1", root.Transform.SX)
	}
}

func TestGesture_CtrlWheelZoomsAboutPointer(t *testing.T) {
	tree, _, gc := gestureRig(t)

	anchor := engine.Point{X: 150, Y: 150}
	scenePoint := tree.AbsoluteMatrix("root").Invert().TransformPoint(anchor)

	gc.HandleWheel(WheelEvent{Pos: anchor, DY: -400, Mods: Modifiers{Ctrl: true}})

	root, _ := tree.Get("root")
	if root.Transform.SX <= 1 {
		t.Errorf("scale = %v after zoom-in wheel, want > 1", root.Transform.SX)
	}

	after := tree.AbsoluteMatrix("root").TransformPoint(scenePoint)
	if math.Abs(after.X-anchor.X) > 1e-6 || math.Abs(after.Y-anchor.Y) > 1e-6 {
		t.Errorf("anchored point moved to %+v, want %+v", after, anchor)
	}
}

func TestGesture_DoubleClickRoutesToDrillDown(t *testing.T) {
	tree, sel, gc := gestureRig(t)
	addGroup(t, tree, "outer", "root", engine.Transform{X: 300, Y: 300, SX: 1, SY: 1})
	addGroup(t, tree, "inner", "outer", engine.IdentityTransform())
	addRect(t, tree, "leaf", "inner", engine.Transform{SX: 1, SY: 1}, 40, 40)
	sel.Register("outer")

	down(gc, 320, 320)
	up(gc, 320, 320)
	if got := sel.Selected(); got != "outer" {
		t.Fatalf("selected = %q after click, want outer", got)
	}

	gc.HandlePointer(PointerEvent{Kind: PointerDown, Pos: engine.Point{X: 320, Y: 320}, Button: ButtonLeft, ClickCnt: 2})
	gc.HandlePointer(PointerEvent{Kind: PointerUp, Pos: engine.Point{X: 320, Y: 320}, Button: ButtonLeft})
	if got := sel.Selected(); got != "inner" {
		t.Errorf("selected = %q after double-click, want inner", got)
	}
}
