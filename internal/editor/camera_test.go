package editor

import (
	"math"
	"testing"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

const eps = 1e-9

func newViewTree(t *testing.T) *engine.Tree {
	t.Helper()
	tree := engine.NewTree("root")
	n := &engine.Node{
		ID:        "box",
		Kind:      engine.KindRect,
		Transform: engine.Transform{X: 100, Y: 100, SX: 1, SY: 1},
		Size:      engine.Size{W: 50, H: 50},
		Visible:   true,
		Draggable: true,
	}
	if err := tree.Add(n, "root"); err != nil {
		t.Fatalf("add: %v", err)
	}
	return tree
}

func TestCameraPan_ShiftsWorld(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.1, 10)

	cam.Pan(30, -20)

	got := tree.AbsolutePoint("box", engine.Point{})
	want := engine.Point{X: 130, Y: 80}
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps {
		t.Errorf("box origin at %+v after pan, want %+v", got, want)
	}
}

func TestCameraZoom_AnchorStaysFixed(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.1, 10)

	anchor := engine.Point{X: 125, Y: 125}
	// The scene point currently under the anchor.
	before := tree.AbsoluteMatrix(tree.Root()).Invert().TransformPoint(anchor)

	cam.Zoom(2, &anchor)

	after := tree.AbsoluteMatrix(tree.Root()).TransformPoint(before)
	if math.Abs(after.X-anchor.X) > eps || math.Abs(after.Y-anchor.Y) > eps {
		t.Errorf("anchored point moved to %+v, want %+v", after, anchor)
	}
	if got := cam.Scale(); math.Abs(got-2) > eps {
		t.Errorf("scale = %v, want 2", got)
	}
}

func TestCameraZoom_AnchorFixedAcrossManySteps(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.1, 10)

	anchor := engine.Point{X: 300, Y: 200}
	before := tree.AbsoluteMatrix(tree.Root()).Invert().TransformPoint(anchor)

	for i := 0; i < 40; i++ {
		cam.Zoom(1.1, &anchor)
	}
	for i := 0; i < 40; i++ {
		cam.Zoom(1/1.1, &anchor)
	}

	after := tree.AbsoluteMatrix(tree.Root()).TransformPoint(before)
	if math.Abs(after.X-anchor.X) > 1e-6 || math.Abs(after.Y-anchor.Y) > 1e-6 {
		t.Errorf("anchored point drifted to %+v, want %+v", after, anchor)
	}
}

func TestCameraZoom_ClampsToRange(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.5, 4)

	anchor := engine.Point{X: 10, Y: 10}
	for i := 0; i < 20; i++ {
		cam.Zoom(2, &anchor)
	}
	if got := cam.Scale(); got != 4 {
		t.Errorf("scale = %v, want clamped max 4", got)
	}

	for i := 0; i < 20; i++ {
		cam.Zoom(0.5, &anchor)
	}
	if got := cam.Scale(); got != 0.5 {
		t.Errorf("scale = %v, want clamped min 0.5", got)
	}
}

func TestCameraZoom_ClampedStepStillAnchors(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.5, 2)

	anchor := engine.Point{X: 77, Y: 33}
	before := tree.AbsoluteMatrix(tree.Root()).Invert().TransformPoint(anchor)

	// Requests a 10x zoom; only 2x is granted. The anchor math must use
	// the effective factor, not the requested one.
	cam.Zoom(10, &anchor)

	after := tree.AbsoluteMatrix(tree.Root()).TransformPoint(before)
	if math.Abs(after.X-anchor.X) > eps || math.Abs(after.Y-anchor.Y) > eps {
		t.Errorf("anchored point moved to %+v, want %+v", after, anchor)
	}
}

func TestCameraZoom_BadFactorIsNoOp(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newViewTree(t)
			cam := NewCamera(tree, 0.1, 10)
			anchor := engine.Point{X: 50, Y: 50}

			cam.Zoom(tt.factor, &anchor)

			if got := cam.Scale(); got != 1 {
				t.Errorf("scale = %v after factor %v, want unchanged 1", got, tt.factor)
			}
			if pos := cam.Position(); pos.X != 0 || pos.Y != 0 {
				t.Errorf("position = %+v after bad factor, want origin", pos)
			}
		})
	}
}

func TestCameraPanZoom_PanAppliesBeforeAnchor(t *testing.T) {
	// A combined pan+zoom must equal a pan followed by an anchored zoom.
	treeA := newViewTree(t)
	camA := NewCamera(treeA, 0.1, 10)
	treeB := newViewTree(t)
	camB := NewCamera(treeB, 0.1, 10)

	anchor := engine.Point{X: 200, Y: 150}
	camA.PanZoom(-12, 7, 1.5, &anchor)
	camB.Pan(-12, 7)
	camB.Zoom(1.5, &anchor)

	pa, pb := camA.Position(), camB.Position()
	if math.Abs(pa.X-pb.X) > eps || math.Abs(pa.Y-pb.Y) > eps {
		t.Errorf("combined %+v != sequential %+v", pa, pb)
	}
	if math.Abs(camA.Scale()-camB.Scale()) > eps {
		t.Errorf("combined scale %v != sequential %v", camA.Scale(), camB.Scale())
	}
}

func TestCameraReset(t *testing.T) {
	tree := newViewTree(t)
	cam := NewCamera(tree, 0.1, 10)

	cam.Pan(40, 40)
	anchor := engine.Point{X: 5, Y: 5}
	cam.Zoom(3, &anchor)
	cam.Reset()

	if got := cam.Scale(); got != 1 {
		t.Errorf("scale = %v after reset, want 1", got)
	}
	if pos := cam.Position(); pos.X != 0 || pos.Y != 0 {
		t.Errorf("position = %+v after reset, want origin", pos)
	}
}
