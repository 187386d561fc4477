package editor

import (
	"testing"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// nestedTree builds root → outer → inner → leaf with a sibling leaf inside
// inner and a loose rect at root level. Only outer and loose are registered
// logical units.
func nestedTree(t *testing.T) (*engine.Tree, *SelectionSession) {
	t.Helper()
	tree := engine.NewTree("root")
	addGroup(t, tree, "outer", "root", engine.Transform{X: 100, Y: 100, SX: 1, SY: 1})
	addGroup(t, tree, "inner", "outer", engine.Transform{X: 20, Y: 20, SX: 1, SY: 1})
	addRect(t, tree, "leaf", "inner", engine.Transform{SX: 1, SY: 1}, 50, 50)
	addRect(t, tree, "leaf2", "inner", engine.Transform{X: 60, SX: 1, SY: 1}, 30, 30)
	addRect(t, tree, "loose", "root", engine.Transform{X: 500, Y: 500, SX: 1, SY: 1}, 40, 40)

	sel := NewSelectionSession(tree)
	sel.Register("outer")
	sel.Register("loose")
	return tree, sel
}

func TestSelect_UnregisteredIsNoOp(t *testing.T) {
	_, sel := nestedTree(t)

	sel.Select("outer")
	sel.Select("inner") // not registered
	if got := sel.Selected(); got != "outer" {
		t.Errorf("selected = %q, want outer unchanged", got)
	}

	sel.Select("ghost")
	if got := sel.Selected(); got != "outer" {
		t.Errorf("selected = %q after unknown id, want outer", got)
	}
}

func TestResolveHover_NearestRegisteredGroup(t *testing.T) {
	_, sel := nestedTree(t)

	if got := sel.ResolveHover("leaf", Modifiers{}); got != "outer" {
		t.Errorf("hover = %q, want outer", got)
	}
	if got := sel.ResolveHover("loose", Modifiers{}); got != "loose" {
		t.Errorf("hover = %q, want the leaf itself when no group contains it", got)
	}
	if got := sel.ResolveHover("", Modifiers{}); got != "" {
		t.Errorf("hover = %q over empty space, want none", got)
	}
}

func TestResolveHover_ModifierTargetsLeaf(t *testing.T) {
	_, sel := nestedTree(t)

	// Ctrl bypasses group containment entirely: the hit leaf wins no
	// matter how deeply it is nested.
	if got := sel.ResolveHover("leaf", Modifiers{Ctrl: true}); got != "leaf" {
		t.Errorf("hover = %q, want the nested leaf itself", got)
	}
	if got := sel.ResolveHover("loose", Modifiers{Ctrl: true}); got != "loose" {
		t.Errorf("hover = %q, want loose", got)
	}
	// Without the modifier the same leaf resolves to its group.
	if got := sel.ResolveHover("leaf", Modifiers{}); got != "outer" {
		t.Errorf("hover = %q without modifier, want outer", got)
	}
}

func TestResolveClick_ModifierSelectsLeafDirectly(t *testing.T) {
	_, sel := nestedTree(t)

	res := sel.ResolveClick("leaf", engine.Point{X: 1000, Y: 1000}, Modifiers{Ctrl: true})
	if res.Action != ClickSelect || res.Target != "leaf" {
		t.Fatalf("got %+v, want select of the nested leaf", res)
	}

	sel.ApplyClick(res)
	if got := sel.Selected(); got != "leaf" {
		t.Errorf("selected = %q, want leaf", got)
	}
}

func TestResolveHover_SameGroupDifferentLeaf(t *testing.T) {
	_, sel := nestedTree(t)
	sel.Select("outer")

	// Hovering a leaf inside the selected top-level group highlights the
	// leaf itself as a disambiguation aid.
	if got := sel.ResolveHover("leaf", Modifiers{}); got != "leaf" {
		t.Errorf("hover = %q, want leaf", got)
	}
	// A leaf in an unrelated unit resolves normally.
	if got := sel.ResolveHover("loose", Modifiers{}); got != "loose" {
		t.Errorf("hover = %q, want loose", got)
	}
}

func TestResolveClick_EmptySpace(t *testing.T) {
	_, sel := nestedTree(t)
	sel.Select("outer")

	res := sel.ResolveClick("", engine.Point{X: 900, Y: 900}, Modifiers{})
	if res.Action != ClickClear {
		t.Fatalf("action = %v, want ClickClear", res.Action)
	}

	sel.ApplyClick(res)
	if sel.Selected() != "" {
		t.Error("selection not cleared")
	}
	if len(sel.DrillChain()) != 0 {
		t.Error("drill chain not cleared")
	}
}

func TestResolveClick_EmptySpaceWithClearingOff(t *testing.T) {
	_, sel := nestedTree(t)
	sel.ClearOnEmptyClick = false
	sel.Select("outer")

	res := sel.ResolveClick("", engine.Point{X: 900, Y: 900}, Modifiers{})
	if res.Action != ClickNone {
		t.Errorf("action = %v, want ClickNone", res.Action)
	}
}

func TestResolveClick_InsideSelectedBoundsStartsDrag(t *testing.T) {
	_, sel := nestedTree(t)
	sel.Select("outer")

	// (130,130) lies inside outer's subtree bounds.
	res := sel.ResolveClick("leaf", engine.Point{X: 130, Y: 130}, Modifiers{})
	if res.Action != ClickStartDrag || res.Target != "outer" {
		t.Errorf("got %+v, want start-drag of outer", res)
	}
}

func TestDrillDown_OneLevelPerDoubleClick(t *testing.T) {
	_, sel := nestedTree(t)

	// Single click on the leaf selects the outer group.
	sel.ApplyClick(sel.ResolveClick("leaf", engine.Point{X: 1000, Y: 1000}, Modifiers{}))
	if got := sel.Selected(); got != "outer" {
		t.Fatalf("click selected %q, want outer", got)
	}

	sel.DoubleClick("leaf", Modifiers{})
	if got := sel.Selected(); got != "inner" {
		t.Fatalf("first double-click selected %q, want inner", got)
	}

	sel.DoubleClick("leaf", Modifiers{})
	if got := sel.Selected(); got != "leaf" {
		t.Fatalf("second double-click selected %q, want leaf", got)
	}

	// Maximum depth reached.
	sel.DoubleClick("leaf", Modifiers{})
	if got := sel.Selected(); got != "leaf" {
		t.Errorf("third double-click selected %q, want leaf unchanged", got)
	}

	want := []string{"outer", "inner"}
	got := sel.DrillChain()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("drill chain = %v, want %v", got, want)
	}
}

func TestDrill_ResetOnClickOutsideChain(t *testing.T) {
	_, sel := nestedTree(t)
	sel.ApplyClick(sel.ResolveClick("leaf", engine.Point{X: 1000, Y: 1000}, Modifiers{}))
	sel.DoubleClick("leaf", Modifiers{})
	if len(sel.DrillChain()) == 0 {
		t.Fatal("expected a drill chain")
	}

	// Clicking a node outside the chain resets the drill state.
	sel.ApplyClick(ClickResolution{Action: ClickSelect, Target: "loose"})
	if got := sel.Selected(); got != "loose" {
		t.Fatalf("selected %q, want loose", got)
	}
	if len(sel.DrillChain()) != 0 {
		t.Errorf("drill chain = %v, want reset", sel.DrillChain())
	}
}

func TestDrill_HoverSkipsEnteredGroups(t *testing.T) {
	_, sel := nestedTree(t)
	sel.ApplyClick(sel.ResolveClick("leaf", engine.Point{X: 1000, Y: 1000}, Modifiers{}))
	sel.DoubleClick("leaf", Modifiers{})
	sel.DoubleClick("leaf", Modifiers{})
	if sel.Selected() != "leaf" {
		t.Fatal("setup: expected leaf selected")
	}

	// With outer entered, hovering its other leaf must not re-ascend to
	// the outer group.
	if got := sel.ResolveHover("leaf2", Modifiers{}); got == "outer" {
		t.Errorf("hover re-ascended to %q", got)
	}
}

func TestNodeRemoved_ClearsAllReferences(t *testing.T) {
	tree, sel := nestedTree(t)
	sel.ApplyClick(sel.ResolveClick("leaf", engine.Point{X: 1000, Y: 1000}, Modifiers{}))
	sel.DoubleClick("leaf", Modifiers{})
	sel.SetHovered("inner")

	if err := tree.Remove("inner"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	sel.NodeRemoved("inner")

	if sel.Selected() == "inner" {
		t.Error("dangling selection")
	}
	if sel.Hovered() == "inner" {
		t.Error("dangling hover")
	}
	for _, id := range sel.DrillChain() {
		if id == "inner" {
			t.Error("dangling drill entry")
		}
	}
}

func TestSelectionNotifications(t *testing.T) {
	_, sel := nestedTree(t)

	var events [][2]string
	sel.OnSelectionChanged(func(old, cur string) {
		events = append(events, [2]string{old, cur})
	})

	sel.Select("outer")
	sel.Select("outer") // no change, no event
	sel.ClearSelection()

	want := [][2]string{{"", "outer"}, {"outer", ""}}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestHoverNotifications(t *testing.T) {
	_, sel := nestedTree(t)

	var count int
	sel.OnHoverChanged(func(old, cur string) { count++ })

	sel.SetHovered("outer")
	sel.SetHovered("outer")
	sel.SetHovered("")

	if count != 2 {
		t.Errorf("got %d hover events, want 2", count)
	}
}
