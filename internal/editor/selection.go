package editor

import (
	"slices"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// ClickAction is what a pointer-down on the canvas should turn into.
type ClickAction int

const (
	// ClickNone leaves selection untouched (empty click with clearing off).
	ClickNone ClickAction = iota
	// ClickClear clears selection and the drill chain.
	ClickClear
	// ClickSelect selects the resolved target.
	ClickSelect
	// ClickStartDrag begins dragging the already-selected node.
	ClickStartDrag
)

// ClickResolution is the resolver's verdict for one pointer-down.
type ClickResolution struct {
	Action ClickAction
	Target string
}

// SelectionSession holds which node is selected, which is hovered, and the
// drill-down chain of ancestor groups already entered by double-clicks.
// One session lives per editing session; it is passed explicitly to the
// components that need it rather than kept as shared package state.
type SelectionSession struct {
	tree *engine.Tree

	// registered marks the node ids the editor treats as selectable
	// logical units; hover and click resolve to the nearest registered
	// group ancestor of a hit leaf.
	registered map[string]bool

	selected string
	hovered  string
	multi    []string // marquee multi-selection, committed via Group
	drill    []string // entered group chain, outermost first

	// ClearOnEmptyClick controls whether clicking empty space clears the
	// selection. On by default.
	ClearOnEmptyClick bool

	onSelection []func(old, cur string)
	onHover     []func(old, cur string)
}

// NewSelectionSession creates an empty selection session over the tree.
func NewSelectionSession(t *engine.Tree) *SelectionSession {
	return &SelectionSession{
		tree:              t,
		registered:        make(map[string]bool),
		ClearOnEmptyClick: true,
	}
}

// Register marks a node id as a selectable logical unit.
func (s *SelectionSession) Register(id string) {
	if _, ok := s.tree.Get(id); ok {
		s.registered[id] = true
	}
}

// Unregister removes a node from the registry.
func (s *SelectionSession) Unregister(id string) {
	delete(s.registered, id)
}

// IsRegistered reports whether the id is a registered logical unit.
func (s *SelectionSession) IsRegistered(id string) bool {
	return s.registered[id]
}

// Selected returns the selected node id ("" when nothing is selected).
func (s *SelectionSession) Selected() string { return s.selected }

// Hovered returns the hovered node id ("" when nothing is hovered).
func (s *SelectionSession) Hovered() string { return s.hovered }

// Multi returns the current marquee multi-selection.
func (s *SelectionSession) Multi() []string { return s.multi }

// SetMulti replaces the marquee multi-selection.
func (s *SelectionSession) SetMulti(ids []string) { s.multi = ids }

// DrillChain returns the entered group chain, outermost first.
func (s *SelectionSession) DrillChain() []string { return s.drill }

// OnSelectionChanged subscribes to selection change notifications.
func (s *SelectionSession) OnSelectionChanged(fn func(old, cur string)) {
	s.onSelection = append(s.onSelection, fn)
}

// OnHoverChanged subscribes to hover change notifications.
func (s *SelectionSession) OnHoverChanged(fn func(old, cur string)) {
	s.onHover = append(s.onHover, fn)
}

// Select sets the selection to a registered node. Selecting an unknown or
// unregistered node is a no-op; selection stays unchanged.
func (s *SelectionSession) Select(id string) {
	if !s.registered[id] {
		return
	}
	s.setSelected(id)
}

// ClearSelection clears the selection, the multi-selection and the drill
// chain.
func (s *SelectionSession) ClearSelection() {
	s.drill = nil
	s.multi = nil
	s.setSelected("")
}

// SetHovered updates the hover highlight and fires notifications.
func (s *SelectionSession) SetHovered(id string) {
	if id == s.hovered {
		return
	}
	old := s.hovered
	s.hovered = id
	for _, fn := range s.onHover {
		fn(old, id)
	}
}

// NodeRemoved clears any reference to a node deleted by an external
// operation so the session never holds a dangling id.
func (s *SelectionSession) NodeRemoved(id string) {
	delete(s.registered, id)
	if s.selected == id {
		s.setSelected("")
	}
	if s.hovered == id {
		s.SetHovered("")
	}
	s.multi = slices.DeleteFunc(s.multi, func(m string) bool { return m == id })
	if i := slices.Index(s.drill, id); i >= 0 {
		s.drill = s.drill[:i]
	}
}

func (s *SelectionSession) setSelected(id string) {
	if id == s.selected {
		return
	}
	old := s.selected
	s.selected = id
	for _, fn := range s.onSelection {
		fn(old, id)
	}
}

// ResolveHover resolves which node the hover highlight should land on given
// the leaf under the pointer. Default is the nearest registered group
// ancestor; with the drill modifier held the hit leaf itself wins, however
// deeply nested. When something is already selected and the hovered leaf
// is a different leaf inside the same top-level group, the leaf itself is
// highlighted as a disambiguation aid.
func (s *SelectionSession) ResolveHover(leaf string, mods Modifiers) string {
	if leaf == "" {
		return ""
	}
	if mods.Ctrl {
		return leaf
	}

	target := s.nearestRegisteredGroup(leaf)

	if s.selected != "" && leaf != s.selected {
		if s.topLevelUnit(leaf) == s.topLevelUnit(s.selected) {
			return leaf
		}
	}
	return target
}

// ResolveClick decides what a pointer-down at pos over the given hit leaf
// means: clear, select, or reinterpret as the start of a drag when the
// click lands inside the already-selected node's bounds.
func (s *SelectionSession) ResolveClick(leaf string, pos engine.Point, mods Modifiers) ClickResolution {
	if s.selected != "" {
		if b := s.tree.AbsoluteBounds(s.selected); !b.IsEmpty() && b.Contains(pos) {
			return ClickResolution{Action: ClickStartDrag, Target: s.selected}
		}
	}

	if leaf == "" {
		if s.ClearOnEmptyClick {
			return ClickResolution{Action: ClickClear}
		}
		return ClickResolution{Action: ClickNone}
	}

	target := leaf
	if !mods.Ctrl {
		target = s.nearestRegisteredGroup(leaf)
	}
	return ClickResolution{Action: ClickSelect, Target: target}
}

// ApplyClick executes a click resolution against the session, resetting the
// drill chain whenever the click lands outside the current chain.
func (s *SelectionSession) ApplyClick(res ClickResolution) {
	switch res.Action {
	case ClickClear:
		s.ClearSelection()
	case ClickSelect:
		if !slices.Contains(s.drill, res.Target) && res.Target != s.selected {
			s.drill = nil
		}
		s.multi = nil
		if s.registered[res.Target] {
			s.setSelected(res.Target)
		} else if _, ok := s.tree.Get(res.Target); ok {
			// Unregistered leaves can still be selected directly, either
			// picked with the modifier or when no registered group
			// contains them.
			s.setSelected(res.Target)
		}
	}
}

// DoubleClick descends one nesting level toward the double-clicked leaf.
// If the current selection is a group containing the leaf, selection moves
// to the immediate child on the path from the selection to the leaf, not
// straight to the leaf. Repeating the double-click on the same leaf keeps
// descending one level per click until the leaf itself is selected; a
// further double-click is a no-op. A double-click outside the current
// selection behaves like a plain click.
func (s *SelectionSession) DoubleClick(leaf string, mods Modifiers) {
	if leaf == "" {
		return
	}
	if s.selected == leaf {
		return // already at maximum depth
	}

	if s.selected != "" && s.tree.IsAncestor(s.selected, leaf) {
		next := s.childOnPath(s.selected, leaf)
		if next == "" {
			return
		}
		s.drill = append(s.drill, s.selected)
		s.setSelected(next)
		return
	}

	s.ApplyClick(s.ResolveClick(leaf, engine.Point{}, mods))
}

// nearestRegisteredGroup walks the ancestor chain for the closest
// registered group; the leaf itself is the fallback.
func (s *SelectionSession) nearestRegisteredGroup(leaf string) string {
	for cur := s.tree.Parent(leaf); cur != "" && cur != s.tree.Root(); cur = s.tree.Parent(cur) {
		n, ok := s.tree.Get(cur)
		if !ok {
			break
		}
		if n.Kind == engine.KindGroup && s.registered[cur] && !slices.Contains(s.drill, cur) {
			return cur
		}
	}
	return leaf
}

// topLevelUnit returns the outermost registered group containing the node,
// or the node itself.
func (s *SelectionSession) topLevelUnit(id string) string {
	top := id
	for cur := s.tree.Parent(id); cur != "" && cur != s.tree.Root(); cur = s.tree.Parent(cur) {
		n, ok := s.tree.Get(cur)
		if !ok {
			break
		}
		if n.Kind == engine.KindGroup && s.registered[cur] {
			top = cur
		}
	}
	return top
}

// childOnPath returns the immediate child of ancestor lying on the parent
// chain of descendant.
func (s *SelectionSession) childOnPath(ancestor, descendant string) string {
	cur := descendant
	for {
		parent := s.tree.Parent(cur)
		if parent == "" {
			return ""
		}
		if parent == ancestor {
			return cur
		}
		cur = parent
	}
}
