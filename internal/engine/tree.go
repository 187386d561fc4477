package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrNodeNotFound is returned when an id has no entry in the arena.
	ErrNodeNotFound = errors.New("node not found")
	// ErrCycle is returned when a reparent would make a node its own ancestor.
	ErrCycle = errors.New("reparent would create a cycle")
)

// Tree is the retained scene graph: an arena of nodes keyed by id with an
// explicit parent lookup. The editor core reads and writes transform fields
// through it; a renderer consumes the compiled draw commands.
//
// Tree is not safe for concurrent use. All mutation happens on the single
// event-processing sequence of an editor session.
type Tree struct {
	nodes map[string]*Node
	root  string

	// dirty marks that the next coalesced frame must recompile draw
	// commands. Mutations set it; the frame loop clears it.
	dirty bool
}

// NewTree creates a tree whose root is an unbounded group node with the
// given id. The camera pans and zooms by mutating this root's transform.
func NewTree(rootID string) *Tree {
	root := &Node{
		ID:        rootID,
		Kind:      KindGroup,
		Transform: IdentityTransform(),
		Visible:   true,
	}
	return &Tree{
		nodes: map[string]*Node{rootID: root},
		root:  rootID,
		dirty: true,
	}
}

// Root returns the root node id.
func (t *Tree) Root() string { return t.root }

// Get looks up a node by id.
func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the arena, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Dirty reports whether the tree changed since the last MarkClean.
func (t *Tree) Dirty() bool { return t.dirty }

// MarkDirty requests a repaint on the next coalesced frame.
func (t *Tree) MarkDirty() { t.dirty = true }

// MarkClean is called by the frame loop after compiling draw commands.
func (t *Tree) MarkClean() { t.dirty = false }

// Bind returns the Transformable capability handle for a node id.
func (t *Tree) Bind(id string) Transformable {
	return boundNode{tree: t, id: id}
}

// Add inserts a node under the given parent (the root if parent is empty).
// The node's ID must be set and unused.
func (t *Tree) Add(n *Node, parent string) error {
	if n.ID == "" {
		return errors.New("node id is empty")
	}
	if _, exists := t.nodes[n.ID]; exists {
		return fmt.Errorf("node %s already exists", n.ID)
	}
	if parent == "" {
		parent = t.root
	}
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("parent %s: %w", parent, ErrNodeNotFound)
	}

	n.Parent = parent
	t.nodes[n.ID] = n
	p.Children = append(p.Children, n.ID)
	t.dirty = true
	return nil
}

// Remove deletes a node and its whole subtree from the arena.
func (t *Tree) Remove(id string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}
	if id == t.root {
		return errors.New("cannot remove the root node")
	}

	for _, child := range slices.Clone(n.Children) {
		t.Remove(child)
	}

	if p, ok := t.nodes[n.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == id })
	}
	delete(t.nodes, id)
	t.dirty = true
	return nil
}

// Parent returns the parent id of a node ("" for the root or unknown ids).
func (t *Tree) Parent(id string) string {
	if n, ok := t.nodes[id]; ok {
		return n.Parent
	}
	return ""
}

// Children returns the ordered child ids of a node.
func (t *Tree) Children(id string) []string {
	if n, ok := t.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// IsAncestor reports whether ancestor appears on node's parent chain
// (a node is not its own ancestor).
func (t *Tree) IsAncestor(ancestor, node string) bool {
	for cur := t.Parent(node); cur != ""; cur = t.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// AncestorChain returns node's ancestors from nearest to the root.
func (t *Tree) AncestorChain(id string) []string {
	var chain []string
	for cur := t.Parent(id); cur != ""; cur = t.Parent(cur) {
		chain = append(chain, cur)
	}
	return chain
}

// Reparent moves a node under a new parent. This is the structural move
// only; it does not touch the node's transform fields. Moving a node under
// itself or one of its descendants is rejected.
func (t *Tree) Reparent(id, newParent string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("reparent %s: %w", id, ErrNodeNotFound)
	}
	if id == t.root {
		return errors.New("cannot reparent the root node")
	}
	if newParent == "" {
		newParent = t.root
	}
	np, ok := t.nodes[newParent]
	if !ok {
		return fmt.Errorf("new parent %s: %w", newParent, ErrNodeNotFound)
	}
	if newParent == id || t.IsAncestor(id, newParent) {
		return ErrCycle
	}
	if n.Parent == newParent {
		return nil
	}

	if old, ok := t.nodes[n.Parent]; ok {
		old.Children = slices.DeleteFunc(old.Children, func(c string) bool { return c == id })
	}
	np.Children = append(np.Children, id)
	n.Parent = newParent
	t.dirty = true
	return nil
}

// SetLocalTransform writes a node's local transform and marks the tree dirty.
// Non-finite fields are rejected so a bad gesture step cannot poison the
// stored transform.
func (t *Tree) SetLocalTransform(id string, tr Transform) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, v := range [...]float64{tr.X, tr.Y, tr.SX, tr.SY, tr.R, tr.AX, tr.AY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	n.Transform = tr
	t.dirty = true
}

// SetSize writes a node's unscaled size, clamping corner radii to the new
// maximum, and marks the tree dirty.
func (t *Tree) SetSize(id string, s Size) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	n.Size = s
	maxR := n.MaxCornerRadius()
	for i := range n.Radius {
		if n.Radius[i] > maxR {
			n.Radius[i] = maxR
		}
	}
	t.dirty = true
}

// LocalMatrix returns a node's local transform as a matrix.
func (t *Tree) LocalMatrix(id string) Matrix2D {
	n, ok := t.nodes[id]
	if !ok {
		return Identity()
	}
	return FromTransform(n.Transform)
}

// AbsoluteMatrix composes a node's transform through its entire ancestor
// chain up to the root. Computed fresh on every call: during a gesture any
// ancestor may have moved since the previous frame.
func (t *Tree) AbsoluteMatrix(id string) Matrix2D {
	n, ok := t.nodes[id]
	if !ok {
		return Identity()
	}
	m := FromTransform(n.Transform)
	for cur := n.Parent; cur != ""; cur = t.Parent(cur) {
		p, ok := t.nodes[cur]
		if !ok {
			break
		}
		m = FromTransform(p.Transform).Multiply(m)
	}
	return m
}

// AbsolutePoint maps a point from a node's local space to world space.
func (t *Tree) AbsolutePoint(id string, p Point) Point {
	return t.AbsoluteMatrix(id).TransformPoint(p)
}

// AbsoluteScale returns the absolute non-uniform scale of a node,
// decomposed from its composed matrix.
func (t *Tree) AbsoluteScale(id string) (sx, sy float64) {
	tr, ok := t.AbsoluteMatrix(id).Decompose()
	if !ok {
		return 1, 1
	}
	return tr.SX, tr.SY
}

// AbsoluteBounds returns a node's subtree bounding box in world space.
func (t *Tree) AbsoluteBounds(id string) Rect {
	n, ok := t.nodes[id]
	if !ok {
		return Rect{}
	}
	var bounds Rect
	if n.Kind != KindGroup {
		bounds = t.AbsoluteMatrix(id).TransformRect(n.LocalRect())
	}
	for _, child := range n.Children {
		bounds = bounds.Union(t.AbsoluteBounds(child))
	}
	return bounds
}

// HitTest returns the topmost leaf node containing the world-space point,
// or "" if nothing is hit. Unlike a bounding-box test, the point is mapped
// through each candidate's inverse absolute matrix so rotated shapes hit
// correctly. Groups never hit directly; selection-level resolution from a
// leaf to its containing group is the resolver's job.
func (t *Tree) HitTest(p Point) string {
	return t.hitTestNode(t.root, p)
}

func (t *Tree) hitTestNode(id string, p Point) string {
	n, ok := t.nodes[id]
	if !ok || !n.Visible {
		return ""
	}

	// Front to back: later children render on top.
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := t.hitTestNode(n.Children[i], p); hit != "" {
			return hit
		}
	}

	if n.Kind == KindGroup {
		return ""
	}

	local := t.AbsoluteMatrix(id).Invert().TransformPoint(p)
	switch n.Kind {
	case KindEllipse:
		if n.Size.W <= 0 || n.Size.H <= 0 {
			return ""
		}
		dx := (local.X - n.Size.W/2) / (n.Size.W / 2)
		dy := (local.Y - n.Size.H/2) / (n.Size.H / 2)
		if dx*dx+dy*dy <= 1 {
			return id
		}
	default:
		if n.LocalRect().Contains(local) {
			return id
		}
	}
	return ""
}

// Walk visits every node depth-first in paint order, starting at the root.
func (t *Tree) Walk(visit func(*Node)) {
	t.walkNode(t.root, visit)
}

func (t *Tree) walkNode(id string, visit func(*Node)) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	visit(n)
	for _, child := range n.Children {
		t.walkNode(child, visit)
	}
}
