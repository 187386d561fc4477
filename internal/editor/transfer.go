package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// rotationEps is the tolerated deviation, in degrees, when deciding whether
// an absolute rotation counts as axis-aligned.
const rotationEps = 0.5

// GroupTransfer re-parents nodes while preserving their rendered
// appearance: after a move the node's absolute transform is unchanged to
// floating-point tolerance, so grouping and ungrouping never visibly move,
// resize, or rotate anything.
type GroupTransfer struct {
	tree *engine.Tree
}

// NewGroupTransfer creates a transfer helper over the tree.
func NewGroupTransfer(t *engine.Tree) *GroupTransfer {
	return &GroupTransfer{tree: t}
}

// MoveInto moves a node under newParent ("" for the world root), rewriting
// its local transform so its absolute transform is unchanged. A destination
// inside the node's own subtree is rejected and the node stays put.
func (g *GroupTransfer) MoveInto(id, newParent string) error {
	n, ok := g.tree.Get(id)
	if !ok {
		return fmt.Errorf("move %s: %w", id, engine.ErrNodeNotFound)
	}
	if newParent == "" {
		newParent = g.tree.Root()
	}
	if newParent == id || g.tree.IsAncestor(id, newParent) {
		return engine.ErrCycle
	}

	// A non-uniform scale under a rotated ancestor cannot survive a
	// scale+rotation+translate decomposition (the product has skew).
	// Bake the scale into the node's size first; this preserves the
	// absolute bounding box, which is the accepted approximation.
	if g.parentChainRotated(newParent) {
		g.bakeScaleIntoSize(n)
	}

	absBefore := g.tree.AbsoluteMatrix(id)

	if err := g.tree.Reparent(id, newParent); err != nil {
		return err
	}

	absParentNew := g.tree.AbsoluteMatrix(newParent)
	local := absParentNew.Invert().Multiply(absBefore)

	fields, exact := engine.FieldsFromMatrix(local, n.Transform.AX, n.Transform.AY)
	if !exact {
		slog.Warn("degenerate transform during group transfer, substituting unit scale",
			"node", id, "parent", newParent)
	}
	g.tree.SetLocalTransform(id, fields)
	return nil
}

// Group moves the given nodes into a freshly created group node inserted
// under parent ("" for the world root) and returns the new group's id.
// Members are processed independently, each against its own absolute
// transform, so order does not matter.
func (g *GroupTransfer) Group(groupID string, memberIDs []string, parent string) error {
	if len(memberIDs) == 0 {
		return errors.New("group needs at least one member")
	}

	group := &engine.Node{
		ID:        groupID,
		Kind:      engine.KindGroup,
		Transform: engine.IdentityTransform(),
		Visible:   true,
		Draggable: true,
	}
	if err := g.tree.Add(group, parent); err != nil {
		return err
	}

	for _, id := range memberIDs {
		if err := g.MoveInto(id, groupID); err != nil {
			return fmt.Errorf("group member %s: %w", id, err)
		}
	}
	return nil
}

// Ungroup moves every child of the group to the group's parent, preserving
// each child's appearance, then removes the now-empty group.
func (g *GroupTransfer) Ungroup(groupID string) error {
	group, ok := g.tree.Get(groupID)
	if !ok {
		return fmt.Errorf("ungroup %s: %w", groupID, engine.ErrNodeNotFound)
	}
	if group.Kind != engine.KindGroup {
		return fmt.Errorf("ungroup %s: not a group", groupID)
	}

	parent := g.tree.Parent(groupID)
	for len(group.Children) > 0 {
		child := group.Children[0]
		if err := g.MoveInto(child, parent); err != nil {
			return fmt.Errorf("ungroup member %s: %w", child, err)
		}
	}
	return g.tree.Remove(groupID)
}

// parentChainRotated reports whether the composed transform down to parent
// carries rotation beyond the axis-aligned epsilon.
func (g *GroupTransfer) parentChainRotated(parent string) bool {
	tr, ok := g.tree.AbsoluteMatrix(parent).Decompose()
	if !ok {
		return false
	}
	mod := math.Mod(math.Abs(tr.R), 180)
	return mod > rotationEps && 180-mod > rotationEps
}

// bakeScaleIntoSize converts a node's non-uniform local scale 1:1 into its
// width/height so the decomposed transfer stays representable.
func (g *GroupTransfer) bakeScaleIntoSize(n *engine.Node) {
	if n.Transform.SX == n.Transform.SY {
		return
	}
	sx, sy := n.Transform.SX, n.Transform.SY
	if sx == 0 || sy == 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return
	}

	g.tree.SetSize(n.ID, engine.Size{W: n.Size.W * math.Abs(sx), H: n.Size.H * math.Abs(sy)})

	tr := n.Transform
	// Keep the anchor at the same relative spot in the grown rect, and
	// shift the position so the composed translation is unchanged.
	newAX := tr.AX * math.Abs(sx)
	newAY := tr.AY * math.Abs(sy)
	tr.X += tr.AX - newAX
	tr.Y += tr.AY - newAY
	tr.AX = newAX
	tr.AY = newAY
	tr.SX = math.Copysign(1, sx)
	tr.SY = math.Copysign(1, sy)
	g.tree.SetLocalTransform(n.ID, tr)
}
