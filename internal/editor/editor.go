package editor

import (
	"encoding/json"
	"fmt"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
	"github.com/pivotgfx/pivot/backend-go/internal/typeid"
)

// Editor owns one editing session's state: the scene tree, the viewport
// camera, the selection session, and the gesture coordinator. It processes
// input events and answers render/overlay queries; all work is synchronous
// on the caller's event sequence.
type Editor struct {
	tree     *engine.Tree
	camera   *Camera
	sel      *SelectionSession
	transfer *GroupTransfer
	gestures *GestureCoordinator
}

// New creates an editor over an existing tree with the given camera scale
// clamp range.
func New(tree *engine.Tree, minScale, maxScale float64) *Editor {
	cam := NewCamera(tree, minScale, maxScale)
	sel := NewSelectionSession(tree)
	tr := NewGroupTransfer(tree)
	return &Editor{
		tree:     tree,
		camera:   cam,
		sel:      sel,
		transfer: tr,
		gestures: NewGestureCoordinator(tree, cam, sel, tr),
	}
}

// Tree exposes the underlying scene tree.
func (e *Editor) Tree() *engine.Tree { return e.tree }

// Camera exposes the viewport camera.
func (e *Editor) Camera() *Camera { return e.camera }

// Selection exposes the selection session.
func (e *Editor) Selection() *SelectionSession { return e.sel }

// Gestures exposes the gesture coordinator.
func (e *Editor) Gestures() *GestureCoordinator { return e.gestures }

// --- Commands (host → editor) ---

// ApplyPointer feeds one pointer event into the gesture layer.
func (e *Editor) ApplyPointer(ev PointerEvent) { e.gestures.HandlePointer(ev) }

// ApplyWheel feeds one wheel event into the camera.
func (e *Editor) ApplyWheel(ev WheelEvent) { e.gestures.HandleWheel(ev) }

// ApplyKey feeds one key event into the gesture layer.
func (e *Editor) ApplyKey(ev KeyEvent) { e.gestures.HandleKey(ev) }

// Select selects a registered node; unknown ids are a no-op.
func (e *Editor) Select(id string) {
	e.sel.Select(id)
	e.tree.MarkDirty()
}

// ClearSelection clears selection state.
func (e *Editor) ClearSelection() {
	e.sel.ClearSelection()
	e.tree.MarkDirty()
}

// Selected returns the selected node id.
func (e *Editor) Selected() string { return e.sel.Selected() }

// Hovered returns the hovered node id.
func (e *Editor) Hovered() string { return e.sel.Hovered() }

// Group moves the given nodes into a new group and selects it. Each member
// keeps its rendered appearance. Returns the new group id.
func (e *Editor) Group(memberIDs []string) (string, error) {
	groupID := typeid.NewGroupID()
	if err := e.transfer.Group(groupID, memberIDs, ""); err != nil {
		return "", err
	}
	for _, id := range memberIDs {
		e.sel.Unregister(id)
	}
	e.sel.Register(groupID)
	e.sel.Select(groupID)
	return groupID, nil
}

// GroupSelection commits the marquee multi-selection into a permanent group.
func (e *Editor) GroupSelection() (string, error) {
	multi := e.sel.Multi()
	if len(multi) == 0 {
		return "", fmt.Errorf("group selection: nothing selected")
	}
	return e.Group(multi)
}

// Ungroup dissolves a group, moving its members to the group's parent with
// their appearance preserved.
func (e *Editor) Ungroup(groupID string) error {
	members := append([]string(nil), e.tree.Children(groupID)...)
	if err := e.transfer.Ungroup(groupID); err != nil {
		return err
	}
	e.sel.NodeRemoved(groupID)
	for _, id := range members {
		if e.tree.Parent(id) == e.tree.Root() {
			e.sel.Register(id)
		}
	}
	return nil
}

// MoveInto re-parents a node with appearance preservation.
func (e *Editor) MoveInto(id, newParent string) error {
	return e.transfer.MoveInto(id, newParent)
}

// AddNode inserts a node and registers it as selectable when it lands
// directly under the root.
func (e *Editor) AddNode(n *engine.Node, parent string) error {
	if n.ID == "" {
		n.ID = typeid.NewNodeID()
	}
	if err := e.tree.Add(n, parent); err != nil {
		return err
	}
	if e.tree.Parent(n.ID) == e.tree.Root() {
		e.sel.Register(n.ID)
	}
	return nil
}

// DeleteNode removes a node's subtree and scrubs every selection reference
// to it so nothing dangles.
func (e *Editor) DeleteNode(id string) error {
	var removed []string
	e.tree.Walk(func(n *engine.Node) {
		if n.ID == id || e.tree.IsAncestor(id, n.ID) {
			removed = append(removed, n.ID)
		}
	})
	if err := e.tree.Remove(id); err != nil {
		return err
	}
	for _, r := range removed {
		e.sel.NodeRemoved(r)
	}
	return nil
}

// --- Queries (editor → host) ---

// HitTest returns the topmost leaf at a screen point, or "".
func (e *Editor) HitTest(p engine.Point) string {
	return e.tree.HitTest(p)
}

// Render compiles the scene into draw commands as JSON.
func (e *Editor) Render() string {
	out, _ := engine.DrawCommandsToJSON(engine.CompileDrawCommands(e.tree))
	return out
}

// Overlay returns the selected node's handle set, recomputed from its
// current absolute transform. An empty selection yields an invalid set.
func (e *Editor) Overlay() HandleSet {
	sel := e.sel.Selected()
	if sel == "" {
		return HandleSet{}
	}
	return ComputeHandleSet(e.tree, sel)
}

// OverlayJSON serializes the current handle set.
func (e *Editor) OverlayJSON() string {
	data, err := json.Marshal(e.Overlay())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Frame returns the coalesced per-frame payload when anything changed since
// the last call: draw commands plus overlay. ok is false when the frame is
// clean and nothing needs repainting.
func (e *Editor) Frame() (render, overlay string, ok bool) {
	if !e.tree.Dirty() {
		return "", "", false
	}
	e.tree.MarkClean()
	return e.Render(), e.OverlayJSON(), true
}

// OnSelectionChanged subscribes a UI plugin to selection notifications.
func (e *Editor) OnSelectionChanged(fn func(old, cur string)) {
	e.sel.OnSelectionChanged(fn)
}

// OnHoverChanged subscribes a UI plugin to hover notifications.
func (e *Editor) OnHoverChanged(fn func(old, cur string)) {
	e.sel.OnHoverChanged(fn)
}
