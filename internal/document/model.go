package document

import (
	"errors"
	"fmt"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// SceneDocument is the serializable form of a project's scene: the node
// arena flattened into a map plus viewport defaults. It is the exchange
// format between the server, the browser host, and tests.
type SceneDocument struct {
	Project Project               `json:"project"`
	Scene   Scene                 `json:"scene"`
	Nodes   map[string]SceneEntry `json:"nodes"`
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Scene struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Background string  `json:"background"`
	Root       string  `json:"root"`
	MinZoom    float64 `json:"minZoom"`
	MaxZoom    float64 `json:"maxZoom"`
}

// SceneEntry is one node in document form. Transform and size fields match
// the engine's node model exactly so loading is a direct copy.
type SceneEntry struct {
	ID        string           `json:"id"`
	Kind      engine.Kind      `json:"kind"`
	Parent    *string          `json:"parent"`
	Children  []string         `json:"children"`
	Transform engine.Transform `json:"transform"`
	Size      engine.Size      `json:"size"`
	Radius    [4]float64       `json:"radius"`
	Style     engine.Style     `json:"style"`
	Visible   bool             `json:"visible"`
	Locked    bool             `json:"locked"`
	Draggable bool             `json:"draggable"`
}

// BuildTree materializes the document into a scene tree rooted at the
// document's root entry. Children are attached in document order; entries
// whose parent is missing fail the build.
func (d *SceneDocument) BuildTree() (*engine.Tree, error) {
	rootEntry, ok := d.Nodes[d.Scene.Root]
	if !ok {
		return nil, fmt.Errorf("document root %q missing from nodes", d.Scene.Root)
	}

	t := engine.NewTree(rootEntry.ID)
	if root, ok := t.Get(rootEntry.ID); ok {
		root.Transform = normalizeTransform(rootEntry.Transform)
	}

	var attach func(parentID string) error
	attach = func(parentID string) error {
		entry, ok := d.Nodes[parentID]
		if !ok {
			return fmt.Errorf("node %q referenced but not present", parentID)
		}
		for _, childID := range entry.Children {
			child, ok := d.Nodes[childID]
			if !ok {
				return fmt.Errorf("child %q of %q not present", childID, parentID)
			}
			node := &engine.Node{
				ID:        child.ID,
				Kind:      child.Kind,
				Transform: normalizeTransform(child.Transform),
				Size:      child.Size,
				Radius:    child.Radius,
				Style:     child.Style,
				Visible:   child.Visible,
				Locked:    child.Locked,
				Draggable: child.Draggable,
			}
			if err := t.Add(node, parentID); err != nil {
				return err
			}
			if err := attach(childID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := attach(rootEntry.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// FromTree snapshots a tree back into document form, preserving the
// existing project and scene metadata.
func (d *SceneDocument) FromTree(t *engine.Tree) {
	nodes := make(map[string]SceneEntry, t.Len())
	t.Walk(func(n *engine.Node) {
		entry := SceneEntry{
			ID:        n.ID,
			Kind:      n.Kind,
			Children:  append([]string(nil), n.Children...),
			Transform: n.Transform,
			Size:      n.Size,
			Radius:    n.Radius,
			Style:     n.Style,
			Visible:   n.Visible,
			Locked:    n.Locked,
			Draggable: n.Draggable,
		}
		if n.Parent != "" {
			parent := n.Parent
			entry.Parent = &parent
		}
		nodes[n.ID] = entry
	})
	d.Nodes = nodes
	d.Scene.Root = t.Root()
}

// Validate checks the structural integrity of the document.
func (d *SceneDocument) Validate() error {
	if d.Scene.Root == "" {
		return errors.New("document has no root")
	}
	if _, ok := d.Nodes[d.Scene.Root]; !ok {
		return fmt.Errorf("root %q missing from nodes", d.Scene.Root)
	}
	for id, entry := range d.Nodes {
		if entry.ID != id {
			return fmt.Errorf("node key %q does not match entry id %q", id, entry.ID)
		}
		for _, child := range entry.Children {
			c, ok := d.Nodes[child]
			if !ok {
				return fmt.Errorf("node %q lists missing child %q", id, child)
			}
			if c.Parent == nil || *c.Parent != id {
				return fmt.Errorf("child %q does not point back to parent %q", child, id)
			}
		}
	}
	return nil
}

// normalizeTransform substitutes unit scale for zero-value scale fields so
// a sparsely-written document does not collapse its nodes.
func normalizeTransform(t engine.Transform) engine.Transform {
	if t.SX == 0 {
		t.SX = 1
	}
	if t.SY == 0 {
		t.SY = 1
	}
	return t
}
