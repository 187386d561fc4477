//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/pivotgfx/pivot/backend-go/internal/document"
	"github.com/pivotgfx/pivot/backend-go/internal/editor"
	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

var ed *editor.Editor

func main() {
	loadSample("proj_sample")

	// Create the editor API object
	pivotEditor := js.Global().Get("Object").New()

	// --- Commands (frontend → editor) ---
	pivotEditor.Set("loadDocument", js.FuncOf(loadDocument))
	pivotEditor.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	pivotEditor.Set("pointerEvent", js.FuncOf(pointerEvent))
	pivotEditor.Set("wheelEvent", js.FuncOf(wheelEvent))
	pivotEditor.Set("keyEvent", js.FuncOf(keyEvent))
	pivotEditor.Set("select", js.FuncOf(selectNode))
	pivotEditor.Set("clearSelection", js.FuncOf(clearSelection))
	pivotEditor.Set("groupSelection", js.FuncOf(groupSelection))
	pivotEditor.Set("ungroup", js.FuncOf(ungroup))
	pivotEditor.Set("moveInto", js.FuncOf(moveInto))
	pivotEditor.Set("deleteNode", js.FuncOf(deleteNode))
	pivotEditor.Set("resetCamera", js.FuncOf(resetCamera))

	// --- Queries (frontend ← editor) ---
	pivotEditor.Set("frame", js.FuncOf(frame))
	pivotEditor.Set("render", js.FuncOf(render))
	pivotEditor.Set("overlay", js.FuncOf(overlay))
	pivotEditor.Set("hitTest", js.FuncOf(hitTest))
	pivotEditor.Set("getSelection", js.FuncOf(getSelection))
	pivotEditor.Set("getHover", js.FuncOf(getHover))
	pivotEditor.Set("getDocument", js.FuncOf(getDocument))
	pivotEditor.Set("getCamera", js.FuncOf(getCamera))

	// Register on global scope
	js.Global().Set("pivotEditor", pivotEditor)

	// Signal that WASM is ready
	js.Global().Set("pivotWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func loadSample(projectID string) {
	doc := document.NewSampleDocument(projectID)
	tree, err := doc.BuildTree()
	if err != nil {
		panic(err)
	}
	ed = editor.New(tree, doc.Scene.MinZoom, doc.Scene.MaxZoom)
	for _, id := range tree.Children(tree.Root()) {
		ed.Selection().Register(id)
	}
	tree.MarkDirty()
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	var doc document.SceneDocument
	if err := json.Unmarshal([]byte(args[0].String()), &doc); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	if err := doc.Validate(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	tree, err := doc.BuildTree()
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	ed = editor.New(tree, doc.Scene.MinZoom, doc.Scene.MaxZoom)
	for _, id := range tree.Children(tree.Root()) {
		ed.Selection().Register(id)
	}
	tree.MarkDirty()

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}

	loadSample(projectID)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func pointerEvent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var ev editor.PointerEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return nil
	}
	ed.ApplyPointer(ev)
	return nil
}

func wheelEvent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var ev editor.WheelEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return nil
	}
	ed.ApplyWheel(ev)
	return nil
}

func keyEvent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var ev editor.KeyEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return nil
	}
	ed.ApplyKey(ev)
	return nil
}

func selectNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.Select(args[0].String())
	return nil
}

func clearSelection(this js.Value, args []js.Value) interface{} {
	ed.ClearSelection()
	return nil
}

func groupSelection(this js.Value, args []js.Value) interface{} {
	groupID, err := ed.GroupSelection()
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "groupId": groupID})
}

func ungroup(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing group id"})
	}
	if err := ed.Ungroup(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func moveInto(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing node or parent id"})
	}
	if err := ed.MoveInto(args[0].String(), args[1].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func deleteNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing node id"})
	}
	if err := ed.DeleteNode(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func resetCamera(this js.Value, args []js.Value) interface{} {
	ed.Camera().Reset()
	return nil
}

// --- Query Handlers ---

// frame returns `{render, overlay}` when anything changed since the last
// call, or null when the frame is clean. The host calls this once per
// requestAnimationFrame; bursts of input coalesce into one repaint.
func frame(this js.Value, args []js.Value) interface{} {
	render, overlay, ok := ed.Frame()
	if !ok {
		return js.Null()
	}
	out := js.Global().Get("Object").New()
	out.Set("render", render)
	out.Set("overlay", overlay)
	return out
}

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Render())
}

func overlay(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.OverlayJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(ed.HitTest(engine.Point{X: x, Y: y}))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Selected())
}

func getHover(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Hovered())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	var doc document.SceneDocument
	doc.FromTree(ed.Tree())
	data, err := json.Marshal(doc)
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getCamera(this js.Value, args []js.Value) interface{} {
	pos := ed.Camera().Position()
	out := js.Global().Get("Object").New()
	out.Set("x", pos.X)
	out.Set("y", pos.Y)
	out.Set("scale", ed.Camera().Scale())
	return out
}
