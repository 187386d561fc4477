// Package editor implements the interactive layer over the scene tree:
// the viewport camera, appearance-preserving group transfer, hover and
// selection resolution with drill-down, screen-space overlay handles, and
// the gesture state machines that sequence pointer-driven edits.
//
// Everything runs synchronously on a single event-processing sequence per
// session. Input arrives as abstract events so the whole layer is testable
// by feeding synthetic streams; no DOM or window system is involved.
package editor

import "github.com/pivotgfx/pivot/backend-go/internal/engine"

// PointerKind distinguishes the phases of a pointer interaction.
type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// Button identifies which pointer button an event refers to.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers carries the keyboard modifier state accompanying an event.
type Modifiers struct {
	Ctrl  bool `json:"ctrl"`  // drill into nested groups / leaf-direct selection
	Shift bool `json:"shift"` // angle snapping while rotating, link corner radii
	Alt   bool `json:"alt"`
	Space bool `json:"space"` // hold-to-pan
}

// PointerEvent is one pointer transition in screen coordinates.
type PointerEvent struct {
	Kind     PointerKind  `json:"kind"`
	Pos      engine.Point `json:"pos"`
	Button   Button       `json:"button"`
	Mods     Modifiers    `json:"mods"`
	ClickCnt int          `json:"clickCount"` // 2 on double-click downs
}

// WheelEvent is a scroll step. With Ctrl held it zooms about the pointer;
// otherwise it pans.
type WheelEvent struct {
	Pos  engine.Point `json:"pos"`
	DX   float64      `json:"dx"`
	DY   float64      `json:"dy"`
	Mods Modifiers    `json:"mods"`
}

// KeyEvent is a key transition the editor cares about (Escape cancels the
// active gesture; everything else is the host's shortcut layer).
type KeyEvent struct {
	Key  string    `json:"key"`
	Down bool      `json:"down"`
	Mods Modifiers `json:"mods"`
}
