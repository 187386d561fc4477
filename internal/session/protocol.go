// Package session serves interactive editor sessions over WebSocket: input
// events stream in, coalesced frames (draw commands plus overlay handles)
// and selection notifications stream out. Each connection owns a private
// editor instance; the hub only manages session lifetime.
package session

import "encoding/json"

// Message is the envelope for every frame on the wire.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types (host → editor).
const (
	TypeInputPointer = "input.pointer"
	TypeInputWheel   = "input.wheel"
	TypeInputKey     = "input.key"
	TypeOpApply      = "op.apply"
	TypeDocGet       = "doc.get"
)

// Outbound message types (editor → host).
const (
	TypeWelcome          = "welcome"
	TypeFrame            = "frame"
	TypeSelectionChanged = "selection.changed"
	TypeHoverChanged     = "hover.changed"
	TypeDocState         = "doc.state"
	TypeOpAck            = "op.ack"
	TypeOpNack           = "op.nack"
	TypeError            = "error"
)

// WelcomePayload is sent once after the session is established.
type WelcomePayload struct {
	SessionID string  `json:"sessionId"`
	ProjectID string  `json:"projectId"`
	Root      string  `json:"root"`
	MinZoom   float64 `json:"minZoom"`
	MaxZoom   float64 `json:"maxZoom"`
}

// FramePayload carries one coalesced repaint: the compiled draw commands
// and the overlay for the current selection, both pre-serialized JSON.
type FramePayload struct {
	Render  json.RawMessage `json:"render"`
	Overlay json.RawMessage `json:"overlay"`
}

// SelectionChangedPayload notifies UI plugins of selection or hover moves.
type SelectionChangedPayload struct {
	Old string `json:"old"`
	Cur string `json:"cur"`
}

// Op is a discrete structural command, applied between gestures rather
// than per-frame.
type Op struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	NodeID string `json:"nodeId,omitempty"`

	// For node.group
	Members []string `json:"members,omitempty"`

	// For node.moveInto / node.create
	ParentID string `json:"parentId,omitempty"`

	// For node.create
	Entry json.RawMessage `json:"entry,omitempty"`
}

// Op types.
const (
	OpNodeGroup      = "node.group"
	OpNodeUngroup    = "node.ungroup"
	OpNodeMoveInto   = "node.moveInto"
	OpNodeCreate     = "node.create"
	OpNodeDelete     = "node.delete"
	OpSelectionSet   = "selection.set"
	OpSelectionClear = "selection.clear"
	OpCameraReset    = "camera.reset"
	OpGroupSelection = "selection.group"
)

// OpApplyPayload wraps an op submission.
type OpApplyPayload struct {
	Op Op `json:"op"`
}

// OpAckPayload acknowledges an applied op.
type OpAckPayload struct {
	OpID  string `json:"opId"`
	Seq   int64  `json:"seq"`
	NewID string `json:"newId,omitempty"` // id created by node.group / node.create
}

// OpNackPayload rejects an op.
type OpNackPayload struct {
	OpID   string `json:"opId"`
	Reason string `json:"reason"`
}
