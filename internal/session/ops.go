package session

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pivotgfx/pivot/backend-go/internal/document"
	"github.com/pivotgfx/pivot/backend-go/internal/engine"
)

// applyOp runs one structural command against the session's editor and
// answers with an ack or nack. Ops are coarse edits issued between
// gestures; pointer-driven edits never go through here.
func (s *Session) applyOp(payload json.RawMessage) {
	var req OpApplyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Warn("invalid op payload", "error", err, "session", s.id)
		s.nack("", fmt.Sprintf("invalid payload: %v", err))
		return
	}

	op := req.Op
	newID, err := s.applyOne(op)
	if err != nil {
		slog.Debug("op rejected", "op", op.Type, "error", err, "session", s.id)
		s.nack(op.ID, err.Error())
		return
	}

	s.seq++
	ackPayload, _ := json.Marshal(OpAckPayload{OpID: op.ID, Seq: s.seq, NewID: newID})
	s.client.Send(&Message{Type: TypeOpAck, SessionID: s.id, Seq: s.seq, Payload: ackPayload})
}

func (s *Session) applyOne(op Op) (string, error) {
	switch op.Type {
	case OpNodeGroup:
		if len(op.Members) == 0 {
			return "", fmt.Errorf("group: no members")
		}
		return s.editor.Group(op.Members)

	case OpGroupSelection:
		return s.editor.GroupSelection()

	case OpNodeUngroup:
		return "", s.editor.Ungroup(op.NodeID)

	case OpNodeMoveInto:
		return "", s.editor.MoveInto(op.NodeID, op.ParentID)

	case OpNodeCreate:
		var entry document.SceneEntry
		if err := json.Unmarshal(op.Entry, &entry); err != nil {
			return "", fmt.Errorf("create: invalid entry: %w", err)
		}
		n := &engine.Node{
			ID:        entry.ID,
			Kind:      entry.Kind,
			Transform: entry.Transform,
			Size:      entry.Size,
			Radius:    entry.Radius,
			Style:     entry.Style,
			Visible:   entry.Visible,
			Draggable: entry.Draggable,
		}
		if err := s.editor.AddNode(n, op.ParentID); err != nil {
			return "", err
		}
		return n.ID, nil

	case OpNodeDelete:
		return "", s.editor.DeleteNode(op.NodeID)

	case OpSelectionSet:
		s.editor.Select(op.NodeID)
		return "", nil

	case OpSelectionClear:
		s.editor.ClearSelection()
		return "", nil

	case OpCameraReset:
		s.editor.Camera().Reset()
		return "", nil

	default:
		return "", fmt.Errorf("unknown op type: %s", op.Type)
	}
}

func (s *Session) nack(opID, reason string) {
	payload, _ := json.Marshal(OpNackPayload{OpID: opID, Reason: reason})
	s.client.Send(&Message{Type: TypeOpNack, SessionID: s.id, Payload: payload})
}
