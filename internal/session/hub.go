package session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pivotgfx/pivot/backend-go/internal/document"
	"github.com/pivotgfx/pivot/backend-go/internal/editor"
)

// DocumentProvider hands the hub the scene document for a project when a
// session opens. The project service implements it.
type DocumentProvider interface {
	SceneDocument(projectID string) (*document.SceneDocument, error)
}

// Session is one live connection and its private editor. There is no
// shared document state between sessions; every connection edits its own
// tree built from the project's document.
type Session struct {
	id     string
	client *Client
	editor *editor.Editor
	seq    int64
	mu     sync.Mutex
}

type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session // sessionID -> session
	docs       DocumentProvider
	register   chan *Client
	unregister chan *Client
}

func NewHub(docs DocumentProvider) *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		docs:       docs,
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	doc, err := h.docs.SceneDocument(client.ProjectID)
	if err != nil {
		slog.Warn("session rejected, no document", "project", client.ProjectID, "error", err)
		client.Send(errorMessage("project not found"))
		close(client.send)
		return
	}

	tree, err := doc.BuildTree()
	if err != nil {
		slog.Error("document build failed", "project", client.ProjectID, "error", err)
		client.Send(errorMessage("corrupt document"))
		close(client.send)
		return
	}

	ed := editor.New(tree, doc.Scene.MinZoom, doc.Scene.MaxZoom)
	for _, id := range tree.Children(tree.Root()) {
		ed.Selection().Register(id)
	}

	sess := &Session{id: client.SessionID, client: client, editor: ed}
	ed.OnSelectionChanged(func(old, cur string) {
		sess.notify(TypeSelectionChanged, old, cur)
	})
	ed.OnHoverChanged(func(old, cur string) {
		sess.notify(TypeHoverChanged, old, cur)
	})

	h.mu.Lock()
	h.sessions[client.SessionID] = sess
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		SessionID: client.SessionID,
		ProjectID: client.ProjectID,
		Root:      tree.Root(),
		MinZoom:   doc.Scene.MinZoom,
		MaxZoom:   doc.Scene.MaxZoom,
	})
	client.Send(&Message{Type: TypeWelcome, SessionID: client.SessionID, Payload: welcome})

	tree.MarkDirty()
	sess.flushFrame()

	slog.Info("session opened", "session", client.SessionID, "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	sess, ok := h.sessions[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, client.SessionID)
	h.mu.Unlock()

	close(sess.client.send)
	slog.Info("session closed", "session", client.SessionID, "user", client.UserID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	sess, ok := h.sessions[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch msg.Type {
	case TypeInputPointer:
		var ev editor.PointerEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			slog.Warn("invalid pointer payload", "error", err, "session", sess.id)
			return
		}
		sess.editor.ApplyPointer(ev)
	case TypeInputWheel:
		var ev editor.WheelEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			slog.Warn("invalid wheel payload", "error", err, "session", sess.id)
			return
		}
		sess.editor.ApplyWheel(ev)
	case TypeInputKey:
		var ev editor.KeyEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			slog.Warn("invalid key payload", "error", err, "session", sess.id)
			return
		}
		sess.editor.ApplyKey(ev)
	case TypeOpApply:
		sess.applyOp(msg.Payload)
	case TypeDocGet:
		sess.sendDocument()
	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", sess.id)
	}

	sess.flushFrame()
}

// flushFrame pushes one repaint when the editor marked anything dirty
// since the last flush. Bursts of input between flushes collapse into a
// single frame.
func (s *Session) flushFrame() {
	render, overlay, ok := s.editor.Frame()
	if !ok {
		return
	}
	s.seq++
	payload, _ := json.Marshal(FramePayload{
		Render:  json.RawMessage(render),
		Overlay: json.RawMessage(overlay),
	})
	s.client.Send(&Message{Type: TypeFrame, SessionID: s.id, Seq: s.seq, Payload: payload})
}

func (s *Session) notify(msgType, old, cur string) {
	payload, _ := json.Marshal(SelectionChangedPayload{Old: old, Cur: cur})
	s.client.Send(&Message{Type: msgType, SessionID: s.id, Payload: payload})
}

func (s *Session) sendDocument() {
	var doc document.SceneDocument
	doc.FromTree(s.editor.Tree())
	payload, err := json.Marshal(doc)
	if err != nil {
		slog.Error("marshal document", "error", err, "session", s.id)
		return
	}
	s.client.Send(&Message{Type: TypeDocState, SessionID: s.id, Payload: payload})
}

func errorMessage(reason string) *Message {
	payload, _ := json.Marshal(map[string]string{"reason": reason})
	return &Message{Type: TypeError, Payload: payload}
}
