package ws

import (
	"sync"

	"github.com/foliodoc/collabdoc/internal/cache"
	"github.com/foliodoc/collabdoc/internal/delta"
)

// Hub fans messages out to every connection that has joined a document's
// room. presence is the shared Redis-backed view of who's online; rooms is
// purely in-process (this server instance's live connections).
type Hub struct {
	presence cache.PresenceCache

	mu sync.RWMutex
	// docID -> set of connections
	rooms map[string]map[*Conn]struct{}
}

func NewHub(p cache.PresenceCache) *Hub {
	return &Hub{presence: p, rooms: make(map[string]map[*Conn]struct{})}
}

func (h *Hub) Join(docID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[docID] == nil {
		// Keyed by connection, not userID: one user may hold several
		// connections (tabs/devices), and a broadcast must reach each one.
		h.rooms[docID] = make(map[*Conn]struct{})
	}
	h.rooms[docID][c] = struct{}{}
}

func (h *Hub) Leave(docID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[docID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, docID)
		}
	}
}

func (h *Hub) BroadcastPresence(docID string, members []PresenceMember) {
	h.mu.RLock()
	conns := h.rooms[docID]
	h.mu.RUnlock()
	msg := ServerMessage{Type: "presence", DocID: docID, Members: members}
	for c := range conns {
		c.SendMessageEnqueue(msg)
	}
}

func (h *Hub) BroadcastCursor(docID string, userID uint64, rng interface{}) {
	h.mu.RLock()
	conns := h.rooms[docID]
	h.mu.RUnlock()
	msg := ServerMessage{Type: "cursor", DocID: docID, UserID: userID, Range: rng}
	for c := range conns {
		c.SendMessageEnqueue(msg)
	}
}

// BroadcastAppliedOp pushes an applied op list to every connection in
// docID's room other than sender, which already received its own ack via
// OpAppliedMessage.
func (h *Hub) BroadcastAppliedOp(docID string, sender *Conn, authorID uint64, ops delta.Ops) {
	h.mu.RLock()
	conns := h.rooms[docID]
	h.mu.RUnlock()
	msg := OpBroadcastMessage{Type: "op_broadcast", DocID: docID, AuthorID: authorID, Ops: ops}
	for c := range conns {
		if c == sender {
			continue
		}
		c.SendMessageEnqueue(msg)
	}
}
