package board

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans reservation lifecycle events out to the front-desk boards
// connected for each tenant.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Register(tenantID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[tenantID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.conns[tenantID] = set
	}
	set[conn] = struct{}{}
}

func (h *Hub) Unregister(tenantID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[tenantID]; ok {
		if _, exists := set[conn]; exists {
			_ = conn.Close()
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.conns, tenantID)
		}
	}
}

// Broadcast sends the message to every board of the tenant. Dead
// connections are dropped on write failure.
func (h *Hub) Broadcast(tenantID int64, message interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[tenantID]))
	for conn := range h.conns[tenantID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			h.Unregister(tenantID, conn)
		}
	}
}

func (h *Hub) BoardCount(tenantID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns[tenantID])
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for tenantID, set := range h.conns {
		for conn := range set {
			_ = conn.Close()
		}
		delete(h.conns, tenantID)
	}
}
