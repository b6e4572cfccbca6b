package main

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type pushMessage struct {
	Preference string `json:"preference"`
	Value      string `json:"value"`
}

// hub fans preference updates out to every websocket session a user holds.
type hub struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	sessions map[string]map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *hub) handleConnect(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "user query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	if h.sessions[user] == nil {
		h.sessions[user] = make(map[*websocket.Conn]bool)
	}
	h.sessions[user][conn] = true
	h.mu.Unlock()

	slog.Info("push session connected", "user", user)

	// Drain until the client goes away; the hub never expects inbound
	// frames.
	go func() {
		defer h.drop(user, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *hub) drop(user string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[user], conn)
	conn.Close()
	slog.Info("push session disconnected", "user", user)
}

func (h *hub) broadcast(user string, msg pushMessage) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.sessions[user]))
	for c := range h.sessions[user] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			h.drop(user, c)
		}
	}
}
