package ws

import (
	"encoding/json"
	"sync"

	"github.com/yalcindeniztr/tarihseli/internal/logger"
)

// Hub держит открытые соединения по id игрока. Один игрок может висеть
// с нескольких вкладок: уведомление уходит во все.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}

	// хуки жизненного цикла: первое подключение игрока / последнее отключение
	OnFirstConnect func(userID int64)
	OnLastClose    func(userID int64)
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	first := len(set) == 1
	h.mu.Unlock()

	logger.Debug("ws connected", "user_id", c.UserID)
	if first && h.OnFirstConnect != nil {
		h.OnFirstConnect(c.UserID)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	last := ok && len(set) == 0
	h.mu.Unlock()

	logger.Debug("ws disconnected", "user_id", c.UserID)
	if last && h.OnLastClose != nil {
		h.OnLastClose(c.UserID)
	}
}

// SendToUser marshals payload into an envelope and queues it to every
// connection of the user. Переполненные очереди молча пропускаются:
// медленный клиент доберёт состояние через GET /duel/session.
func (h *Hub) SendToUser(userID int64, msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ws marshal failed", "type", msgType, "error", err)
		return
	}
	msg, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		logger.Error("ws marshal failed", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws send buffer full, dropping", "user_id", userID, "type", msgType)
		}
	}
}

// Connected reports whether the user has at least one open socket.
func (h *Hub) Connected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
