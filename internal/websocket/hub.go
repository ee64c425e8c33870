package websocket

import (
	"encoding/json"
	"sync"

	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Client merepresentasikan satu koneksi websocket milik satu user.
type Client struct {
	Conn   *websocket.Conn
	UserID int
	Mu     sync.Mutex
}

// TaskEvent dikirim ke klien pemilik task setiap kali task
// dibuat, diubah, atau dihapus.
type TaskEvent struct {
	Action string      `json:"action"`
	Task   models.Task `json:"task"`
}

// Hub mengelola koneksi websocket dan fan-out event per user.
type Hub struct {
	Clients    map[*Client]bool
	Events     chan TaskEvent
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Events:     make(chan TaskEvent, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish mengantrikan event tanpa memblokir handler.
// Event dibuang jika buffer penuh; feed ini best-effort.
func (h *Hub) Publish(action string, task models.Task) {
	select {
	case h.Events <- TaskEvent{Action: action, Task: task}:
	default:
	}
}

// Run menjalankan loop Hub: register, unregister, dan pengiriman event.
// Event hanya dikirim ke koneksi milik user pemilik task.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case event := <-h.Events:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
				continue
			}
			for client := range h.Clients {
				if client.UserID != event.Task.UserID {
					continue
				}
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, payload)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
