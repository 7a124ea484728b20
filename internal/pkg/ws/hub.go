package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 管理后台实时推送。所有连接都属于管理员，
// 新的分析记录产生时向全部连接广播。
type Hub struct {
	// 每个管理员可以有多个连接（多标签页、重连等场景）
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// AnalysisCreatedEvent 新分析事件
type AnalysisCreatedEvent struct {
	AnalysisID int64  `json:"analysis_id"`
	UserID     int64  `json:"user_id"`
	Service    string `json:"service"`
	Verdict    string `json:"verdict"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	log.Printf("Admin %d connected, conns: %d", client.UserID, len(h.clients[client.UserID]))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	log.Printf("Admin %d disconnected", client.UserID)
}

// Broadcast 向所有在线管理员推送消息
func (h *Hub) Broadcast(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0)
	for _, conns := range h.clients {
		for c := range conns {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("Broadcast write error for admin %d: %v", c.UserID, err)
		}
	}
	return nil
}

// NotifyAnalysisCreated 广播新分析事件
func (h *Hub) NotifyAnalysisCreated(event *AnalysisCreatedEvent) {
	if err := h.Broadcast(&Message{Type: "analysis_created", Data: event}); err != nil {
		log.Printf("Failed to broadcast analysis_created: %v", err)
	}
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
