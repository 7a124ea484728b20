package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/pkg/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要验证 Origin
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Handle 管理后台实时推送连接，经过 AdminAuth 中间件后升级
// GET /admin/ws
func (h *WebSocketHandler) Handle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
	}
	h.hub.Register(client)

	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// 只读取以感知连接关闭，管理端不发送业务消息
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
