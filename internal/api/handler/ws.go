package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/internal/ws"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 前台/厨房屏幕同源部署，跨域交给反向代理管
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket 实时通道入口。连接即注册，断开即摘除；
// 不回放历史事件，客户端连上后自行全量拉取订单。
func (h *Handler) WebSocket(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	wc := ws.NewConn(conn)
	h.hub.Register(clientID, wc)
	logger.Info("ws client connected", zap.String("client_id", clientID))

	// 读循环只为探测断连；客户端消息不驱动任何状态
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	// 按连接身份摘除：同 id 已经重连顶替时不动新注册
	h.hub.Unregister(clientID, wc)
	logger.Info("ws client disconnected", zap.String("client_id", clientID))
}
