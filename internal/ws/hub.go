// Package ws 实时通道：厨房和前台客户端通过 websocket 接收订单事件。
// 广播尽力投递，不排队不重放；断线重连后客户端自行全量拉取对账。
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

const (
	// sendBuffer 单客户端发送队列长度，满了直接丢该客户端的这条消息
	sendBuffer = 64
	// writeTimeout 单次写超时，慢客户端不拖住写循环
	writeTimeout = 5 * time.Second
)

// Conn hub 需要的最小传输面，便于测试注入
type Conn interface {
	WriteText(data []byte) error
	Close() error
}

type client struct {
	id   string
	conn Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writeLoop 每个客户端一个写协程；写失败即判定客户端死亡
func (c *client) writeLoop(h *Hub) {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteText(msg); err != nil {
				logger.Warn("ws write failed, evicting client",
					zap.String("client_id", c.id), zap.Error(err))
				h.removeClient(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

// Hub 连接注册表。显式持有、注入使用，不走全局变量；
// 注册/摘除与广播遍历都在锁内，广播期间注册的客户端不会丢失。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Register 登记一个连接；同 id 重复注册顶掉旧连接
func (h *Hub) Register(id string, conn Conn) {
	c := &client{id: id, conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	if old, ok := h.clients[id]; ok {
		old.stop()
	}
	h.clients[id] = c
	h.mu.Unlock()

	go c.writeLoop(h)
}

// Remove 摘除连接并关闭，对未知 id 是 no-op
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		c.stop()
	}
}

// Unregister 摘除指定连接的注册。同 id 已被新连接顶替时是 no-op：
// 旧连接的断开回调不能摸到新注册。
func (h *Hub) Unregister(id string, conn Conn) {
	h.mu.Lock()
	c, ok := h.clients[id]
	match := ok && c.conn == conn
	if match {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if match {
		c.stop()
	}
}

// removeClient 按身份摘除：map 里已是同 id 的新 client 时不动它，
// 旧写循环的迟到失败只清理它自己
func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
	c.stop()
}

// SendTo 单播；客户端不在线时静默丢弃
func (h *Hub) SendTo(id, message string) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if ok {
		c.enqueue([]byte(message))
	}
}

// Broadcast 向所有在线客户端投递。单个客户端失败不影响其他客户端，
// 也不向调用方抛错——此刻订单事务已经提交。
func (h *Hub) Broadcast(message string) {
	data := []byte(message)
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(data)
	}
}

func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		logger.Warn("ws send queue full, drop message", zap.String("client_id", c.id))
	}
}

// ClientCount 当前在线客户端数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 停止 hub 并断开所有客户端，进程退出时调用
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

// wsConn 把 gorilla 连接适配成 Conn，带写超时
type wsConn struct {
	c *websocket.Conn
}

// NewConn 把 gorilla 连接包装成带写超时的 Conn
func NewConn(c *websocket.Conn) Conn {
	return &wsConn{c: c}
}

func (w *wsConn) WriteText(data []byte) error {
	_ = w.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error { return w.c.Close() }
