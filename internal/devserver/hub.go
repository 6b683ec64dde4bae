package devserver

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rollcallhq/rollcall-notify/internal/logging"
)

// hub fans event frames out to websocket clients keyed by channel name.
type hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
	log     logging.Logger
}

func newHub(log logging.Logger) *hub {
	if log == nil {
		log = logging.Noop()
	}
	return &hub{
		clients: make(map[string]map[*wsClient]struct{}),
		log:     log,
	}
}

func (h *hub) register(c *wsClient) {
	if c == nil || c.channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.channel]
	if set == nil {
		set = make(map[*wsClient]struct{})
		h.clients[c.channel] = set
	}
	set[c] = struct{}{}
}

func (h *hub) unregister(c *wsClient) {
	if c == nil || c.channel == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.channel]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.channel)
		}
	}
	h.mu.Unlock()
	c.close()
}

// broadcast marshals an {event, data} frame and sends it to every
// client on the channel. Slow clients are dropped rather than awaited.
func (h *hub) broadcast(channel, event string, data any) error {
	payload, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	set := h.clients[channel]
	targets := make([]*wsClient, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			h.unregister(c)
		}
	}
	return nil
}

type wsClient struct {
	channel string
	conn    *websocket.Conn
	send    chan []byte
	log     logging.Logger

	closeOnce sync.Once
}

func newWSClient(channel string, conn *websocket.Conn, log logging.Logger) *wsClient {
	return &wsClient{
		channel: channel,
		conn:    conn,
		send:    make(chan []byte, 64),
		log:     log,
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *wsClient) writePump() {
	if c.conn == nil {
		return
	}
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.log.Debug("devserver: websocket write failed", "channel", c.channel, "error", err)
			return
		}
	}
}
