// Package push provides the websocket push-channel client. The
// platform delivers server-originated events over a private, per-user
// channel outside the request/response cycle.
package push

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
)

// message is the wire frame carried on a push channel.
type message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Broker opens private websocket channels against the platform's push
// endpoint. It keeps at most one live connection per channel name.
type Broker struct {
	wsURL  string
	token  string
	log    logging.Logger
	dialer *websocket.Dialer

	mu   sync.Mutex
	subs map[string]*channelSub
}

// NewBroker creates a broker dialing the given websocket URL
// (e.g. wss://rollcall.example.com/ws). The token authenticates the
// handshake and may be empty.
func NewBroker(wsURL, token string, log logging.Logger) *Broker {
	if log == nil {
		log = logging.Noop()
	}
	return &Broker{
		wsURL:  wsURL,
		token:  token,
		log:    log,
		dialer: websocket.DefaultDialer,
		subs:   make(map[string]*channelSub),
	}
}

// Private opens (or returns) the private channel with the given name.
// The connection's read pump runs on its own goroutine and dispatches
// decoded events to registered handlers.
func (b *Broker) Private(channel string) (ports.Subscription, error) {
	b.mu.Lock()
	if sub, ok := b.subs[channel]; ok {
		b.mu.Unlock()
		return sub, nil
	}
	b.mu.Unlock()

	endpoint, err := url.Parse(b.wsURL)
	if err != nil {
		return nil, fmt.Errorf("push broker: invalid ws url: %w", err)
	}
	q := endpoint.Query()
	q.Set("channel", channel)
	if b.token != "" {
		q.Set("token", b.token)
	}
	endpoint.RawQuery = q.Encode()

	conn, _, err := b.dialer.Dial(endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("push broker: dial %s: %w", channel, err)
	}

	sub := &channelSub{
		channel:  channel,
		conn:     conn,
		handlers: make(map[string][]ports.EventHandler),
		log:      b.log,
	}
	b.mu.Lock()
	b.subs[channel] = sub
	b.mu.Unlock()

	go sub.readPump()
	return sub, nil
}

// Leave tears down the subscription on the named channel. Leaving a
// channel that was never joined is a no-op.
func (b *Broker) Leave(channel string) error {
	b.mu.Lock()
	sub, ok := b.subs[channel]
	delete(b.subs, channel)
	b.mu.Unlock()
	if !ok {
		return nil
	}
	return sub.Close()
}

// channelSub is one live private channel.
type channelSub struct {
	channel string
	conn    *websocket.Conn
	log     logging.Logger

	mu       sync.Mutex
	handlers map[string][]ports.EventHandler

	closeOnce sync.Once
	closeErr  error
}

// Listen registers the handler for the named event. Handlers run on
// the read-pump goroutine, in registration order.
func (s *channelSub) Listen(event string, handler ports.EventHandler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], handler)
	s.mu.Unlock()
}

// Close shuts the connection down, ending the read pump.
func (s *channelSub) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// readPump reads frames until the connection dies and dispatches each
// decoded event synchronously.
func (s *channelSub) readPump() {
	defer s.Close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("push channel closed", "channel", s.channel, "error", err)
			return
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("discarding malformed push frame", "channel", s.channel, "error", err)
			continue
		}
		s.dispatch(msg)
	}
}

func (s *channelSub) dispatch(msg message) {
	s.mu.Lock()
	handlers := append([]ports.EventHandler(nil), s.handlers[msg.Event]...)
	s.mu.Unlock()
	if len(handlers) == 0 {
		return
	}

	var notif domain.Notification
	if err := json.Unmarshal(msg.Data, &notif); err != nil {
		s.log.Warn("discarding malformed push payload", "channel", s.channel, "event", msg.Event, "error", err)
		return
	}
	ev := ports.Event{Notification: notif}
	for _, h := range handlers {
		h(ev)
	}
}
