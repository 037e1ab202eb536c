package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client -> server frames.
type inbound struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	Query  string    `json:"query,omitempty"`
	Args   QueryArgs `json:"args"`
	Search string    `json:"search,omitempty"`
}

// Server -> client frames.
type outbound struct {
	Type  string      `json:"type"`
	ID    string      `json:"id,omitempty"`
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

type subscription struct {
	query string
	args  QueryArgs
	// version tăng mỗi khi args đổi, kết quả cũ bị bỏ qua
	version uint64
	// generation của kết quả mới nhất đã gửi
	delivered uint64
	debounce  *Debouncer
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
	subs   map[string]*subscription
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		subs: make(map[string]*subscription),
	}
}

func (c *Client) push(msg outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.WithError(err).Error("marshal websocket frame")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueueLocked(msg.ID, data)
}

// enqueueLocked expects c.mu to be held.
func (c *Client) enqueueLocked(id string, data []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.WithField("id", id).Warn("websocket send buffer full, dropping frame")
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, sub := range c.subs {
		if sub.debounce != nil {
			sub.debounce.Stop()
		}
	}
	close(c.send)
}

func (c *Client) subscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// run evaluates a subscription and pushes the result unless the
// subscription changed, went away, or already got a result from a later
// generation meanwhile.
func (c *Client) run(id string, loading bool) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	query, args, version := sub.query, sub.args, sub.version
	generation := c.hub.generation.Load()
	c.mu.Unlock()

	if loading {
		c.push(outbound{Type: "loading", ID: id})
	}

	data, err := c.hub.evaluate(query, args)
	msg := outbound{Type: "ready", ID: id, Data: data}
	if err != nil {
		msg = outbound{Type: "error", ID: id, Error: err.Error()}
	}
	frame, merr := json.Marshal(msg)
	if merr != nil {
		log.WithError(merr).Error("marshal websocket frame")
		return
	}

	// kiểm tra và enqueue trong cùng một lock để thứ tự gửi khớp generation
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.subs[id]
	if !ok || current != sub || current.version != version || generation < current.delivered {
		return
	}
	current.delivered = generation
	c.enqueueLocked(id, frame)
}

func (c *Client) refreshAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.run(id, false)
	}
}

func (c *Client) handle(msg inbound) {
	if msg.ID == "" {
		c.push(outbound{Type: "error", Error: "missing subscription id"})
		return
	}

	switch msg.Type {
	case "subscribe":
		c.mu.Lock()
		if old, ok := c.subs[msg.ID]; ok && old.debounce != nil {
			old.debounce.Stop()
		}
		sub := &subscription{query: msg.Query, args: msg.Args}
		if msg.Query == QuerySearch {
			sub.debounce = NewDebouncer(c.hub.debounce)
		}
		c.subs[msg.ID] = sub
		c.mu.Unlock()
		go c.run(msg.ID, true)

	case "search":
		c.mu.Lock()
		sub, ok := c.subs[msg.ID]
		if !ok || sub.debounce == nil {
			c.mu.Unlock()
			c.push(outbound{Type: "error", ID: msg.ID, Error: "not a search subscription"})
			return
		}
		term := msg.Search
		c.mu.Unlock()

		id := msg.ID
		sub.debounce.Trigger(func() {
			c.mu.Lock()
			current, ok := c.subs[id]
			if !ok || current != sub || c.closed {
				c.mu.Unlock()
				return
			}
			current.args.Search = term
			current.version++
			c.mu.Unlock()
			c.run(id, true)
		})

	case "unsubscribe":
		c.mu.Lock()
		if sub, ok := c.subs[msg.ID]; ok {
			if sub.debounce != nil {
				sub.debounce.Stop()
			}
			delete(c.subs, msg.ID)
		}
		c.mu.Unlock()

	default:
		c.push(outbound{Type: "error", ID: msg.ID, Error: "unknown frame type " + msg.Type})
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("websocket read")
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
