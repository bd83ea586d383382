package hub

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// feedBuffer is how many snapshots or events a viewer may lag behind
	// before the hub drops it.
	feedBuffer = 256

	writeTimeout = 10 * time.Second

	// Viewers must answer a keepalive ping within idleTimeout.
	idleTimeout = 60 * time.Second
	keepalive   = idleTimeout * 9 / 10

	// Viewers only ever send control frames.
	readLimit = 4 * 1024
)

// Client is one dashboard viewer subscribed to a feed
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	queue  chan Message
	closed bool
}

// NewClient subscribes conn to h. Subscribing to a stopped hub yields a
// closed client whose Run returns as soon as the viewer goes away.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:   h,
		conn:  conn,
		queue: make(chan Message, feedBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
	return c
}

// Send queues msg for this viewer only, e.g. the initial snapshot or the
// event replay. False means the viewer is gone or has fallen behind.
func (c *Client) Send(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.queue <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.queue)
}

// Run streams the feed to the viewer and blocks until it disconnects. Call it
// from the websocket handler.
func (c *Client) Run() {
	go c.stream()
	c.watch()
}

// watch reads until the viewer leaves, then unsubscribes.
func (c *Client) watch() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// stream is the connection's only writer. It sends queued feed messages and
// keepalive pings, and says goodbye once the hub closes the queue.
func (c *Client) stream() {
	ping := time.NewTicker(keepalive)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.queue:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
