// Package control accepts remote-control WebSocket connections. Controllers
// send voice transcripts, talk-button presses, pointer input, trick buttons
// and spawn requests; each command gets a result or error reply, and world
// events are pushed to every controller.
package control

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/interaction"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

const (
	// sendBuffer is how many replies and events a controller may fall behind
	// before it is dropped.
	sendBuffer = 256

	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
)

var (
	// ErrControllerClosed is returned when sending to a controller that has
	// disconnected or been dropped.
	ErrControllerClosed = errors.New("control: controller closed")

	// ErrSlowController is returned when a controller's send buffer is full.
	ErrSlowController = errors.New("control: controller too slow")
)

// Commander executes controller commands. *world.World implements it.
type Commander interface {
	Voice(dogID, text string) (voice.Result, interaction.Performed, error)
	Trick(dogID, trick string) (interaction.Performed, error)
	Spawn(name string) (protocol.DogState, error)
	StartRecording(dogID string) error
	StopRecording(dogID string) (time.Duration, error)
}

// Connection represents a connected controller. Messages are queued and
// written by the connection's own write pump, so senders never block on the
// network.
type Connection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu     sync.Mutex
	send   chan []byte
	closed bool
	done   chan struct{}

	// Read goroutine only
	clicks *interaction.ClickTracker
}

func newConnection(id string, c *websocket.Conn) *Connection {
	now := time.Now()
	return &Connection{
		ID:        id,
		Conn:      c,
		Connected: now,
		LastSeen:  now,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		clicks:    interaction.NewClickTracker(),
	}
}

// Send queues a message for the controller. It returns ErrSlowController
// when the queue is full and ErrControllerClosed after disconnect.
func (c *Connection) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowController
	}
}

// close stops the write pump after it flushes what is queued.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump is the only writer on Conn. It closes Conn on return, which ends
// the read loop too.
func (c *Connection) writePump(wait time.Duration) {
	defer func() {
		c.Conn.Close()
		close(c.done)
	}()

	for data := range c.send {
		c.Conn.SetWriteDeadline(time.Now().Add(wait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(wait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.LastSeen = time.Now()
	c.mu.Unlock()
}

// Hub manages controller connections
type Hub struct {
	mu          sync.RWMutex
	controllers map[string]*Connection
	commander   Commander
	logger      *slog.Logger
	writeWait   time.Duration

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	commandsFailed   atomic.Uint64
	dropped          atomic.Uint64
}

// Option configures a Hub
type Option func(*Hub)

// WithWriteWait bounds each frame write to a controller (default 10s).
func WithWriteWait(d time.Duration) Option {
	return func(h *Hub) { h.writeWait = d }
}

// NewHub creates a controller hub that forwards commands to cmd
func NewHub(cmd Commander, logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = log.With("component", "control")
	}
	h := &Hub{
		controllers: make(map[string]*Connection),
		commander:   cmd,
		logger:      logger,
		writeWait:   writeWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/control", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/control", websocket.New(h.handleController))
	app.Get("/ws/control/:id", websocket.New(h.handleController))
}

func (h *Hub) handleController(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	conn := newConnection(id, c)
	go conn.writePump(h.writeWait)

	h.mu.Lock()
	if old, ok := h.controllers[id]; ok {
		old.close()
	}
	h.controllers[id] = conn
	count := len(h.controllers)
	h.mu.Unlock()
	h.logger.Info("controller connected", "id", id, "controllers", count)

	defer func() {
		h.mu.Lock()
		if h.controllers[id] == conn {
			delete(h.controllers, id)
		}
		count := len(h.controllers)
		h.mu.Unlock()

		// The connection is recycled once this handler returns.
		conn.close()
		<-conn.done
		h.logger.Info("controller disconnected", "id", id, "controllers", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("controller read ended", "id", id, "error", err)
			return
		}
		conn.touch()
		h.messagesReceived.Add(1)
		h.handleMessage(conn, data)
	}
}

// handleMessage processes one inbound message and replies on conn
func (h *Hub) handleMessage(conn *Connection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.logger.Warn("parse error", "id", conn.ID, "error", err)
		out, err := protocol.NewErrorMessage("", err)
		h.reply(conn, out, err)
		return
	}

	switch msg.Type {
	case protocol.TypeVoice:
		cmd, err := msg.GetVoiceCommand()
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		res, p, err := h.commander.Voice(cmd.DogID, cmd.Text)
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		out, err := protocol.NewResultMessage(protocol.ResultData{
			Command:  msg.Type,
			DogID:    cmd.DogID,
			Trick:    p.Trick.String(),
			Match:    string(res.Command),
			Word:     res.Word,
			Distance: res.Distance,
		})
		h.reply(conn, out, err)

	case protocol.TypeTrick:
		cmd, err := msg.GetTrickCommand()
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		p, err := h.commander.Trick(cmd.DogID, cmd.Trick)
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		out, err := protocol.NewResultMessage(protocol.ResultData{
			Command: msg.Type,
			DogID:   cmd.DogID,
			Trick:   p.Trick.String(),
		})
		h.reply(conn, out, err)

	case protocol.TypeSpawn:
		cmd, err := msg.GetSpawnCommand()
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		dog, err := h.commander.Spawn(cmd.Name)
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		out, err := protocol.NewResultMessage(protocol.ResultData{
			Command: msg.Type,
			DogID:   dog.ID,
		})
		h.reply(conn, out, err)

	case protocol.TypeRecord:
		cmd, err := msg.GetRecordCommand()
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		h.handleRecord(conn, cmd)

	case protocol.TypePointer:
		cmd, err := msg.GetPointerCommand()
		if err != nil {
			h.fail(conn, msg.Type, err)
			return
		}
		h.handlePointer(conn, cmd)

	case protocol.TypePing:
		var id string
		if ping, err := msg.GetPingData(); err == nil {
			id = ping.ID
		}
		out, err := protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli())
		h.reply(conn, out, err)

	default:
		h.logger.Debug("ignored message", "id", conn.ID, "type", msg.Type)
	}
}

// handleRecord presses or releases the talk button
func (h *Hub) handleRecord(conn *Connection, cmd *protocol.RecordCommand) {
	res := protocol.ResultData{Command: protocol.TypeRecord, DogID: cmd.DogID}
	switch cmd.Action {
	case protocol.RecordStart:
		if err := h.commander.StartRecording(cmd.DogID); err != nil {
			h.fail(conn, protocol.TypeRecord, err)
			return
		}
	case protocol.RecordStop:
		d, err := h.commander.StopRecording(cmd.DogID)
		if err != nil {
			h.fail(conn, protocol.TypeRecord, err)
			return
		}
		res.Duration = d.Seconds()
	default:
		h.fail(conn, protocol.TypeRecord, fmt.Errorf("control: unknown record action %q", cmd.Action))
		return
	}
	out, err := protocol.NewResultMessage(res)
	h.reply(conn, out, err)
}

// handlePointer tracks a press on the controller's screen. Releasing without
// dragging clicks the trick button under the pointer; a drag only answers.
func (h *Hub) handlePointer(conn *Connection, cmd *protocol.PointerCommand) {
	switch cmd.Action {
	case protocol.PointerDown:
		conn.clicks.Press(cmd.X, cmd.Y)
		return
	case protocol.PointerMove:
		conn.clicks.Move(cmd.X, cmd.Y)
		return
	case protocol.PointerUp:
	default:
		h.fail(conn, protocol.TypePointer, fmt.Errorf("control: unknown pointer action %q", cmd.Action))
		return
	}

	if !conn.clicks.Pressed() {
		h.fail(conn, protocol.TypePointer, errors.New("control: pointer up without down"))
		return
	}
	res := protocol.ResultData{Command: protocol.TypePointer, DogID: cmd.DogID}
	if !conn.clicks.Release(cmd.X, cmd.Y) {
		res.Drag = true
	} else if cmd.Trick != "" {
		p, err := h.commander.Trick(cmd.DogID, cmd.Trick)
		if err != nil {
			h.fail(conn, protocol.TypePointer, err)
			return
		}
		res.Trick = p.Trick.String()
	}
	out, err := protocol.NewResultMessage(res)
	h.reply(conn, out, err)
}

func (h *Hub) fail(conn *Connection, command protocol.MessageType, err error) {
	h.commandsFailed.Add(1)
	h.logger.Info("command failed", "id", conn.ID, "command", command, "error", err)
	out, err := protocol.NewErrorMessage(command, err)
	h.reply(conn, out, err)
}

func (h *Hub) reply(conn *Connection, msg *protocol.Message, err error) {
	if err != nil {
		h.logger.Error("encode reply", "id", conn.ID, "error", err)
		return
	}
	if err := h.deliver(conn, msg); err != nil {
		h.logger.Debug("reply failed", "id", conn.ID, "error", err)
	}
}

// deliver queues msg on conn and drops the controller if it has stopped
// reading.
func (h *Hub) deliver(conn *Connection, msg *protocol.Message) error {
	err := conn.Send(msg)
	switch {
	case err == nil:
		h.messagesSent.Add(1)
	case errors.Is(err, ErrSlowController):
		h.dropped.Add(1)
		h.logger.Warn("dropped slow controller", "id", conn.ID)
		conn.close()
	}
	return err
}

// Send sends a message to one controller
func (h *Hub) Send(id string, msg *protocol.Message) error {
	h.mu.RLock()
	conn, ok := h.controllers[id]
	h.mu.RUnlock()

	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "controller not connected")
	}

	return h.deliver(conn, msg)
}

// Broadcast queues a message for all connected controllers. It never blocks
// on the network; controllers that fall behind are dropped.
func (h *Hub) Broadcast(msg *protocol.Message) {
	for _, conn := range h.Controllers() {
		if err := h.deliver(conn, msg); err != nil {
			h.logger.Debug("broadcast failed", "id", conn.ID, "error", err)
		}
	}
}

// Controller returns a connection by ID, or nil
func (h *Hub) Controller(id string) *Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.controllers[id]
}

// Controllers returns all connected controllers
func (h *Hub) Controllers() []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Connection, 0, len(h.controllers))
	for _, c := range h.controllers {
		out = append(out, c)
	}
	return out
}

// Count returns the number of connected controllers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.controllers)
}

// Stats contains hub statistics
type Stats struct {
	Controllers      int    `json:"controllers"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	CommandsFailed   uint64 `json:"commands_failed"`
	Dropped          uint64 `json:"dropped"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		Controllers:      h.Count(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		CommandsFailed:   h.commandsFailed.Load(),
		Dropped:          h.dropped.Load(),
	}
}

// Info describes a connected controller
type Info struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// Infos returns info about all connected controllers
func (h *Hub) Infos() []Info {
	conns := h.Controllers()
	infos := make([]Info, 0, len(conns))
	for _, c := range conns {
		c.mu.Lock()
		infos = append(infos, Info{
			ID:        c.ID,
			Connected: c.Connected,
			LastSeen:  c.LastSeen,
		})
		c.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers API routes for controller management
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	controllers := api.Group("/controllers")

	controllers.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"controllers": h.Infos(),
			"count":       h.Count(),
		})
	})

	controllers.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}
