// Package web serves the yard dashboard: a REST API over the world, live
// state and event WebSocket feeds, and the remote-control endpoint.
package web

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/control"
	"github.com/togedaeng/go-togedaeng/pkg/hub"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/world"
)

// recentEvents is how many past events a new /ws/events client receives.
const recentEvents = 50

// Server is the dashboard server
type Server struct {
	app    *fiber.App
	port   string
	static string
	debug  bool
	logger *slog.Logger

	world *world.World

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	eventHub *hub.Hub
	control  *control.Hub
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStatic serves files from dir at /
func WithStatic(dir string) Option {
	return func(s *Server) { s.static = dir }
}

// WithDebug logs every request
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// NewServer creates a dashboard server for w and subscribes to its snapshots
// and events.
func NewServer(w *world.World, port string, opts ...Option) *Server {
	s := &Server{
		port:  port,
		world: w,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.With("component", "web")
	}
	s.stateHub = hub.New("state", hub.WithLogger(s.logger.With("hub", "state")))
	s.eventHub = hub.New("events", hub.WithLogger(s.logger.With("hub", "events")))
	s.control = control.NewHub(w, s.logger.With("component", "control"))

	app := fiber.New(fiber.Config{
		AppName:               "Togedaeng Yard",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if s.debug {
		app.Use(logger.New())
	}

	if s.static != "" {
		app.Static("/", s.static)
	}

	app.Get("/metrics", s.handleMetrics)

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/yard", s.handleYard)
	api.Get("/tricks", s.handleTricks)
	api.Get("/events", s.handleEvents)
	api.Get("/voice/metrics", s.handleVoiceMetrics)
	api.Get("/hubs", s.handleHubs)

	dogs := api.Group("/dogs")
	dogs.Get("/", s.handleListDogs)
	dogs.Post("/", s.handleSpawn)
	dogs.Get("/:id", s.handleGetDog)
	dogs.Delete("/:id", s.handleRemoveDog)
	dogs.Post("/:id/voice", s.handleVoice)
	dogs.Post("/:id/voice/start", s.handleRecordStart)
	dogs.Post("/:id/voice/stop", s.handleRecordStop)
	dogs.Post("/:id/tricks/:trick", s.handleTrick)
	dogs.Post("/:id/pin", s.handlePin)

	s.control.RegisterAPIRoutes(api)
	s.control.RegisterRoutes(app)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app

	w.OnSnapshot(s.PublishState)
	w.OnEvent(s.PublishEvent)
	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and serves until Shutdown is called. The hubs stop
// when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.port)

	go s.stateHub.Run(ctx)
	go s.eventHub.Run(ctx)

	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishState broadcasts a world snapshot to /ws/state clients
func (s *Server) PublishState(state protocol.WorldState) {
	msg, err := protocol.NewStateMessage(state)
	if err != nil {
		s.logger.Error("encode state", "error", err)
		return
	}
	if err := s.stateHub.BroadcastProtocol(msg); err != nil {
		s.logger.Error("broadcast state", "error", err)
	}
}

// PublishEvent broadcasts a dog event to /ws/events clients and controllers
func (s *Server) PublishEvent(ev protocol.EventData) {
	msg, err := protocol.NewEventMessage(ev)
	if err != nil {
		s.logger.Error("encode event", "error", err)
		return
	}
	if err := s.eventHub.BroadcastProtocol(msg); err != nil {
		s.logger.Error("broadcast event", "error", err)
	}
	s.control.Broadcast(msg)
}

// StateHub returns the snapshot hub
func (s *Server) StateHub() *hub.Hub {
	return s.stateHub
}

// EventHub returns the event hub
func (s *Server) EventHub() *hub.Hub {
	return s.eventHub
}

// Control returns the remote-control hub
func (s *Server) Control() *control.Hub {
	return s.control
}
