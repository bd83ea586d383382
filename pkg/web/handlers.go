package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/hub"
	"github.com/togedaeng/go-togedaeng/pkg/interaction"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
	"github.com/togedaeng/go-togedaeng/pkg/world"
)

// SpawnRequest is the request body for adding a dog
type SpawnRequest struct {
	Name string `json:"name"`
}

// VoiceRequest is the request body for a voice transcript
type VoiceRequest struct {
	Text string `json:"text"`
}

// PinRequest is the request body for pinning a dog
type PinRequest struct {
	Pinned bool `json:"pinned"`
}

// TrickResponse describes a trick that started
type TrickResponse struct {
	DogID string         `json:"dog_id"`
	Trick string         `json:"trick"`
	Clip  animation.Clip `json:"clip"`
}

// VoiceResponse is the outcome of a voice transcript
type VoiceResponse struct {
	Result voice.Result  `json:"result"`
	Trick  TrickResponse `json:"trick"`
}

// errorStatus maps world errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, world.ErrDogNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, world.ErrWorldFull), errors.Is(err, voice.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, interaction.ErrUnknownTrick), errors.Is(err, voice.ErrUnknownCommand),
		errors.Is(err, voice.ErrRecordingTooShort), errors.Is(err, voice.ErrNotRecording):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func trickResponse(dogID string, p interaction.Performed) TrickResponse {
	return TrickResponse{DogID: dogID, Trick: p.Trick.String(), Clip: p.Clip}
}

// handleHealth reports liveness and a short summary
func (s *Server) handleHealth(c *fiber.Ctx) error {
	snap := s.world.Snapshot()
	return c.JSON(fiber.Map{
		"status":  "ok",
		"running": s.world.Running(),
		"tick":    snap.Tick,
		"time":    snap.Time,
		"dogs":    len(snap.Dogs),
	})
}

// handleMetrics exposes counters in the Prometheus text format
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	snap := s.world.Snapshot()
	var stuck, escapes int
	for _, d := range snap.Dogs {
		if d.Stuck {
			stuck++
		}
		escapes += d.Escapes
	}
	vm := s.world.VoiceMetrics()
	ctl := s.control.GetStats()

	var b strings.Builder
	metric := func(name, kind, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, v)
	}
	metric("togedaeng_ticks", "counter", "Simulation ticks", snap.Tick)
	metric("togedaeng_dogs", "gauge", "Dogs in the yard", len(snap.Dogs))
	metric("togedaeng_dogs_stuck", "gauge", "Dogs currently stuck", stuck)
	metric("togedaeng_escapes", "counter", "Escape sequences started", escapes)
	metric("togedaeng_voice_transcripts", "counter", "Voice transcripts received", vm.Transcripts)
	metric("togedaeng_voice_matched", "counter", "Voice transcripts matched to a command", vm.Matched)
	metric("togedaeng_ws_clients", "gauge", "Dashboard websocket clients",
		s.stateHub.ClientCount()+s.eventHub.ClientCount())
	metric("togedaeng_controllers", "gauge", "Connected remote controllers", ctl.Controllers)

	return c.SendString(b.String())
}

// handleYard returns the yard layout
func (s *Server) handleYard(c *fiber.Ctx) error {
	return c.JSON(s.world.Yard())
}

// handleTricks lists the trick names accepted by the trick endpoint
func (s *Server) handleTricks(c *fiber.Ctx) error {
	names := make([]string, len(interaction.Tricks))
	for i, t := range interaction.Tricks {
		names[i] = t.String()
	}
	return c.JSON(fiber.Map{"tricks": names})
}

// handleEvents returns recent events, ?limit=N
func (s *Server) handleEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, errors.New("limit must be non-negative"))
	}
	return c.JSON(fiber.Map{
		"events": s.world.Events(limit),
	})
}

// handleVoiceMetrics returns transcript matching statistics
func (s *Server) handleVoiceMetrics(c *fiber.Ctx) error {
	m := s.world.VoiceMetrics()
	return c.JSON(fiber.Map{
		"metrics":    m,
		"match_rate": m.MatchRate(),
	})
}

// handleHubs returns websocket hub statistics
func (s *Server) handleHubs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"state":   s.stateHub.GetStats(),
		"events":  s.eventHub.GetStats(),
		"control": s.control.GetStats(),
	})
}

// handleListDogs returns every dog
func (s *Server) handleListDogs(c *fiber.Ctx) error {
	dogs := s.world.Dogs()
	return c.JSON(fiber.Map{
		"dogs":  dogs,
		"count": len(dogs),
	})
}

// handleSpawn adds a dog
func (s *Server) handleSpawn(c *fiber.Ctx) error {
	var req SpawnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, err)
		}
	}

	dog, err := s.world.Spawn(req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dog)
}

// handleGetDog returns one dog
func (s *Server) handleGetDog(c *fiber.Ctx) error {
	dog, err := s.world.Dog(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dog)
}

// handleRemoveDog deletes a dog
func (s *Server) handleRemoveDog(c *fiber.Ctx) error {
	if err := s.world.Remove(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleRecordStart presses the talk button
func (s *Server) handleRecordStart(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.world.StartRecording(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"dog_id":    id,
		"recording": true,
	})
}

// handleRecordStop releases the talk button. Too short a press keeps
// recording and answers 400.
func (s *Server) handleRecordStop(c *fiber.Ctx) error {
	id := c.Params("id")
	d, err := s.world.StopRecording(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"dog_id":   id,
		"duration": d.Seconds(),
	})
}

// handleVoice matches a transcript and performs the command
func (s *Server) handleVoice(c *fiber.Ctx) error {
	id := c.Params("id")

	var req VoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Text == "" {
		return badRequest(c, errors.New("text is required"))
	}

	res, p, err := s.world.Voice(id, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(VoiceResponse{
		Result: res,
		Trick:  trickResponse(id, p),
	})
}

// handleTrick performs a trick by name
func (s *Server) handleTrick(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := s.world.Trick(id, c.Params("trick"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trickResponse(id, p))
}

// handlePin freezes or releases a dog
func (s *Server) handlePin(c *fiber.Ctx) error {
	var req PinRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	dog, err := s.world.Pin(c.Params("id"), req.Pinned)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dog)
}

// handleStateWS streams world snapshots, starting with the current one
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)

	if msg, err := protocol.NewStateMessage(s.world.Snapshot()); err == nil {
		if m, err := hub.FromProtocol(msg); err == nil {
			client.Send(m)
		}
	}

	client.Run()
}

// handleEventsWS streams dog events, starting with recent history
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)

	for _, ev := range s.world.Events(recentEvents) {
		msg, err := protocol.NewEventMessage(ev)
		if err != nil {
			continue
		}
		if m, err := hub.FromProtocol(msg); err == nil {
			client.Send(m)
		}
	}

	client.Run()
}
