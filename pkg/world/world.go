// Package world runs the yard simulation: a generated navigation grid and any
// number of dogs, each with its own wander controller, animator and trick
// controller, advanced together on a fixed tick.
package world

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/interaction"
	"github.com/togedaeng/go-togedaeng/pkg/nav"
	"github.com/togedaeng/go-togedaeng/pkg/navmesh"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

// YardInfo describes the generated yard for clients that draw it.
type YardInfo struct {
	Width    float64        `json:"width"`
	Depth    float64        `json:"depth"`
	CellSize float64        `json:"cell_size"`
	Cols     int            `json:"cols"`
	Rows     int            `json:"rows"`
	Spawn    protocol.Point `json:"spawn"`
	Walkable int            `json:"walkable"`
	Cells    []string       `json:"cells"` // One string per row, '.' walkable and '#' blocked
}

// World owns the yard and its dogs. All methods are safe for concurrent use.
type World struct {
	mu     sync.Mutex
	cfg    Config
	grid   *navmesh.Grid
	clips  []animation.Clip
	rng    *nav.PCGRandom
	logger *slog.Logger

	dogs    map[string]*Dog
	order   []string
	spawned int

	tick    uint64
	elapsed float64

	history []protocol.EventData
	pending []protocol.EventData

	matcher *voice.Matcher
	metrics *voice.MetricsCollector

	onSnapshot func(protocol.WorldState)
	onEvent    func(protocol.EventData)

	running bool
	stop    chan struct{}
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithClips replaces the built-in trick clips.
func WithClips(clips []animation.Clip) Option {
	return func(w *World) { w.clips = clips }
}

// NewWorld generates the yard and returns an empty world.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := navmesh.GenerateYard(cfg.Yard, cfg.Seed)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:     cfg,
		grid:    grid,
		rng:     nav.NewRandom(uint64(cfg.Seed)),
		dogs:    make(map[string]*Dog),
		matcher: voice.NewMatcher(cfg.Voice),
		metrics: voice.NewMetricsCollector(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.With("component", "world")
	}
	if w.clips == nil {
		if w.clips, err = animation.BuiltinClips(); err != nil {
			return nil, err
		}
	}

	w.logger.Info("yard generated",
		"width", cfg.Yard.Width, "depth", cfg.Yard.Depth,
		"walkable", grid.WalkableCount(), "seed", cfg.Seed)
	return w, nil
}

// OnSnapshot registers a callback for periodic world snapshots.
func (w *World) OnSnapshot(fn func(protocol.WorldState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSnapshot = fn
}

// OnEvent registers a callback for dog events.
func (w *World) OnEvent(fn func(protocol.EventData)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onEvent = fn
}

// Config returns the world configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Spawn adds a dog near the yard's spawn point. An empty name gets a default.
func (w *World) Spawn(name string) (protocol.DogState, error) {
	w.mu.Lock()
	if len(w.dogs) >= w.cfg.MaxDogs {
		w.mu.Unlock()
		return protocol.DogState{}, ErrWorldFull
	}

	w.spawned++
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Togedaeng %d", w.spawned)
	}
	d := &Dog{ID: uuid.New().String(), Name: name}
	logger := w.logger.With("dog", d.Name)

	jitter := w.rng.InsideUnitSphere().Flat()
	d.agent = navmesh.NewAgent(w.grid, w.cfg.Yard.SpawnPoint().Add(jitter), w.cfg.DogSpeed)
	d.anim = animation.NewAnimator(w.clips)
	d.anim.OnChange(func(c animation.Change) {
		if ev, ok := clipEvent(d.ID, w.elapsed, d.agent.Position(), c); ok {
			w.record(ev)
		}
	})
	d.recorder = voice.NewRecorder(w.cfg.Voice)

	rng := nav.NewRandom(uint64(w.cfg.Seed) + uint64(w.spawned)*7919)
	ctrl, err := nav.NewController(w.cfg.Nav, d.agent, w.grid, d.anim, rng,
		nav.WithLogger(logger),
		nav.WithListener(func(ev nav.Event) {
			w.record(eventData(d.ID, w.elapsed, ev))
		}))
	if err != nil {
		w.mu.Unlock()
		return protocol.DogState{}, err
	}
	d.nav = ctrl
	d.tricks = interaction.NewController(d.anim, ctrl,
		interaction.WithLogger(logger),
		interaction.OnTrick(func(p interaction.Performed) {
			w.record(protocol.EventData{
				DogID:    d.ID,
				Type:     "trick",
				Time:     w.elapsed,
				Position: toPoint(d.agent.Position()),
				Wait:     p.Clip.Hold,
				Trick:    p.Trick.String(),
			})
		}))

	w.dogs[d.ID] = d
	w.order = append(w.order, d.ID)
	w.record(protocol.EventData{DogID: d.ID, Type: "spawned", Time: w.elapsed, Position: toPoint(d.agent.Position())})
	state := d.state()
	events := w.drain()
	w.mu.Unlock()

	logger.Info("dog spawned", "id", d.ID, "x", state.Position.X, "z", state.Position.Z)
	w.dispatch(events, nil)
	return state, nil
}

// Remove deletes a dog.
func (w *World) Remove(id string) error {
	w.mu.Lock()
	d, ok := w.dogs[id]
	if !ok {
		w.mu.Unlock()
		return ErrDogNotFound
	}
	delete(w.dogs, id)
	w.order = slices.DeleteFunc(w.order, func(s string) bool { return s == id })
	w.record(protocol.EventData{DogID: id, Type: "removed", Time: w.elapsed, Position: toPoint(d.agent.Position())})
	events := w.drain()
	w.mu.Unlock()

	w.logger.Info("dog removed", "dog", d.Name, "id", id)
	w.dispatch(events, nil)
	return nil
}

// Step advances every dog by dt seconds in spawn order.
func (w *World) Step(dt float64) {
	if dt < 0 {
		dt = 0
	}

	w.mu.Lock()
	w.tick++
	w.elapsed += dt
	for _, id := range w.order {
		w.dogs[id].step(dt)
	}

	var snap *protocol.WorldState
	if w.onSnapshot != nil && w.tick%uint64(w.cfg.SnapshotEvery) == 0 {
		s := w.snapshot()
		snap = &s
	}
	events := w.drain()
	w.mu.Unlock()

	w.dispatch(events, snap)
}

// Run steps the world at the configured tick rate until ctx is done or Stop
// is called. Each tick advances the simulation by exactly 1/TickRate seconds.
func (w *World) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.stop = make(chan struct{})
	stop := w.stop
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.stop = nil
		w.mu.Unlock()
	}()

	dt := 1 / w.cfg.TickRate
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	w.logger.Info("world running", "tick_rate", w.cfg.TickRate)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			w.logger.Info("world stopped", "tick", w.Tick())
			return nil
		case <-ticker.C:
			w.Step(dt)
		}
	}
}

// Stop ends a running Run loop. It is a no-op when the world is not running.
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}

// Running reports whether Run is active.
func (w *World) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Tick returns the number of steps taken.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Trick makes a dog perform the named trick.
func (w *World) Trick(id, name string) (interaction.Performed, error) {
	t, err := interaction.ParseTrick(name)
	if err != nil {
		return interaction.Performed{}, err
	}

	w.mu.Lock()
	d, ok := w.dogs[id]
	if !ok {
		w.mu.Unlock()
		return interaction.Performed{}, ErrDogNotFound
	}
	p, err := d.tricks.Play(t)
	events := w.drain()
	w.mu.Unlock()

	w.dispatch(events, nil)
	return p, err
}

// Voice matches a transcript to a command and makes the dog perform it.
// Unmatched transcripts return an error wrapping voice.ErrUnknownCommand.
func (w *World) Voice(id, text string) (voice.Result, interaction.Performed, error) {
	w.mu.Lock()
	d, ok := w.dogs[id]
	if !ok {
		w.mu.Unlock()
		return voice.Result{}, interaction.Performed{}, ErrDogNotFound
	}

	res, err := w.matcher.Parse(text)
	var p interaction.Performed
	if err == nil {
		p, err = d.tricks.Execute(res.Command)
	}
	d.recorder.Done()
	events := w.drain()
	w.mu.Unlock()

	w.metrics.Record(text, res, res.Command != "")
	w.dispatch(events, nil)
	return res, p, err
}

// StartRecording presses the talk button for a dog. It fails with
// voice.ErrBusy while the previous transcript has not been handled.
func (w *World) StartRecording(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.dogs[id]
	if !ok {
		return ErrDogNotFound
	}
	return d.recorder.Start()
}

// StopRecording releases the talk button and returns the recording length.
// A recording shorter than the configured minimum keeps running and returns
// voice.ErrRecordingTooShort. After a successful stop the dog is busy until
// its transcript arrives through Voice.
func (w *World) StopRecording(id string) (time.Duration, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.dogs[id]
	if !ok {
		return 0, ErrDogNotFound
	}
	return d.recorder.Stop()
}

// Pin freezes or releases a dog in place. A pinned dog keeps its path, so it
// reads as stuck to its controller.
func (w *World) Pin(id string, pinned bool) (protocol.DogState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.dogs[id]
	if !ok {
		return protocol.DogState{}, ErrDogNotFound
	}
	d.agent.Pin(pinned)
	return d.state(), nil
}

// Dog returns the state of one dog.
func (w *World) Dog(id string) (protocol.DogState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.dogs[id]
	if !ok {
		return protocol.DogState{}, ErrDogNotFound
	}
	return d.state(), nil
}

// Dogs returns every dog in spawn order.
func (w *World) Dogs() []protocol.DogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot().Dogs
}

// Snapshot returns the current world state.
func (w *World) Snapshot() protocol.WorldState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// Events returns up to limit of the most recent events, oldest first.
// limit <= 0 returns the whole history.
func (w *World) Events(limit int) []protocol.EventData {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.history
	if limit > 0 && limit < len(h) {
		h = h[len(h)-limit:]
	}
	return slices.Clone(h)
}

// VoiceMetrics returns transcript matching statistics.
func (w *World) VoiceMetrics() voice.Metrics {
	return w.metrics.Current()
}

// OnVoiceMetrics registers a callback fired after each transcript.
func (w *World) OnVoiceMetrics(fn func(voice.Metrics)) {
	w.metrics.OnUpdate(fn)
}

// Yard describes the generated grid.
func (w *World) Yard() YardInfo {
	cols, rows := w.grid.Cols(), w.grid.Rows()
	info := YardInfo{
		Width:    w.cfg.Yard.Width,
		Depth:    w.cfg.Yard.Depth,
		CellSize: w.grid.CellSize(),
		Cols:     cols,
		Rows:     rows,
		Spawn:    toPoint(w.cfg.Yard.SpawnPoint()),
		Walkable: w.grid.WalkableCount(),
		Cells:    make([]string, rows),
	}
	var b strings.Builder
	for row := 0; row < rows; row++ {
		b.Reset()
		for col := 0; col < cols; col++ {
			if w.grid.CellWalkable(col, row) {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		info.Cells[row] = b.String()
	}
	return info
}

func (w *World) snapshot() protocol.WorldState {
	s := protocol.WorldState{
		Tick: w.tick,
		Time: w.elapsed,
		Dogs: make([]protocol.DogState, 0, len(w.order)),
	}
	for _, id := range w.order {
		s.Dogs = append(s.Dogs, w.dogs[id].state())
	}
	return s
}

// record must be called with w.mu held.
func (w *World) record(ev protocol.EventData) {
	w.pending = append(w.pending, ev)
	if w.cfg.EventHistory == 0 {
		return
	}
	w.history = append(w.history, ev)
	if over := len(w.history) - w.cfg.EventHistory; over > 0 {
		w.history = slices.Delete(w.history, 0, over)
	}
}

// drain must be called with w.mu held.
func (w *World) drain() []protocol.EventData {
	events := w.pending
	w.pending = nil
	return events
}

func (w *World) dispatch(events []protocol.EventData, snap *protocol.WorldState) {
	w.mu.Lock()
	onEvent, onSnapshot := w.onEvent, w.onSnapshot
	w.mu.Unlock()

	if onEvent != nil {
		for _, ev := range events {
			onEvent(ev)
		}
	}
	if snap != nil && onSnapshot != nil {
		onSnapshot(*snap)
	}
}
