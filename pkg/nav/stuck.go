package nav

// StuckSignal is the outcome of one stuck check.
type StuckSignal int

const (
	// SignalNone means nothing changed.
	SignalNone StuckSignal = iota

	// SignalStuck is the rising edge of a stuck episode.
	SignalStuck

	// SignalPersisted means the agent stayed stuck for another full threshold
	// after an escape; the episode starts over.
	SignalPersisted

	// SignalRecovered means the stuck flag cleared.
	SignalRecovered
)

// StuckDetector watches agent speed and displacement for sustained low motion.
type StuckDetector struct {
	cfg   Config
	agent AgentState

	timer      float64
	stuck      bool
	lastPos    Vec3
	checkTimer float64
}

// NewStuckDetector creates a detector anchored at the agent's current position.
func NewStuckDetector(cfg Config, agent AgentState) *StuckDetector {
	return &StuckDetector{
		cfg:     cfg,
		agent:   agent,
		lastPos: agent.Position(),
	}
}

// Check runs one tick of detection. Detection only accumulates while the
// agent has a path and the wanderer is not waiting.
func (d *StuckDetector) Check(dt float64, waiting bool) StuckSignal {
	signal := SignalNone
	pos := d.agent.Position()
	hasPath := d.agent.HasPath()

	if hasPath && !waiting {
		speed := d.agent.Velocity().Len()
		moved := pos.Dist(d.lastPos)

		if speed < d.cfg.MinVelocityThreshold && moved < d.cfg.MinVelocityThreshold {
			d.timer += dt
			if d.timer >= d.cfg.StuckThreshold {
				if d.stuck {
					signal = SignalPersisted
				} else {
					signal = SignalStuck
				}
				d.stuck = true
				d.timer = 0
			}
		} else {
			d.timer = 0
			if d.stuck {
				d.stuck = false
				signal = SignalRecovered
			}
		}
	} else {
		d.timer = 0
		// An escape path that ran out (or was dropped) ends the episode.
		if d.stuck && !hasPath {
			d.stuck = false
			signal = SignalRecovered
		}
	}

	d.checkTimer += dt
	if d.checkTimer >= d.cfg.SampleInterval {
		d.lastPos = pos
		d.checkTimer = 0
	}

	return signal
}

// Suppress zeroes the accumulated timer without touching the stuck flag.
func (d *StuckDetector) Suppress() {
	d.timer = 0
}

// Clear ends any stuck episode.
func (d *StuckDetector) Clear() {
	d.timer = 0
	d.stuck = false
	d.lastPos = d.agent.Position()
	d.checkTimer = 0
}

// Stuck reports whether a stuck episode is active.
func (d *StuckDetector) Stuck() bool { return d.stuck }

// Timer returns the accumulated low-motion seconds.
func (d *StuckDetector) Timer() float64 { return d.timer }
