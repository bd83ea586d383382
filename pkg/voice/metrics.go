package voice

import (
	"maps"
	"sync"
	"time"
)

// Metrics summarizes recognition outcomes.
type Metrics struct {
	Transcripts int             `json:"transcripts"`
	Matched     int             `json:"matched"`
	Unmatched   int             `json:"unmatched"`
	ByCommand   map[Command]int `json:"by_command"`

	LastTranscript string    `json:"last_transcript,omitempty"`
	LastResult     *Result   `json:"last_result,omitempty"`
	LastAt         time.Time `json:"last_at,omitempty"`
}

// MatchRate returns the fraction of transcripts that produced a command.
func (m Metrics) MatchRate() float64 {
	if m.Transcripts == 0 {
		return 0
	}
	return float64(m.Matched) / float64(m.Transcripts)
}

// MetricsCollector records transcript outcomes. It is goroutine-safe.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics

	onUpdate func(Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		current: Metrics{ByCommand: make(map[Command]int)},
	}
}

// OnUpdate sets a callback that fires after every recorded transcript.
func (m *MetricsCollector) OnUpdate(fn func(Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Record stores the outcome of one transcript.
func (m *MetricsCollector) Record(transcript string, res Result, matched bool) {
	m.mu.Lock()
	m.current.Transcripts++
	m.current.LastTranscript = transcript
	m.current.LastAt = time.Now()
	if matched {
		m.current.Matched++
		m.current.ByCommand[res.Command]++
		r := res
		m.current.LastResult = &r
	} else {
		m.current.Unmatched++
		m.current.LastResult = nil
	}
	snap := m.snapshot()
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// Current returns a copy of the collected metrics.
func (m *MetricsCollector) Current() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Must be called with mutex held.
func (m *MetricsCollector) snapshot() Metrics {
	out := m.current
	out.ByCommand = maps.Clone(m.current.ByCommand)
	return out
}
