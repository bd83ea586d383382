package voice

import (
	"fmt"
	"sync"
	"time"
)

// ValidateRecording rejects recordings shorter than MinRecordDuration.
func (c Config) ValidateRecording(d time.Duration) error {
	if d < c.MinRecordDuration {
		return fmt.Errorf("%w: %v < %v", ErrRecordingTooShort, d, c.MinRecordDuration)
	}
	return nil
}

// Recorder tracks a push-to-talk session: Start, Stop, then Done once the
// transcript has been handled. Safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	recording  bool
	processing bool
	startedAt  time.Time
}

// NewRecorder creates an idle recorder.
func NewRecorder(cfg Config) *Recorder {
	return &Recorder{cfg: cfg, now: time.Now}
}

// Start begins recording. Starting while already recording is a no-op.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.processing {
		return ErrBusy
	}
	if !r.recording {
		r.recording = true
		r.startedAt = r.now()
	}
	return nil
}

// Stop ends recording and returns its length. A recording that is too short
// keeps going so the user can finish speaking.
func (r *Recorder) Stop() (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return 0, ErrNotRecording
	}
	d := r.now().Sub(r.startedAt)
	if err := r.cfg.ValidateRecording(d); err != nil {
		return d, err
	}
	r.recording = false
	r.processing = true
	return d, nil
}

// Done marks the transcript as handled so a new recording can start.
func (r *Recorder) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processing = false
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Processing reports whether a stopped recording awaits Done.
func (r *Recorder) Processing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processing
}
