package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultSilenceTimeout is how long capture waits without hearing anything
// before stopping on its own.
const DefaultSilenceTimeout = 3 * time.Second

// ErrNotSupported is returned when no speech engine is available.
var ErrNotSupported = errors.New("speech recognition not supported")

// ErrBusy is returned when a capture is still winding down a previous run.
var ErrBusy = errors.New("capture is still stopping")

// CaptureState tracks a capture's lifecycle.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureListening
	CaptureStopping
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureListening:
		return "listening"
	case CaptureStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Capture accumulates dictated text from a speech engine. Final segments are
// appended to the transcript; interim text is kept separately so callers can
// show a live preview. A run stops on its own after a stretch of silence.
type Capture struct {
	engine         Engine
	silenceTimeout time.Duration

	mu         sync.Mutex
	state      CaptureState
	segments   []string
	interim    string
	err        error
	cancel     context.CancelFunc
	silence    *time.Timer
	generation int
	done       chan struct{}
}

// NewCapture creates a capture over engine. A nil engine yields an
// unsupported capture whose Start always fails. silenceTimeout <= 0 selects
// the default.
func NewCapture(engine Engine, silenceTimeout time.Duration) *Capture {
	if silenceTimeout <= 0 {
		silenceTimeout = DefaultSilenceTimeout
	}
	return &Capture{
		engine:         engine,
		silenceTimeout: silenceTimeout,
	}
}

// Supported reports whether an engine is available.
func (c *Capture) Supported() bool {
	return c.engine != nil
}

// Listening reports whether a run is active.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == CaptureListening
}

// State returns the capture's lifecycle state.
func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns the settled text, segments joined with spaces.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.segments, " ")
}

// Interim returns the live, not yet settled text.
func (c *Capture) Interim() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interim
}

// Err returns the error that ended the last run, if any.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Start begins a recognition run. Calling Start while already listening is a
// no-op. Accumulated text from earlier runs is kept so dictation can resume
// mid-answer.
func (c *Capture) Start(ctx context.Context) error {
	if c.engine == nil {
		return ErrNotSupported
	}

	runCtx, cancel := context.WithCancel(ctx)

	// Claim the run before starting the engine so a concurrent Start sees
	// the capture as listening and no-ops instead of starting a second run.
	c.mu.Lock()
	switch c.state {
	case CaptureListening:
		c.mu.Unlock()
		cancel()
		return nil
	case CaptureStopping:
		c.mu.Unlock()
		cancel()
		return ErrBusy
	}
	c.state = CaptureListening
	c.err = nil
	c.interim = ""
	c.cancel = cancel
	c.done = make(chan struct{})
	c.generation++
	gen := c.generation
	done := c.done
	c.mu.Unlock()

	results, err := c.engine.Start(runCtx)
	if err != nil {
		c.mu.Lock()
		c.state = CaptureIdle
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		close(done)
		return err
	}

	c.mu.Lock()
	stopped := c.state != CaptureListening
	if !stopped {
		c.armSilenceLocked(gen)
	}
	c.mu.Unlock()

	go c.consume(results, done)
	if stopped {
		// A Stop raced the engine start; wind the fresh stream down so the
		// consumer drains and the waiting Stop unblocks.
		c.engine.Stop()
	}
	return nil
}

// Stop ends the run and waits for the engine to drain. Stopping an idle
// capture is a no-op.
func (c *Capture) Stop() {
	c.mu.Lock()
	if c.state != CaptureListening {
		c.mu.Unlock()
		return
	}
	c.state = CaptureStopping
	c.disarmSilenceLocked()
	done := c.done
	c.mu.Unlock()

	c.engine.Stop()
	<-done
}

// Reset discards all accumulated text and any recorded error. An active run
// is stopped first.
func (c *Capture) Reset() {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.segments = nil
	c.interim = ""
	c.err = nil
}

func (c *Capture) consume(results <-chan Result, done chan struct{}) {
	for r := range results {
		c.mu.Lock()
		if r.Err != nil {
			c.err = r.Err
			c.mu.Unlock()
			continue
		}
		if r.Final {
			if text := strings.TrimSpace(r.Text); text != "" {
				c.segments = append(c.segments, text)
			}
			c.interim = ""
		} else {
			c.interim = r.Text
		}
		c.armSilenceLocked(c.generation)
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.disarmSilenceLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = CaptureIdle
	c.mu.Unlock()
	close(done)
}

// armSilenceLocked restarts the silence countdown. The generation check
// keeps a timer from a previous run from stopping a newer one.
func (c *Capture) armSilenceLocked(generation int) {
	c.disarmSilenceLocked()
	c.silence = time.AfterFunc(c.silenceTimeout, func() {
		c.mu.Lock()
		stale := c.generation != generation || c.state != CaptureListening
		c.mu.Unlock()
		if stale {
			return
		}
		c.Stop()
	})
}

func (c *Capture) disarmSilenceLocked() {
	if c.silence != nil {
		c.silence.Stop()
		c.silence = nil
	}
}
