package meeting

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"meeting_cost_tui/internal/input"
	"meeting_cost_tui/internal/storage"
)

// Engine defaults.
const (
	DefaultTickInterval    = time.Second
	DefaultSessionExpiry   = 24 * time.Hour
	DefaultMaxParticipants = 1000
)

// Options configures an Engine. Zero fields fall back to defaults.
type Options struct {
	Clock           Clock
	TickInterval    time.Duration
	SessionExpiry   time.Duration
	MaxParticipants int
	Limits          Limits

	// OnMeetingStart is invoked when a meeting starts from Idle. It is a
	// fire-and-forget notification hook; the engine never waits on it.
	OnMeetingStart func()
}

// Engine owns the meeting session and configuration. All mutation goes
// through its methods; every mutation persists the new state and notifies
// subscribers. The tick goroutine is the only other writer, so all state is
// guarded by a mutex.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	sess      Session
	kv        *storage.Safe
	clock     Clock
	opts      Options
	log       zerolog.Logger
	stopChan  chan struct{}
	observers []func()
}

// NewEngine builds an engine, loads persisted state, repairs it, and resumes
// ticking if a session was mid-flight. It never fails: malformed or missing
// state degrades to defaults.
func NewEngine(kv *storage.Safe, log zerolog.Logger, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.SessionExpiry <= 0 {
		opts.SessionExpiry = DefaultSessionExpiry
	}
	if opts.MaxParticipants <= 0 {
		opts.MaxParticipants = DefaultMaxParticipants
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}

	e := &Engine{
		cfg:   DefaultConfig(),
		kv:    kv,
		clock: opts.Clock,
		opts:  opts,
		log:   log,
	}

	if cfg, ok := loadConfig(kv); ok {
		e.cfg = cfg.clamped(opts.Limits)
	}

	if sess, ok := loadSession(kv, e.clock.Now(), opts.SessionExpiry); ok {
		e.sess = sess
		if sess.Running {
			e.log.Debug().Dur("duration", sess.Duration).Msg("resuming running session")
			e.mu.Lock()
			e.startTickingLocked()
			e.mu.Unlock()
		}
	}

	return e
}

// Close cancels the tick goroutine. Session state is left as-is so a running
// meeting resumes on the next start.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTickingLocked()
	e.mu.Unlock()
}

// Subscribe registers fn to be called after every state change.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

// Session returns a copy of the current session.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Calculations derives the current metrics.
func (e *Engine) Calculations() Calculations {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Calculate(e.cfg, e.sess)
}

// MaxParticipants returns the configured participant ceiling.
func (e *Engine) MaxParticipants() int {
	return e.opts.MaxParticipants
}

// Limits returns the configuration bounds.
func (e *Engine) Limits() Limits {
	return e.opts.Limits
}

// Start begins a fresh meeting, or resumes a paused one. Resuming shifts the
// start time to now minus the frozen duration so that recomputing
// now - startTime reproduces the frozen duration and keeps counting without
// drift from the wall-clock gap spent paused.
func (e *Engine) Start() {
	e.mu.Lock()
	now := e.clock.Now()
	fromIdle := e.sess.StartTime == nil

	if fromIdle {
		t := now
		e.sess.StartTime = &t
		e.sess.Duration = 0
	} else if !e.sess.Running {
		t := now.Add(-e.sess.Duration)
		e.sess.StartTime = &t
	}
	e.sess.Running = true
	e.startTickingLocked()
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()

	if fromIdle && e.opts.OnMeetingStart != nil {
		e.opts.OnMeetingStart()
	}
}

// Pause freezes the duration. A final recompute from the clock avoids losing
// up to one tick interval of elapsed time. No-op when not running.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.sess.Running {
		e.mu.Unlock()
		return
	}
	e.sess.Running = false
	if e.sess.StartTime != nil {
		e.sess.Duration = e.clock.Now().Sub(*e.sess.StartTime)
	}
	e.stopTickingLocked()
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()
}

// Stop resets the timer to Idle. Participant counts are kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.sess.Running = false
	e.sess.StartTime = nil
	e.sess.Duration = 0
	e.stopTickingLocked()
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()
}

// SetManualStartTime moves the start time to the given time of day ("HH:MM"
// or "HHMM") on today's date. Unparseable input and times not strictly in
// the past leave the state unchanged. While running, the duration is
// recomputed immediately so the display reflects the edit before the next
// tick.
func (e *Engine) SetManualStartTime(text string) {
	tod, ok := input.ParseTimeOfDay(text)
	if !ok {
		return
	}

	e.mu.Lock()
	now := e.clock.Now()
	if !tod.Before(now) {
		e.mu.Unlock()
		return
	}

	t := tod.At(now)
	e.sess.StartTime = &t
	if e.sess.Running {
		e.sess.Duration = now.Sub(t)
	}
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()
}

// SetGroup1Participants sets the first group's headcount, clamped into
// [0, MaxParticipants].
func (e *Engine) SetGroup1Participants(n int) {
	e.mu.Lock()
	e.sess.Group1Participants = e.clampParticipants(n)
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()
}

// SetGroup2Participants sets the second group's headcount, clamped into
// [0, MaxParticipants].
func (e *Engine) SetGroup2Participants(n int) {
	e.mu.Lock()
	e.sess.Group2Participants = e.clampParticipants(n)
	snap := e.sess
	e.mu.Unlock()

	e.persistSession(snap)
	e.notify()
}

// UpdateConfig merges the non-nil fields of patch into the configuration and
// persists the result.
func (e *Engine) UpdateConfig(patch ConfigPatch) {
	e.mu.Lock()
	if patch.Group1HourlyRate != nil {
		e.cfg.Group1HourlyRate = *patch.Group1HourlyRate
	}
	if patch.Group2HourlyRate != nil {
		e.cfg.Group2HourlyRate = *patch.Group2HourlyRate
	}
	if patch.WorkingHoursPerDay != nil {
		e.cfg.WorkingHoursPerDay = *patch.WorkingHoursPerDay
	}
	snap := e.cfg
	e.mu.Unlock()

	saveConfig(e.kv, snap)
	e.notify()
}

func (e *Engine) clampParticipants(n int) int {
	if n < 0 {
		return 0
	}
	if n > e.opts.MaxParticipants {
		return e.opts.MaxParticipants
	}
	return n
}

// startTickingLocked installs the recurring tick, replacing any prior one so
// at most a single tick goroutine is ever active. Caller holds e.mu.
func (e *Engine) startTickingLocked() {
	e.stopTickingLocked()
	stop := make(chan struct{})
	e.stopChan = stop
	interval := e.opts.TickInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.mu.Lock()
				if !e.sess.Running || e.sess.StartTime == nil {
					e.mu.Unlock()
					return
				}
				e.sess.Duration = e.clock.Now().Sub(*e.sess.StartTime)
				e.mu.Unlock()
				e.notify()
			}
		}
	}()
}

// stopTickingLocked cancels the active tick, if any. Caller holds e.mu.
func (e *Engine) stopTickingLocked() {
	if e.stopChan != nil {
		close(e.stopChan)
		e.stopChan = nil
	}
}

func (e *Engine) persistSession(s Session) {
	saveSession(e.kv, s)
}

func (e *Engine) notify() {
	e.mu.Lock()
	observers := make([]func(), len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
