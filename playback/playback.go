// Package playback owns the "try to display this video" protocol: one live
// session at a time, sequential embed-candidate attempts, a stall timer per
// attempt, and last-writer-wins cancellation when a newer load arrives.
//
// The engine never touches a rendering tree. The UI shell supplies an
// AttachFunc that points its viewer at each attempt's source URL, and calls
// ReportLoaded or ReportError with the attempt token when the viewer emits
// its terminal signal. State transitions are observable through ListenFunc.
package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
	"github.com/sihabxd/OnlineHub/guard"
)

// State tags one playback session.
type State string

const (
	StateAdmitting  State = "admitting"
	StateAttempting State = "attempting"
	StateLoaded     State = "loaded"
	StateFailed     State = "failed"
	StateSuperseded State = "superseded"
)

// Terminal reports whether the session is finished.
func (s State) Terminal() bool {
	switch s {
	case StateLoaded, StateFailed, StateSuperseded:
		return true
	}
	return false
}

// DefaultStallTimeout is how long an attempt may stay silent before it is
// treated exactly like an explicit error.
const DefaultStallTimeout = 10 * time.Second

// Attempt asks the viewer to load one candidate. Token binds the viewer's
// terminal signal back to this attempt so stale signals are ignored.
type Attempt struct {
	Token  uint64
	Entry  catalog.Entry
	Src    string
	Index  int
	Native bool // direct media: native element, no embed frame
}

// Event is one observed state transition.
type Event struct {
	Entry catalog.Entry
	State State
	Index int
}

type (
	AttachFunc func(Attempt)
	ListenFunc func(Event)
)

// Prober is the availability pre-check run while a session is Admitting.
type Prober interface {
	Check(ctx context.Context, v classify.Video) guard.Availability
}

// Config holds engine settings.
type Config struct {
	StallTimeout time.Duration // default DefaultStallTimeout
	Prober       Prober        // nil skips the admitting probe
}

// Engine manages at most one live playback session.
type Engine struct {
	mu      sync.Mutex
	stall   time.Duration
	prober  Prober
	attach  AttachFunc
	listen  ListenFunc
	tokens  uint64
	session *session
}

type session struct {
	entry      catalog.Entry
	candidates []string
	native     bool
	index      int
	state      State
	token      uint64
	timer      *time.Timer
	startedAt  time.Time
}

// New creates an engine. Attach may not be nil; listen may be.
func New(cfg Config, attach AttachFunc, listen ListenFunc) *Engine {
	stall := cfg.StallTimeout
	if stall <= 0 {
		stall = DefaultStallTimeout
	}
	if listen == nil {
		listen = func(Event) {}
	}
	return &Engine{
		stall:  stall,
		prober: cfg.Prober,
		attach: attach,
		listen: listen,
	}
}

// Load starts a playback session for the entry. Any prior non-terminal
// session is superseded: its timers are cancelled and no Loaded or Failed
// signal will ever be emitted for it. Load returns immediately; progress is
// observed through the listener.
func (e *Engine) Load(entry catalog.Entry) {
	e.mu.Lock()
	var emits []func()

	if old := e.session; old != nil && !old.state.Terminal() {
		old.stopTimer()
		old.state = StateSuperseded
		emits = append(emits, e.eventLocked(old))
	}

	candidates := entry.Video.EmbedCandidates
	if len(candidates) == 0 {
		candidates = []string{entry.Video.OriginalURL}
	}

	s := &session{
		entry:      entry,
		candidates: candidates,
		native:     entry.Video.Platform == classify.PlatformDirect,
		state:      StateAdmitting,
		startedAt:  time.Now(),
	}
	e.session = s
	emits = append(emits, e.eventLocked(s))

	// Direct media bypasses the embed sequence and its pre-checks: one
	// candidate, native element, Loaded or Failed only.
	if s.native || e.prober == nil {
		emits = append(emits, e.startAttemptLocked(s))
	} else {
		go e.probe(s)
	}
	e.mu.Unlock()

	for _, fn := range emits {
		fn()
	}
}

// probe runs the availability check for an Admitting session. Any result
// other than Available is only a warning; the session attempts regardless.
func (e *Engine) probe(s *session) {
	result := e.prober.Check(context.Background(), s.entry.Video)
	if result != guard.Available {
		slog.Warn("availability probe did not confirm video",
			"platform", s.entry.Video.Platform,
			"record", s.entry.RecordID,
			"result", result.String())
	}

	e.mu.Lock()
	if e.session != s || s.state != StateAdmitting {
		e.mu.Unlock()
		return
	}
	emit := e.startAttemptLocked(s)
	e.mu.Unlock()
	emit()
}

// startAttemptLocked moves the session to Attempting at its current index,
// arms the stall timer, and returns the deferred attach+event emission.
func (e *Engine) startAttemptLocked(s *session) func() {
	e.tokens++
	token := e.tokens
	s.token = token
	s.state = StateAttempting
	s.timer = time.AfterFunc(e.stall, func() { e.stalled(token) })

	attempt := Attempt{
		Token:  token,
		Entry:  s.entry,
		Src:    s.candidates[s.index],
		Index:  s.index,
		Native: s.native,
	}
	event := e.eventLocked(s)
	return func() {
		e.attach(attempt)
		event()
	}
}

func (e *Engine) eventLocked(s *session) func() {
	ev := Event{Entry: s.entry, State: s.state, Index: s.index}
	listen := e.listen
	return func() { listen(ev) }
}

func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// ReportLoaded is the viewer's success signal for the given attempt.
func (e *Engine) ReportLoaded(token uint64) {
	e.mu.Lock()
	s := e.session
	if s == nil || s.token != token || s.state != StateAttempting {
		e.mu.Unlock()
		return
	}
	s.stopTimer()
	s.state = StateLoaded
	emit := e.eventLocked(s)
	e.mu.Unlock()
	emit()
}

// ReportError is the viewer's failure signal for the given attempt. The
// session advances to the next candidate, or fails when none remain.
func (e *Engine) ReportError(token uint64) {
	e.failAttempt(token)
}

// stalled fires when an attempt produced neither signal within the stall
// timeout; it behaves exactly like an explicit error.
func (e *Engine) stalled(token uint64) {
	e.failAttempt(token)
}

func (e *Engine) failAttempt(token uint64) {
	e.mu.Lock()
	s := e.session
	if s == nil || s.token != token || s.state != StateAttempting {
		e.mu.Unlock()
		return
	}
	s.stopTimer()

	var emit func()
	if s.index+1 < len(s.candidates) {
		s.index++
		emit = e.startAttemptLocked(s)
	} else {
		s.state = StateFailed
		emit = e.eventLocked(s)
	}
	e.mu.Unlock()
	emit()
}

// State returns the current session state, or "" when no session exists.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ""
	}
	return e.session.state
}

// CurrentIndex returns the candidate index of the current session.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0
	}
	return e.session.index
}

// Stop supersedes any live session, cancelling its timers. Used on
// teardown.
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.session
	if s == nil || s.state.Terminal() {
		e.mu.Unlock()
		return
	}
	s.stopTimer()
	s.state = StateSuperseded
	emit := e.eventLocked(s)
	e.mu.Unlock()
	emit()
}
