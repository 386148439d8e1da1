package engine

import (
	"fmt"
	"log/slog"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Listener observes every snapshot the engine produces. Each call
// receives its own copy.
type Listener func(state.Snapshot)

// Engine owns one session: it feeds commands through a Reducer, caches
// the resulting snapshot and notifies subscribers.
//
// Engine is single-threaded: Dispatch, State and Subscribe must not be
// called concurrently. A Dispatch issued from inside a listener is
// queued and runs once the current command has notified every listener.
type Engine struct {
	cfg     config.Config
	reducer *Reducer
	logger  *slog.Logger

	state  state.Internal
	cached *state.Snapshot
	seq    int64

	listeners []subscription
	nextSubID int

	queue       *commandQueue
	dispatching bool
	lastDiags   []*CommandError
}

type subscription struct {
	id int
	fn Listener
}

type options struct {
	cfg    config.Config
	rnd    random.Provider
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithConfig sets the knobs and balance constants.
//
// Default: config.Default()
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithRandom sets the random provider.
//
// Default: random.Default{} (not reproducible)
func WithRandom(p random.Provider) Option {
	return func(o *options) { o.rnd = p }
}

// WithSeed is WithRandom(random.NewSeeded(seed)).
func WithSeed(seed int64) Option {
	return WithRandom(random.NewSeeded(seed))
}

// WithLogger sets the logger used for diagnostics.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates an Engine over cat in the splash phase.
func New(cat catalog.Catalog, opts ...Option) *Engine {
	o := options{cfg: config.Default(), rnd: random.Default{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Engine{
		cfg:     o.cfg,
		reducer: NewReducer(o.cfg, cat, o.rnd),
		logger:  o.logger,
		state:   state.Fresh(),
		queue:   newCommandQueue(),
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Seq returns the number of commands reduced so far.
func (e *Engine) Seq() int64 { return e.seq }

// Dispatch reduces cmd, then notifies listeners. It returns the effects
// of cmd; a call made from inside a listener returns nil and its
// command runs after the current one.
//
// ERROR HANDLING: rejected commands are logged and exposed through
// LastDiagnostics; they never fail the caller.
func (e *Engine) Dispatch(cmd Command) []Effect {
	if e.dispatching {
		e.queue.Enqueue(cmd)
		e.logger.Debug("command queued", "kind", cmd.Kind(), "depth", e.queue.Len())
		return nil
	}
	e.dispatching = true
	defer func() { e.dispatching = false }()

	effects := e.apply(cmd)
	for {
		next, ok := e.queue.TryDequeue()
		if !ok {
			break
		}
		e.apply(next)
	}
	return effects
}

func (e *Engine) apply(cmd Command) []Effect {
	e.seq++
	next, effects := e.reducer.Reduce(e.state, cmd)
	e.state = next
	e.cached = nil

	e.lastDiags = Diagnostics(effects)
	for _, d := range e.lastDiags {
		e.logger.Warn("command rejected", append(d.logArgs(), "seq", e.seq, "phase", string(e.state.Phase))...)
	}
	for _, eff := range effects {
		e.logEffect(eff)
	}

	e.notify()
	return effects
}

func (e *Engine) logEffect(eff Effect) {
	switch eff := eff.(type) {
	case PhaseChanged:
		e.logger.Debug("phase changed", "seq", e.seq, "from", string(eff.From), "to", string(eff.To))
	case CrisisTriggered:
		e.logger.Debug("crisis triggered", "seq", e.seq, "event", eff.EventID, "month", eff.Month, "manual", eff.Manual)
	case CrisisResolved:
		e.logger.Debug("crisis resolved", "seq", e.seq, "event", eff.Entry.EventID, "choice", eff.Entry.ChoiceID)
	case EventDeflected:
		e.logger.Debug("event deflected", "seq", e.seq, "event", eff.Deflection.EventID, "tag", eff.Deflection.BlockedByTag)
	}
}

// LastDiagnostics returns the command errors produced by the most
// recent command, or nil if it was fully applied.
func (e *Engine) LastDiagnostics() []*CommandError {
	return append([]*CommandError(nil), e.lastDiags...)
}

// LastError returns the first diagnostic of the most recent command, or
// nil.
func (e *Engine) LastError() error {
	if len(e.lastDiags) == 0 {
		return nil
	}
	return e.lastDiags[0]
}

// State returns a deep copy of the current snapshot. The snapshot is
// computed once per command and cached.
func (e *Engine) State() state.Snapshot {
	return e.snapshot().Clone()
}

func (e *Engine) snapshot() *state.Snapshot {
	if e.cached == nil {
		snap := state.Snapshot{
			Internal:      e.state.Clone(),
			DeathAnalysis: state.Analyze(e.state, e.cfg.MaxDoom, e.cfg.TotalMonths),
		}
		e.cached = &snap
	}
	return e.cached
}

// Subscribe registers fn to be called after every command, in
// registration order. The returned func removes it.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	e.nextSubID++
	id := e.nextSubID
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range e.listeners {
			if sub.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify() {
	if len(e.listeners) == 0 {
		return
	}
	snap := e.snapshot()
	for _, sub := range append([]subscription(nil), e.listeners...) {
		e.invoke(sub, snap.Clone())
	}
}

// invoke calls one listener, converting a panic into a logged
// LISTENER_FAILED diagnostic so the remaining listeners still run.
func (e *Engine) invoke(sub subscription, snap state.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			ce := &CommandError{
				Code:    CodeListenerFailed,
				Message: fmt.Sprintf("listener panicked: %v", r),
				Details: map[string]string{"listener": fmt.Sprint(sub.id)},
			}
			e.lastDiags = append(e.lastDiags, ce)
			e.logger.Warn("listener failed", append(ce.logArgs(), "seq", e.seq)...)
		}
	}()
	sub.fn(snap)
}
