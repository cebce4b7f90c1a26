// Package keyseq recognizes sequences of typed keys and runs a function for each recognized sequence.
//
// An Engine listens for key events on a Host.
// Printable keys are appended to the current sequence.
// The sequence is executed when the trigger key is pressed, or when no key has been released for a configured delay.
// Executing looks up the sequence, clears it, and then calls the function registered for it (if any).
package keyseq

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq/listener"
	"github.com/tkw1536/keyseq/logging"
	"github.com/tkw1536/keyseq/window"
)

var engineLogger zerolog.Logger

func init() {
	logging.ComponentLogger("keyseq.Engine", &engineLogger)
}

// Sequences maps patterns to the function to run when the pattern has been typed.
// An Engine never modifies its Sequences, so they may be shared between engines.
type Sequences map[string]func()

// MaxContentLength returns the length, in runes, of the longest pattern
func (s Sequences) MaxContentLength() (max int) {
	for pattern := range s {
		if l := utf8.RuneCountInString(pattern); l > max {
			max = l
		}
	}
	return
}

// NoDelay disables executing sequences after a period of inactivity
const NoDelay time.Duration = -1

// Config configures an Engine
type Config struct {
	// Sequences are the recognized patterns
	Sequences Sequences

	// Enabled is the initial enabled state
	Enabled bool

	// Delay is the time after the last key release after which the sequence is executed.
	// A negative Delay disables this.
	Delay time.Duration

	// TriggerMarker is the key that executes the current sequence.
	// Empty means no trigger key.
	TriggerMarker string

	// ClearMarker is the key that discards the current sequence.
	// Empty means no clear key.
	ClearMarker string

	// Miss, when not nil, is called with every non-empty sequence that is executed without matching a pattern.
	Miss func(sequence string)
}

// DefaultConfig returns a configuration that is enabled, but has no sequences and neither a trigger key nor a delay
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Delay:   NoDelay,
	}
}

// Host is the environment an Engine receives events from.
// It is implemented by *window.Window.
type Host interface {
	listener.Target

	SetTimeout(fn func(), delay time.Duration) window.TimerID
	ClearTimeout(id window.TimerID)
}

// Engine accumulates typed keys into a sequence and executes it.
//
// Key events are processed only while the engine is enabled.
// All methods are safe for concurrent use.
type Engine struct {
	host             Host
	config           Config
	maxContentLength int

	keyDown, keyUp     *listener.Subscription
	onKeyDown, onKeyUp *window.Handler
	subscriptions      sync.Mutex // protects keyDown, keyUp and closed
	closed             bool

	m          sync.Mutex // protects the fields below
	enabled    bool
	sequence   string
	timer      window.TimerID // pending timer, 0 if none
	generation uint64         // incremented whenever a timer is scheduled
}

// New creates a new engine and attaches it to host if config.Enabled is set.
//
// The engine stays attached until Close is called.
func New(host Host, config Config) *Engine {
	engine := &Engine{
		host:             host,
		config:           config,
		maxContentLength: config.Sequences.MaxContentLength(),

		keyDown: listener.New(host),
		keyUp:   listener.New(host),

		enabled: config.Enabled,
	}
	engine.onKeyDown = window.NewHandler(engine.HandleKeyDown)
	engine.onKeyUp = window.NewHandler(engine.HandleKeyUp)

	engine.subscribe(config.Enabled)
	return engine
}

// subscribe attaches or detaches the key handlers.
// engine.subscriptions must be held, unless the engine is still being constructed.
func (engine *Engine) subscribe(enabled bool) {
	engine.keyDown.Update(enabled, window.KeyDown, engine.onKeyDown)
	engine.keyUp.Update(enabled, window.KeyUp, engine.onKeyUp)
}

// Close detaches the engine from its host and resets it.
// Calls to SetEnabled after Close have no effect.
func (engine *Engine) Close() {
	engine.subscriptions.Lock()
	defer engine.subscriptions.Unlock()

	engine.closed = true
	engine.keyDown.Close()
	engine.keyUp.Close()

	engine.m.Lock()
	defer engine.m.Unlock()

	engine.enabled = false
	engine.resetLocked()
}

// Sequence returns the current sequence
func (engine *Engine) Sequence() string {
	engine.m.Lock()
	defer engine.m.Unlock()

	return engine.sequence
}

// Enabled reports if the engine processes key events
func (engine *Engine) Enabled() bool {
	engine.m.Lock()
	defer engine.m.Unlock()

	return engine.enabled
}

// SetEnabled enables or disables processing of key events.
// Disabling resets the engine without running any function.
func (engine *Engine) SetEnabled(value bool) {
	engine.subscriptions.Lock()
	defer engine.subscriptions.Unlock()

	if engine.closed {
		return
	}

	engine.m.Lock()
	engine.enabled = value
	if !value {
		engine.resetLocked()
	}
	engine.m.Unlock()

	engine.subscribe(value)
}

// Reset discards the current sequence and cancels a pending execution.
func (engine *Engine) Reset() {
	engine.m.Lock()
	defer engine.m.Unlock()

	engineLogger.Debug().Str("sequence", engine.sequence).Msg("reset")
	engine.resetLocked()
}

// Execute looks up the current sequence, resets the engine and then calls the matching function, if any.
func (engine *Engine) Execute() {
	engine.m.Lock()
	run := engine.takeLocked()
	engine.m.Unlock()

	run()
}

// HandleKeyDown processes a key being pressed
func (engine *Engine) HandleKeyDown(event window.Event) {
	if event.IsComposing {
		return
	}

	engine.m.Lock()
	if !engine.enabled {
		engine.m.Unlock()
		return
	}

	key := event.Key
	switch {
	case engine.config.ClearMarker != "" && key == engine.config.ClearMarker:
		engine.resetLocked()
	case engine.config.TriggerMarker != "" && key == engine.config.TriggerMarker:
		run := engine.takeLocked()
		engine.m.Unlock()

		run()
		return
	case utf8.RuneCountInString(key) == 1:
		engine.clearTimerLocked()
		engine.sequence += key

		if utf8.RuneCountInString(engine.sequence) > engine.maxContentLength {
			engineLogger.Debug().Str("sequence", engine.sequence).Int("max", engine.maxContentLength).Msg("sequence too long, discarding")
			engine.resetLocked()
		}
	}

	engine.m.Unlock()
}

// HandleKeyUp processes a key being released
func (engine *Engine) HandleKeyUp(event window.Event) {
	if event.IsComposing {
		return
	}

	engine.m.Lock()
	defer engine.m.Unlock()

	if !engine.enabled || engine.config.Delay < 0 {
		return
	}

	engine.clearTimerLocked()

	engine.generation++
	generation := engine.generation
	engine.timer = engine.host.SetTimeout(func() {
		engine.expire(generation)
	}, engine.config.Delay)
}

// expire is called when the timer with the given generation fires
func (engine *Engine) expire(generation uint64) {
	engine.m.Lock()
	if engine.timer == 0 || engine.generation != generation {
		engine.m.Unlock()
		return
	}
	engine.timer = 0 // already fired, nothing to clear
	run := engine.takeLocked()
	engine.m.Unlock()

	run()
}

// takeLocked resets the engine and returns a function that runs whatever executing the old sequence should do.
// The returned function must be called without holding engine.m.
func (engine *Engine) takeLocked() func() {
	sequence := engine.sequence
	fn, ok := engine.config.Sequences[sequence]
	engine.resetLocked()

	switch {
	case ok && fn != nil:
		engineLogger.Debug().Str("sequence", sequence).Msg("executing sequence")
		return fn
	case sequence != "" && engine.config.Miss != nil:
		miss := engine.config.Miss
		return func() { miss(sequence) }
	default:
		return func() {}
	}
}

func (engine *Engine) resetLocked() {
	engine.clearTimerLocked()
	engine.sequence = ""
}

func (engine *Engine) clearTimerLocked() {
	if engine.timer == 0 {
		return
	}
	engine.host.ClearTimeout(engine.timer)
	engine.timer = 0
}
