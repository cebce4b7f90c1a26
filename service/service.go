// Package service implements the keyseq command.
package service

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq"
	"github.com/tkw1536/keyseq/action"
	"github.com/tkw1536/keyseq/bindings"
	"github.com/tkw1536/keyseq/listener"
	"github.com/tkw1536/keyseq/logging"
	"github.com/tkw1536/keyseq/source"
	"github.com/tkw1536/keyseq/window"
	"golang.org/x/sync/errgroup"
)

var serviceLogger zerolog.Logger

func init() {
	logging.ComponentLogger("service.Service", &serviceLogger)
}

// Names of key sources
const (
	SourceAuto     = "auto"
	SourceGlobal   = "global"
	SourceTerminal = "terminal"
)

// ErrBindingsExist is returned by Main when asked to write example bindings over an existing file
var ErrBindingsExist = errors.New("Main: Bindings file already exists")

type Config struct {
	BindingsPath string
	InitBindings bool

	Trigger string
	Clear   string
	Toggle  string
	Delay   time.Duration

	Source   string
	Disabled bool

	Quiet bool
	Debug bool

	Stdout io.Writer // output of actions, defaults to os.Stdout
}

func DefaultConfig() Config {
	path := os.Getenv("KEYSEQ_BINDINGS")
	if path == "" {
		path = "keyseq.yaml"
	}

	return Config{
		BindingsPath: path,

		Trigger: "enter",
		Clear:   "esc",
		Toggle:  "f12",
		Delay:   1 * time.Second,

		Source: SourceAuto,
	}
}

// AddFlagsTo adds flags for this Config to the provided flagset.
// When flagset is nil, uses flag.CommandLine
func (c *Config) AddFlagsTo(flagset *flag.FlagSet) {
	if flagset == nil {
		flagset = flag.CommandLine
	}

	flagset.StringVar(&c.BindingsPath, "bindings", c.BindingsPath, "Path to read bindings from. Files ending in .yaml or .yml are read as YAML, all others as JSON. Can also be given via KEYSEQ_BINDINGS environment variable. ")
	flagset.BoolVar(&c.InitBindings, "init", c.InitBindings, "Write example bindings to the bindings path and exit")

	flagset.StringVar(&c.Trigger, "trigger", c.Trigger, "Key that executes the typed sequence. Empty to disable. ")
	flagset.StringVar(&c.Clear, "clear", c.Clear, "Key that discards the typed sequence. Empty to disable. ")
	flagset.StringVar(&c.Toggle, "toggle", c.Toggle, "Key that enables or disables listening. Empty to disable. ")
	flagset.DurationVar(&c.Delay, "delay", c.Delay, "Execute the typed sequence after this much inactivity. Negative to disable. ")

	flagset.StringVar(&c.Source, "source", c.Source, "Where to read keys from: 'global' for system-wide keys, 'terminal' for the terminal, 'auto' for the terminal if stdin is a terminal and system-wide otherwise")
	flagset.BoolVar(&c.Disabled, "disabled", c.Disabled, "Start with listening disabled")

	flagset.BoolVar(&c.Quiet, "quiet", c.Quiet, "Supress all logging output")
	flagset.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
}

// Logger returns a logger writing to w, respecting the Quiet and Debug options
func (c Config) Logger(w io.Writer) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	switch {
	case c.Quiet:
		return logger.Level(zerolog.Disabled)
	case c.Debug:
		return logger.Level(zerolog.DebugLevel)
	default:
		return logger.Level(zerolog.InfoLevel)
	}
}

// keySource returns the function producing key events
func (c Config) keySource() (func(context.Context, source.Dispatcher) error, error) {
	switch c.Source {
	case SourceGlobal:
		return source.Global, nil
	case SourceTerminal:
		return source.Terminal, nil
	case SourceAuto, "":
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return source.Terminal, nil
		}
		return source.Global, nil
	}
	return nil, errors.Errorf("Unknown source %q", c.Source)
}

// engineConfig parses the key options and returns the matching engine configuration
func (c Config) engineConfig() (config keyseq.Config, toggle string, err error) {
	config = keyseq.DefaultConfig()
	config.Enabled = !c.Disabled

	config.Delay = c.Delay
	if config.Delay < 0 {
		config.Delay = keyseq.NoDelay
	}

	if config.TriggerMarker, err = source.ParseKey(c.Trigger); err != nil {
		return config, "", errors.Wrap(err, "trigger")
	}
	if config.ClearMarker, err = source.ParseKey(c.Clear); err != nil {
		return config, "", errors.Wrap(err, "clear")
	}
	if toggle, err = source.ParseKey(c.Toggle); err != nil {
		return config, "", errors.Wrap(err, "toggle")
	}
	return config, toggle, nil
}

// Main runs the service until ctx is cancelled or the key source stops
func (c Config) Main(ctx context.Context) error {
	if c.InitBindings {
		return initBindings(bindings.Open(c.BindingsPath))
	}

	run, err := c.keySource()
	if err != nil {
		return err
	}
	return c.serve(ctx, run)
}

// serve runs the service with keys coming from run
func (c Config) serve(ctx context.Context, run func(context.Context, source.Dispatcher) error) error {
	store := bindings.Open(c.BindingsPath)

	config, toggle, err := c.engineConfig()
	if err != nil {
		return err
	}

	file, err := store.Read()
	if err != nil {
		return err
	}
	if file == nil {
		serviceLogger.Warn().Str("path", c.BindingsPath).Msg("no bindings found, use -init to create some")
	}

	runner := &action.Runner{Stdout: c.Stdout}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.Sequences, err = runner.Sequences(ctx, file); err != nil {
		return err
	}
	config.Miss = action.MissLogger(file.Patterns())

	w := window.New()
	defer w.Close()

	engine := keyseq.New(w, config)
	defer engine.Close()

	if toggle != "" {
		defer toggleSubscription(w, engine, toggle).Close()
	}

	serviceLogger.Info().
		Int("sequences", len(config.Sequences)).
		Str("trigger", config.TriggerMarker).
		Str("clear", config.ClearMarker).
		Dur("delay", config.Delay).
		Bool("enabled", config.Enabled).
		Msg("service started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return run(gctx, w)
	})
	g.Go(func() error {
		<-gctx.Done()
		serviceLogger.Info().Msg("service stopping")
		engine.Close()
		runner.Wait()
		return nil
	})

	err = g.Wait()
	if errors.Cause(err) == source.ErrInterrupted {
		return nil
	}
	return err
}

// toggleSubscription attaches a listener to target that flips the enabled state of engine whenever key is pressed.
// The caller must close the returned subscription.
func toggleSubscription(target listener.Target, engine *keyseq.Engine, key string) *listener.Subscription {
	sub := listener.New(target)
	sub.Update(true, window.KeyDown, window.NewHandler(func(event window.Event) {
		if event.Key != key {
			return
		}
		enabled := !engine.Enabled()
		engine.SetEnabled(enabled)
		serviceLogger.Info().Bool("enabled", enabled).Msg("toggled listening")
	}))
	return sub
}

func initBindings(store bindings.Store) error {
	existing, err := store.Read()
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrBindingsExist
	}

	if err := store.Write(bindings.Example()); err != nil {
		return err
	}
	serviceLogger.Info().Msg("wrote example bindings")
	return nil
}
