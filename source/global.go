package source

import (
	"context"
	"unicode"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq/logging"
	"github.com/tkw1536/keyseq/window"
)

var globalLogger zerolog.Logger

func init() {
	logging.ComponentLogger("source.Global", &globalLogger)
}

// Global delivers system-wide key events to target.
// It blocks until ctx is cancelled.
//
// Only one Global source can be active at the same time, per process.
// Therefore it is recommended to only call this function from a main method.
func Global(ctx context.Context, target Dispatcher) error {
	events := hook.Start()
	defer hook.End()

	globalLogger.Info().Msg("listening for system-wide key events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if event, ok := fromHook(e); ok {
				target.Dispatch(event)
			}
		}
	}
}

// fromHook translates a gohook event into a window event.
//
// gohook reports every press as a KeyHold, and additionally as a KeyDown when it produces a character.
// Characters are taken from KeyDown, named keys from KeyHold.
func fromHook(e hook.Event) (window.Event, bool) {
	switch e.Kind {
	case hook.KeyDown:
		if !unicode.IsPrint(e.Keychar) {
			return window.Event{}, false
		}
		return window.Event{Type: window.KeyDown, Key: string(e.Keychar)}, true
	case hook.KeyHold:
		name, ok := keyNames[e.Keycode]
		if !ok {
			return window.Event{}, false
		}
		return window.Event{Type: window.KeyDown, Key: name}, true
	case hook.KeyUp:
		name, ok := keyNames[e.Keycode]
		if !ok {
			name = Unidentified
		}
		return window.Event{Type: window.KeyUp, Key: name}, true
	}
	return window.Event{}, false
}
