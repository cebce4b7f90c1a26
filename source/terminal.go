package source

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq/logging"
	"github.com/tkw1536/keyseq/window"
)

var terminalLogger zerolog.Logger

func init() {
	logging.ComponentLogger("source.Terminal", &terminalLogger)
}

// ErrInterrupted is returned by Terminal when the user pressed ctrl+c
var ErrInterrupted = errors.New("Terminal: Interrupted")

// terminalKeys maps tcell keys to key values
var terminalKeys = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyTab:        "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
}

// Terminal delivers key events typed into the controlling terminal to target.
// It blocks until ctx is cancelled, or returns ErrInterrupted when ctrl+c is pressed.
//
// Terminals do not report key releases, so every key press is delivered as a key down event immediately followed by a key up event.
func Terminal(ctx context.Context, target Dispatcher) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "Unable to open terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "Unable to initialize terminal")
	}
	defer screen.Fini()

	// finalizing the screen makes PollEvent return nil
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			screen.Fini()
		case <-done:
		}
	}()

	terminalLogger.Info().Msg("listening for key events on the terminal")
	for {
		e := screen.PollEvent()
		if e == nil {
			return nil
		}

		ek, ok := e.(*tcell.EventKey)
		if !ok {
			continue
		}
		if ek.Key() == tcell.KeyCtrlC {
			return ErrInterrupted
		}

		key, ok := terminalKey(ek.Key(), ek.Rune())
		if !ok {
			terminalLogger.Debug().Str("name", ek.Name()).Msg("ignoring key")
			continue
		}
		target.Dispatch(window.Event{Type: window.KeyDown, Key: key})
		target.Dispatch(window.Event{Type: window.KeyUp, Key: key})
	}
}

// terminalKey returns the key value for a tcell key
func terminalKey(key tcell.Key, r rune) (string, bool) {
	if key == tcell.KeyRune {
		return string(r), true
	}
	if key >= tcell.KeyF1 && key <= tcell.KeyF12 {
		return fmt.Sprintf("F%d", key-tcell.KeyF1+1), true
	}
	value, ok := terminalKeys[key]
	return value, ok
}
