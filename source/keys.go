// Package source produces key events from the system or a terminal and delivers them to a window.
package source

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	hook "github.com/robotn/gohook"
	"github.com/tkw1536/keyseq/window"
)

// Dispatcher receives events produced by a source.
// It is implemented by *window.Window.
type Dispatcher interface {
	Dispatch(event window.Event)
}

// Unidentified is the key value used when the name of a key is not known
const Unidentified = "Unidentified"

// ErrUnknownKey is returned by ParseKey for names that do not refer to a key
var ErrUnknownKey = errors.New("ParseKey: Unknown key")

// specialKeys maps the gohook names of non-printable keys to the key values used in events
var specialKeys = map[string]string{
	"enter":     "Enter",
	"esc":       "Escape",
	"tab":       "Tab",
	"backspace": "Backspace",
	"delete":    "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"shift":     "Shift",
	"ctrl":      "Control",
	"alt":       "Alt",
	"cmd":       "Meta",
	"capslock":  "CapsLock",
	"f1":        "F1",
	"f2":        "F2",
	"f3":        "F3",
	"f4":        "F4",
	"f5":        "F5",
	"f6":        "F6",
	"f7":        "F7",
	"f8":        "F8",
	"f9":        "F9",
	"f10":       "F10",
	"f11":       "F11",
	"f12":       "F12",
}

// keyAliases maps lower-case spellings accepted by ParseKey to key values
var keyAliases = map[string]string{
	"return": "Enter",
	"escape": "Escape",
	"space":  " ",
}

// keyNames maps gohook keycodes of special keys to key values
var keyNames = make(map[uint16]string)

func init() {
	for name, value := range specialKeys {
		if code, ok := hook.Keycode[name]; ok {
			keyNames[code] = value
		}

		keyAliases[name] = value
		keyAliases[strings.ToLower(value)] = value
	}
}

// ParseKey parses the name of a single key into the key value used in events.
//
// A single character stands for itself.
// Named keys are case-insensitive, such as "enter", "Escape" or "f12".
// Names of keys that are not delivered by Global or Terminal result in ErrUnknownKey.
// The empty string parses as the empty string, meaning no key.
func ParseKey(name string) (string, error) {
	if name == "" || utf8.RuneCountInString(name) == 1 {
		return name, nil
	}

	// only keys that a source can deliver are accepted
	if value, ok := keyAliases[strings.ToLower(name)]; ok {
		return value, nil
	}
	return "", errors.Wrapf(ErrUnknownKey, "%q", name)
}
