package keyseq_test

import (
	"fmt"

	"github.com/tkw1536/keyseq"
	"github.com/tkw1536/keyseq/window"
)

func ExampleEngine() {
	w := window.New()
	defer w.Close()

	engine := keyseq.New(w, keyseq.Config{
		Sequences: keyseq.Sequences{
			"FOO": func() { fmt.Println("typed FOO") },
		},
		Enabled:       true,
		Delay:         keyseq.NoDelay,
		TriggerMarker: "Enter",
		ClearMarker:   "Escape",
	})
	defer engine.Close()

	for _, key := range []string{"F", "O", "O"} {
		w.Dispatch(window.Event{Type: window.KeyDown, Key: key})
	}
	fmt.Printf("%q\n", engine.Sequence())

	w.Dispatch(window.Event{Type: window.KeyDown, Key: "Enter"})
	fmt.Printf("%q\n", engine.Sequence())

	// Output: "FOO"
	// typed FOO
	// ""
}

func ExampleEngine_SetEnabled() {
	w := window.New()
	defer w.Close()

	engine := keyseq.New(w, keyseq.Config{
		Sequences:     keyseq.Sequences{"ab": func() {}},
		Enabled:       true,
		Delay:         keyseq.NoDelay,
		TriggerMarker: "Enter",
	})
	defer engine.Close()

	w.Dispatch(window.Event{Type: window.KeyDown, Key: "a"})
	engine.SetEnabled(false)
	fmt.Println(engine.Enabled(), w.ListenerCount(window.KeyDown), engine.Sequence() == "")

	engine.SetEnabled(true)
	fmt.Println(engine.Enabled(), w.ListenerCount(window.KeyDown))

	// Output: false 0 true
	// true 1
}
