package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestComponentLogger(t *testing.T) {
	var before zerolog.Logger
	ComponentLogger("test.Before", &before)

	// not yet initialized, must not panic or write
	before.Info().Msg("dropped")

	var buffer bytes.Buffer
	global := zerolog.New(&buffer)
	Init(&global)

	var after zerolog.Logger
	ComponentLogger("test.After", &after)

	before.Info().Msg("first")
	after.Info().Msg("second")

	got := buffer.String()
	if strings.Contains(got, "dropped") {
		t.Errorf("message logged before Init was written: %q", got)
	}
	for _, want := range []string{`"component":"test.Before"`, `"component":"test.After"`, "first", "second"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("second call to Init did not panic")
		}
	}()
	Init(&global)
}
