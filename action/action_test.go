package action

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq/bindings"
	"github.com/tkw1536/keyseq/logging"
)

func TestRunnerPrint(t *testing.T) {
	var out bytes.Buffer
	runner := &Runner{Stdout: &out}
	defer runner.Close()

	sequences, err := runner.Sequences(context.Background(), &bindings.File{
		Sequences: map[string]bindings.Action{
			"hi": {Print: "Hello world"},
		},
	})
	if err != nil {
		t.Fatalf("Sequences() error = %v", err)
	}

	sequences["hi"]()
	sequences["hi"]()

	if got, want := out.String(), "Hello world\nHello world\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunnerLua(t *testing.T) {
	var out bytes.Buffer
	runner := &Runner{Stdout: &out}
	defer runner.Close()

	sequences, err := runner.Sequences(context.Background(), &bindings.File{
		Sequences: map[string]bindings.Action{
			"abc": {Lua: `print("typed", sequence, #sequence)`},
			"bad": {Lua: `error("boom")`},
		},
	})
	if err != nil {
		t.Fatalf("Sequences() error = %v", err)
	}

	sequences["abc"]()
	sequences["bad"]() // logged, not fatal
	sequences["abc"]()

	if got, want := out.String(), "typed\tabc\t3\ntyped\tabc\t3\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunnerLuaSyntaxError(t *testing.T) {
	runner := &Runner{}
	defer runner.Close()

	_, err := runner.Sequences(context.Background(), &bindings.File{
		Sequences: map[string]bindings.Action{
			"x": {Lua: `this is not lua`},
		},
	})
	if err == nil || !strings.Contains(err.Error(), `"x"`) {
		t.Errorf("Sequences() error = %v, want an error naming the sequence", err)
	}
}

func TestRunnerInvalid(t *testing.T) {
	runner := &Runner{}
	defer runner.Close()

	_, err := runner.Sequences(context.Background(), &bindings.File{
		Sequences: map[string]bindings.Action{"x": {}},
	})
	if err == nil {
		t.Error("Sequences() accepted an empty action")
	}
}

func TestRunnerNil(t *testing.T) {
	runner := &Runner{}
	defer runner.Close()

	sequences, err := runner.Sequences(context.Background(), nil)
	if err != nil || len(sequences) != 0 {
		t.Errorf("Sequences(nil) = (%v, %v), want no sequences", sequences, err)
	}
}

func TestRunnerCommand(t *testing.T) {
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}

	var out bytes.Buffer
	runner := &Runner{Stdout: &out}
	defer runner.Close()

	sequences, err := runner.Sequences(context.Background(), &bindings.File{
		Sequences: map[string]bindings.Action{
			"e":       {Command: []string{echo, "from", "echo"}},
			"missing": {Command: []string{"/this/command/does/not/exist"}},
		},
	})
	if err != nil {
		t.Fatalf("Sequences() error = %v", err)
	}

	sequences["e"]()
	sequences["missing"]()
	runner.Wait()

	if got, want := out.String(), "from echo\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	// commands are not started once the runner is waited for
	sequences["e"]()
	runner.Wait()
	if got, want := out.String(), "from echo\n"; got != want {
		t.Errorf("output after Wait = %q, want %q", got, want)
	}
}

func TestClosest(t *testing.T) {
	patterns := []string{"hello", "help", "date"}

	tests := []struct {
		sequence string
		want     string
	}{
		{"hel", "help"},
		{"hlo", "hello"},
		{"dt", "date"},
		{"xyz", ""},
	}
	for _, tt := range tests {
		if got := Closest(tt.sequence, patterns); got != tt.want {
			t.Errorf("Closest(%q) = %q, want %q", tt.sequence, got, tt.want)
		}
	}
}

// logging.Init may only be called once per process
var (
	logOnce   sync.Once
	logBuffer bytes.Buffer
)

func TestMissLogger(t *testing.T) {
	logOnce.Do(func() {
		global := zerolog.New(&logBuffer).Level(zerolog.DebugLevel)
		logging.Init(&global)
	})
	logBuffer.Reset()
	buffer := &logBuffer

	miss := MissLogger([]string{"hello", "help"})
	miss("hel")
	miss("xyz")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buffer.String())
	}

	for _, want := range []string{`"component":"action.Miss"`, `"sequence":"hel"`, `"closest":"help"`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first line %q does not contain %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], `"sequence":"xyz"`) || strings.Contains(lines[1], "closest") {
		t.Errorf("second line %q should name the sequence without a closest pattern", lines[1])
	}
}
