// Package action turns bindings into functions run by a keyseq engine.
package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq"
	"github.com/tkw1536/keyseq/bindings"
	"github.com/tkw1536/keyseq/logging"
	lua "github.com/yuin/gopher-lua"
)

var runnerLogger zerolog.Logger

func init() {
	logging.ComponentLogger("action.Runner", &runnerLogger)
}

// Runner runs the actions of a bindings file.
//
// Commands are started in the background, so that slow commands do not hold up key processing.
// Print and Lua actions run synchronously.
type Runner struct {
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr

	m        sync.Mutex // protects stopped and additions to commands
	stopped  bool
	commands sync.WaitGroup

	luaM sync.Mutex
	lua  *lua.LState
}

// Sequences compiles the actions in file into sequences.
// Commands are killed when ctx is cancelled.
//
// A nil file results in no sequences.
func (r *Runner) Sequences(ctx context.Context, file *bindings.File) (keyseq.Sequences, error) {
	if file == nil {
		return keyseq.Sequences{}, nil
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}

	sequences := make(keyseq.Sequences, len(file.Sequences))
	for _, pattern := range file.Patterns() {
		fn, err := r.compile(ctx, pattern, file.Sequences[pattern])
		if err != nil {
			return nil, errors.Wrapf(err, "sequence %q", pattern)
		}
		sequences[pattern] = fn
	}
	return sequences, nil
}

func (r *Runner) compile(ctx context.Context, pattern string, action bindings.Action) (func(), error) {
	switch {
	case len(action.Command) > 0:
		argv := append([]string(nil), action.Command...)
		return func() { r.runCommand(ctx, pattern, argv) }, nil
	case action.Print != "":
		text := action.Print
		return func() { fmt.Fprintln(r.stdout(), text) }, nil
	case action.Lua != "":
		return r.compileLua(pattern, action.Lua)
	}
	return nil, bindings.ErrInvalidAction
}

func (r *Runner) runCommand(ctx context.Context, pattern string, argv []string) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	logger := runnerLogger.With().Str("sequence", pattern).Strs("command", argv).Logger()

	r.m.Lock()
	if r.stopped {
		r.m.Unlock()
		logger.Warn().Msg("runner is stopping, not starting command")
		return
	}
	r.commands.Add(1)
	r.m.Unlock()

	if err := cmd.Start(); err != nil {
		r.commands.Done()
		logger.Error().Err(err).Msg("Unable to start command")
		return
	}
	logger.Info().Int("pid", cmd.Process.Pid).Msg("command started")

	go func() {
		defer r.commands.Done()

		if err := cmd.Wait(); err != nil {
			logger.Warn().Err(err).Msg("command failed")
			return
		}
		logger.Debug().Msg("command finished")
	}()
}

func (r *Runner) compileLua(pattern string, source string) (func(), error) {
	r.luaM.Lock()
	defer r.luaM.Unlock()

	if r.lua == nil {
		r.lua = lua.NewState()
		r.lua.SetGlobal("print", r.lua.NewFunction(r.luaPrint))
	}

	chunk, err := r.lua.LoadString(source)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to compile lua")
	}

	return func() {
		r.luaM.Lock()
		defer r.luaM.Unlock()

		r.lua.SetGlobal("sequence", lua.LString(pattern))
		r.lua.Push(chunk)
		if err := r.lua.PCall(0, lua.MultRet, nil); err != nil {
			runnerLogger.Error().Err(err).Str("sequence", pattern).Msg("lua action failed")
		}
		r.lua.SetTop(0)
	}, nil
}

// luaPrint replaces the lua print function, writing to the Stdout of r
func (r *Runner) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			fmt.Fprint(r.stdout(), "\t")
		}
		fmt.Fprint(r.stdout(), L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.stdout())
	return 0
}

// Wait waits for all commands started so far to exit.
// Command actions run after Wait has been called do not start their command.
func (r *Runner) Wait() {
	r.m.Lock()
	r.stopped = true
	r.m.Unlock()

	r.commands.Wait()
}

// Close releases the resources held by r.
// Functions returned by Sequences must not be called afterwards.
func (r *Runner) Close() {
	r.luaM.Lock()
	defer r.luaM.Unlock()

	if r.lua != nil {
		r.lua.Close()
		r.lua = nil
	}
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}
