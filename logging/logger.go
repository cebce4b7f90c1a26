// Package logging provides internal logging facilities for keyseq
package logging

import (
	"sync"

	"github.com/rs/zerolog"
)

var globalMutex sync.Mutex
var globalLogger *zerolog.Logger
var localLoggers = make(map[string]*zerolog.Logger)

// Init configures the global logger.
// It should be called exactly once, from the main package.
//
// Every logger registered with ComponentLogger, before or after the call to Init, derives from global.
func Init(global *zerolog.Logger) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	if globalLogger != nil {
		panic("logging.Init: Already called")
	}

	globalLogger = global
	for name, logger := range localLoggers {
		bindLogger(name, logger)
	}
}

func bindLogger(component string, logger *zerolog.Logger) {
	*logger = globalLogger.With().Str("component", component).Logger()
}

// ComponentLogger registers logger to be the logger for the given component.
// Until Init is called, logger discards everything written to it.
func ComponentLogger(component string, logger *zerolog.Logger) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	localLoggers[component] = logger

	if globalLogger == nil {
		*logger = zerolog.Nop()
		return
	}

	bindLogger(component, logger)
}
