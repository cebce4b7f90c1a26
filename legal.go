package keyseq

import "strings"

// modules are the third-party modules compiled into keyseq
var modules = []string{
	"github.com/gdamore/tcell/v2",
	"github.com/lithammer/fuzzysearch",
	"github.com/mattn/go-isatty",
	"github.com/pkg/errors",
	"github.com/robotn/gohook",
	"github.com/rs/zerolog",
	"github.com/yuin/gopher-lua",
	"golang.org/x/sync",
	"gopkg.in/yaml.v3",
}

// LegalText returns legal text to be included in human-readable output using keyseq.
func LegalText() string {
	return `
================================================================================
keyseq - Run actions by typing key sequences
================================================================================
keyseq includes the following third-party modules.
Their license terms can be found in their respective source repositories.

` + strings.Join(modules, "\n") + "\n"
}
