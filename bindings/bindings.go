// Package bindings describes which action to perform for each key sequence, and how to store that description.
package bindings

import (
	"sort"

	"github.com/pkg/errors"
)

// File describes a set of key sequences and the action bound to each
type File struct {
	Sequences map[string]Action `json:"sequences" yaml:"sequences"`
}

// Action is the action bound to a sequence.
// Exactly one of its fields must be set.
type Action struct {
	// Command is a command line to run, without involving a shell
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`

	// Print is text to write to standard output
	Print string `json:"print,omitempty" yaml:"print,omitempty"`

	// Lua is a lua chunk to run.
	// The typed sequence is available as the global "sequence".
	Lua string `json:"lua,omitempty" yaml:"lua,omitempty"`
}

// ErrInvalidAction indicates that an action does not have exactly one field set
var ErrInvalidAction = errors.New("Action.Validate: Invalid action")

// Validate checks that action has exactly one field set
func (action Action) Validate() error {
	count := 0
	if len(action.Command) > 0 {
		count++
	}
	if action.Print != "" {
		count++
	}
	if action.Lua != "" {
		count++
	}
	if count != 1 {
		return ErrInvalidAction
	}
	return nil
}

// Validate checks that every action in file is valid.
// The returned error names the first offending pattern, in sorted order.
func (file *File) Validate() error {
	for _, pattern := range file.Patterns() {
		if err := file.Sequences[pattern].Validate(); err != nil {
			return errors.Wrapf(err, "sequence %q", pattern)
		}
	}
	return nil
}

// Patterns returns the patterns in file, sorted
func (file *File) Patterns() []string {
	if file == nil {
		return nil
	}

	patterns := make([]string, 0, len(file.Sequences))
	for pattern := range file.Sequences {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// Example returns an example file
func Example() *File {
	return &File{
		Sequences: map[string]Action{
			"hello": {Print: "Hello world"},
			"date":  {Command: []string{"date"}},
			"lua":   {Lua: `print("you typed " .. sequence)`},
		},
	}
}
