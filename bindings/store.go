package bindings

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store reads and writes bindings
type Store interface {
	// Read reads bindings from this store.
	// When no bindings exist, returns nil.
	Read() (*File, error)

	// Write writes bindings to this store.
	// Write(nil) deletes any stored bindings.
	Write(file *File) error
}

// Open returns a store for the file at path.
// Files ending in ".yaml" or ".yml" are stored as YAML, all others as JSON.
func Open(path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLFileStore(path)
	default:
		return JSONFileStore(path)
	}
}

// JSONFileStore stores bindings in the provided JSON file on disk.
// Implements Store.
type JSONFileStore string

// Read reads bindings from the provided filename on disk.
//
// When the file does not exist, the store is considered empty.
func (f JSONFileStore) Read() (*File, error) {
	return readFile(string(f), func(r io.Reader, file *File) error {
		return json.NewDecoder(r).Decode(file)
	})
}

// Write writes bindings to the provided filename on disk.
// When file is nil, deletes the file.
func (f JSONFileStore) Write(file *File) error {
	return writeFile(string(f), file, func(w io.Writer, file *File) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(file)
	})
}

// YAMLFileStore stores bindings in the provided YAML file on disk.
// Implements Store.
type YAMLFileStore string

// Read reads bindings from the provided filename on disk.
//
// When the file does not exist, the store is considered empty.
func (f YAMLFileStore) Read() (*File, error) {
	return readFile(string(f), func(r io.Reader, file *File) error {
		return yaml.NewDecoder(r).Decode(file)
	})
}

// Write writes bindings to the provided filename on disk.
// When file is nil, deletes the file.
func (f YAMLFileStore) Write(file *File) error {
	return writeFile(string(f), file, func(w io.Writer, file *File) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(file); err != nil {
			return err
		}
		return encoder.Close()
	})
}

func readFile(path string, decode func(io.Reader, *File) error) (*File, error) {
	h, err := os.Open(path)
	if err != nil {
		// file does not exist, meaning the store is empty
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "Unable to open %q", path)
	}
	defer h.Close()

	file := &File{}
	if err := decode(h, file); err != nil {
		return nil, errors.Wrapf(err, "Unable to decode %q", path)
	}
	return file, nil
}

func writeFile(path string, file *File, encode func(io.Writer, *File) error) error {
	if file == nil {
		err := os.Remove(path)
		if err != nil && os.IsNotExist(err) {
			return nil
		}
		return err
	}

	h, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "Unable to create %q", path)
	}
	defer h.Close()

	return errors.Wrapf(encode(h, file), "Unable to encode %q", path)
}

// InMemoryStore stores bindings in memory.
// It implements Store.
type InMemoryStore struct {
	file *File
}

// Read reads bindings from memory
func (store *InMemoryStore) Read() (*File, error) {
	return store.file, nil
}

// Write writes bindings to memory
func (store *InMemoryStore) Write(file *File) error {
	store.file = file
	return nil
}
