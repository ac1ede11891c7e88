// Package identity persists the remembered author name across restarts.
// It is the only piece of session state that survives a restart; everything
// else is rebuilt from the service on bootstrap.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the author-identity persistence contract used by the session
// layer. Implementations do no validation beyond what the caller applies.
type Store interface {
	Get() (name string, ok bool)
	Set(name string) error
	Clear() error
}

type identityFile struct {
	Author string `json:"author"`
}

// FileStore keeps the author name in a small JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the default location,
// $XDG_CONFIG_HOME/punchlog/identity.json.
func NewFileStore() *FileStore {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return &FileStore{path: filepath.Join(dir, "punchlog", "identity.json")}
}

// NewFileStoreAt creates a FileStore at an explicit path (used by tests).
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the remembered author name. ok is false when no identity has
// been stored or the file is unreadable.
func (s *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var f identityFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false
	}
	if f.Author == "" {
		return "", false
	}
	return f.Author, true
}

// Set persists the author name.
func (s *FileStore) Set(name string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating identity dir: %w", err)
	}
	data, err := json.MarshalIndent(identityFile{Author: name}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear forgets the stored identity.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
