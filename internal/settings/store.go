// Package settings persists the controller flags and mappings in a JSON,
// YAML or TOML file, chosen by extension.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/gamecontrol/internal/configpaths"
)

// Store implements gamecontrol.Settings. Saves only touch memory; Flush
// writes the file.
type Store struct {
	path   string
	format string

	mu     sync.Mutex
	values map[string]any
	dirty  bool
}

// Open loads path. A missing file yields an empty store that is created on
// the first Flush.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		format: formatOf(path),
		values: map[string]any{},
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := s.decode(data); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) decode(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	switch s.format {
	case "yaml":
		return yaml.Unmarshal(data, &s.values)
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return err
		}
		s.values = tree.ToMap()
		return nil
	default:
		return json.Unmarshal(data, &s.values)
	}
}

func (s *Store) encode() ([]byte, error) {
	switch s.format {
	case "yaml":
		return yaml.Marshal(s.values)
	case "toml":
		tree, err := toml.TreeFromMap(s.values)
		if err != nil {
			return nil, err
		}
		out, err := tree.ToTomlString()
		return []byte(out), err
	default:
		return json.MarshalIndent(s.values, "", "  ")
	}
}

func (s *Store) LoadBool(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[name].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}

func (s *Store) SaveBool(name string, value bool) {
	s.set(name, value)
}

func (s *Store) LoadString(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (s *Store) SaveString(name string, value string) {
	s.set(name, value)
}

func (s *Store) set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[name]; ok && old == value {
		return
	}
	s.values[name] = value
	s.dirty = true
}

// Values returns a copy of every stored value.
func (s *Store) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush writes the file when something changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := configpaths.EnsureDir(s.path); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.dirty = false
	return nil
}
