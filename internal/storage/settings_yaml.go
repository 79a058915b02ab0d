package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the YAML document inside the config directory.
const SettingsFileName = "settings.yaml"

// YAMLStore keeps every key in one YAML file.
type YAMLStore struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewYAMLStore stores preferences in dir/settings.yaml. The file is created on
// the first Save.
func NewYAMLStore(dir string) *YAMLStore {
	return &YAMLStore{path: filepath.Join(dir, SettingsFileName)}
}

// Path returns the settings file location.
func (store *YAMLStore) Path() string {
	return store.path
}

// Load reads the value under key. A missing file or key is not an error.
func (store *YAMLStore) Load(key string, dst any) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return false, ErrClosed
	}

	document, err := store.read()
	if err != nil {
		return false, err
	}
	node, ok := document[key]
	if !ok {
		return false, nil
	}
	if err := node.Decode(dst); err != nil {
		return false, fmt.Errorf("parse settings key %s: %w", key, err)
	}
	return true, nil
}

// Save replaces the value under key and keeps the others.
func (store *YAMLStore) Save(key string, value any) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return ErrClosed
	}

	document, err := store.read()
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("marshal settings key %s: %w", key, err)
	}
	document[key] = node

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	temp := store.path + ".tmp"
	if err := os.WriteFile(temp, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(temp, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Close makes later calls fail.
func (store *YAMLStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.closed = true
	return nil
}

func (store *YAMLStore) read() (map[string]yaml.Node, error) {
	document := make(map[string]yaml.Node)
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document, nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return nil, fmt.Errorf("parse settings yaml: %w", err)
	}
	return document, nil
}
