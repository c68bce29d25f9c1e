// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Provider supplies the current settings. The pipeline calls Settings once
// per frame, so changes take effect on the next frame.
type Provider interface {
	Settings() Settings
}

// Saver persists the current settings.
type Saver interface {
	Save() error
}

// Store is a Provider that can be changed and persisted.
type Store interface {
	Provider
	Saver
	Update(fn func(*Settings))
}

// Memory is an in-memory Store.
type Memory struct {
	mu  sync.RWMutex
	cur Settings
}

// NewMemory returns a Memory provider holding s.
func NewMemory(s Settings) *Memory {
	return &Memory{cur: s}
}

// Settings implements Provider.
func (m *Memory) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Update applies fn to the settings under the provider lock.
func (m *Memory) Update(fn func(*Settings)) {
	m.mu.Lock()
	fn(&m.cur)
	m.mu.Unlock()
}

// Save implements Saver. Memory settings are not persisted.
func (m *Memory) Save() error { return nil }

// FileStore is a Provider backed by a YAML file.
type FileStore struct {
	Memory
	path string
}

// Open loads the settings file at path. A missing file yields the defaults;
// the file is created on the first Save.
func Open(path string) (*FileStore, error) {
	fsStore := &FileStore{path: path}
	fsStore.cur = Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fsStore, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fsStore.cur); err != nil {
		return nil, fmt.Errorf("settings: decode %s: %w", path, err)
	}
	return fsStore, nil
}

// Path returns the settings file path.
func (f *FileStore) Path() string { return f.path }

// Save writes the current settings to the file.
func (f *FileStore) Save() error {
	data, err := yaml.Marshal(f.Settings())
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", f.path, err)
	}
	return nil
}

var (
	_ Provider = (*Memory)(nil)
	_ Provider = (*FileStore)(nil)
	_ Saver    = (*FileStore)(nil)
)
