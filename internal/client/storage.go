package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists a session between runs.
type Storage interface {
	Load() (SessionData, error)
	Save(SessionData) error
	Clear() error
}

type MemoryStorage struct {
	mu   sync.Mutex
	data SessionData
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Load() (SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *MemoryStorage) Save(data SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func (m *MemoryStorage) Clear() error {
	return m.Save(SessionData{})
}

// FileStorage keeps the session as JSON in a single user-private file.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage { return &FileStorage{Path: path} }

func (f *FileStorage) Load() (SessionData, error) {
	var data SessionData
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("read session %s: %w", f.Path, err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return SessionData{}, fmt.Errorf("decode session %s: %w", f.Path, err)
	}
	return data, nil
}

func (f *FileStorage) Save(data SessionData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

func (f *FileStorage) Clear() error {
	data, err := f.Load()
	if err != nil {
		data = SessionData{}
	}
	// the language preference outlives a sign-out
	return f.Save(SessionData{Lang: data.Lang})
}
