package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"
)

// LocalFileName is the file backing the string store
const LocalFileName = "local_storage.json"

// ErrQuotaExceeded is returned when a write would grow the store past its quota
var ErrQuotaExceeded = errors.New("local storage quota exceeded")

// LocalStore is a small string-keyed store persisted as one JSON document.
// Every write rewrites the whole document.
type LocalStore struct {
	fs    afero.Fs
	file  string
	quota int

	mu     sync.Mutex
	items  map[string]string
	loaded bool
}

// NewLocalStore creates a string store under dir. A quota of zero means
// unlimited; otherwise keys plus values may not exceed quota bytes.
func NewLocalStore(fs afero.Fs, dir string, quota int) *LocalStore {
	return &LocalStore{
		fs:    fs,
		file:  path.Join(dir, LocalFileName),
		quota: quota,
	}
}

// GetItem returns the value stored under key
func (s *LocalStore) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.items[key]
	return v, ok, nil
}

// SetItem stores value under key
func (s *LocalStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	if s.quota > 0 {
		size := len(key) + len(value)
		for k, v := range s.items {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > s.quota {
			return fmt.Errorf("%w: %d bytes (quota %d)", ErrQuotaExceeded, size, s.quota)
		}
	}

	prev, had := s.items[key]
	s.items[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error
func (s *LocalStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	prev, had := s.items[key]
	if !had {
		return nil
	}
	delete(s.items, key)
	if err := s.flush(); err != nil {
		s.items[key] = prev
		return err
	}
	return nil
}

// Keys returns all stored keys
func (s *LocalStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *LocalStore) load() error {
	if s.loaded {
		return nil
	}
	s.items = make(map[string]string)

	data, err := afero.ReadFile(s.fs, s.file)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read local storage: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.items); err != nil {
			return fmt.Errorf("corrupted local storage: %w", err)
		}
	}
	s.loaded = true
	return nil
}

func (s *LocalStore) flush() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode local storage: %w", err)
	}
	if err := s.fs.MkdirAll(path.Dir(s.file), dirPerm); err != nil {
		return fmt.Errorf("failed to create local storage directory: %w", err)
	}
	if err := writeFileAtomic(s.fs, s.file, data); err != nil {
		return fmt.Errorf("failed to write local storage: %w", err)
	}
	return nil
}
