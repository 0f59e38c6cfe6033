// Package storage keeps project artifacts on disk: a versioned key-value
// database for PDF bytes and schemas, and a string store used as fallback.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	// DatabaseName is the directory holding the primary database
	DatabaseName = "pdf-schema-builder"

	// StorePDFs holds raw PDF bytes keyed by project id
	StorePDFs = "pdfs"
	// StoreSchemas holds schema JSON keyed by project id
	StoreSchemas = "schemas"

	versionFile = "version"
	filePerm    = 0o640
	dirPerm     = 0o750
)

var (
	// ErrNotFound is returned when a key has no record
	ErrNotFound = errors.New("record not found")
	// ErrStoreNotFound is returned when a named store was never created
	ErrStoreNotFound = errors.New("store not found")
)

// KV is a single named store of the database
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Migration upgrades the database to Version. Apply must be idempotent.
type Migration struct {
	Version int
	Apply   func(db *Database) error
}

// EnsureStore returns a migration step creating the named store
func EnsureStore(name string) func(db *Database) error {
	return func(db *Database) error {
		return db.fs.MkdirAll(db.storeDir(name), dirPerm)
	}
}

// DefaultMigrations is the migration table of the primary database. The
// schema store arrived in version 2.
func DefaultMigrations() []Migration {
	return []Migration{
		{Version: 1, Apply: EnsureStore(StorePDFs)},
		{Version: 2, Apply: EnsureStore(StoreSchemas)},
	}
}

// Database is a versioned set of named stores on an afero filesystem
type Database struct {
	fs      afero.Fs
	root    string
	version int
	mu      sync.RWMutex
}

// Open opens or creates the database under dir/name and runs every pending
// migration in version order.
func Open(fs afero.Fs, dir, name string, migrations []Migration) (*Database, error) {
	if fs == nil {
		return nil, errors.New("filesystem cannot be nil")
	}
	if name == "" {
		return nil, errors.New("database name cannot be empty")
	}

	db := &Database{fs: fs, root: path.Join(dir, name)}
	if err := fs.MkdirAll(db.root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	current, err := db.readVersion()
	if err != nil {
		return nil, err
	}

	steps := append([]Migration(nil), migrations...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })

	for _, m := range steps {
		if m.Version <= current {
			continue
		}
		if err := m.Apply(db); err != nil {
			return nil, fmt.Errorf("migration to version %d failed: %w", m.Version, err)
		}
		if err := db.writeVersion(m.Version); err != nil {
			return nil, err
		}
		current = m.Version
	}

	db.version = current
	return db, nil
}

// Version returns the schema version the database was migrated to
func (db *Database) Version() int {
	return db.version
}

// Store returns the named store
func (db *Database) Store(name string) (KV, error) {
	info, err := db.fs.Stat(db.storeDir(name))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, name)
	}
	return &fileStore{db: db, dir: db.storeDir(name)}, nil
}

func (db *Database) storeDir(name string) string {
	return path.Join(db.root, name)
}

func (db *Database) readVersion() (int, error) {
	data, err := afero.ReadFile(db.fs, path.Join(db.root, versionFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read database version: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupted database version %q: %w", data, err)
	}
	return v, nil
}

func (db *Database) writeVersion(v int) error {
	if err := writeFileAtomic(db.fs, path.Join(db.root, versionFile), []byte(strconv.Itoa(v))); err != nil {
		return fmt.Errorf("failed to write database version: %w", err)
	}
	return nil
}

// fileStore keeps one file per key
type fileStore struct {
	db  *Database
	dir string
}

func (s *fileStore) file(key string) string {
	return path.Join(s.dir, url.PathEscape(key))
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	data, err := afero.ReadFile(s.db.fs, s.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *fileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return errors.New("key cannot be empty")
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := writeFileAtomic(s.db.fs, s.file(key), value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	err := s.db.fs.Remove(s.file(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func writeFileAtomic(fs afero.Fs, name string, data []byte) error {
	tmp := name + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, filePerm); err != nil {
		return err
	}
	if err := fs.Rename(tmp, name); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
