// Package registry keeps the list of projects and persists it to the string
// store. There is no locking across processes; the last writer wins.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// StorageKey is the string-store key of the persisted registry
	StorageKey = "project-storage"
	// StateVersion is the version written with the persisted state
	StateVersion = 0

	idLength = 8
)

var (
	// ErrProjectNotFound is returned for unknown project ids
	ErrProjectNotFound = errors.New("project not found")
	// ErrDuplicateProject is returned when an explicit id is already taken
	ErrDuplicateProject = errors.New("project already exists")
)

// Project is the metadata of one schema-building project
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FormType string `json:"formType"`
}

// ProjectInput is the payload of Add; ID is generated when empty
type ProjectInput struct {
	ID       string
	Name     string
	FormType string
}

// Backend is the string store the registry persists to
type Backend interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

type persistedState struct {
	State   state `json:"state"`
	Version int   `json:"version"`
}

type state struct {
	Projects []Project `json:"projects"`
}

// Registry is the in-memory project list backed by a string store
type Registry struct {
	backend  Backend
	mu       sync.RWMutex
	projects []Project
}

// New loads the registry from backend. A missing or empty entry starts an
// empty registry; an entry that is not valid JSON is an error.
func New(backend Backend) (*Registry, error) {
	if backend == nil {
		return nil, errors.New("registry backend cannot be nil")
	}
	r := &Registry{backend: backend}

	raw, ok, err := backend.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read project registry: %w", err)
	}
	if !ok || raw == "" {
		return r, nil
	}

	var persisted persistedState
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		return nil, fmt.Errorf("corrupted project registry: %w", err)
	}
	r.projects = migrate(persisted.State, persisted.Version).Projects
	return r, nil
}

// migrate upgrades persisted state written by older versions. No shape
// change has happened yet.
func migrate(s state, _ int) state {
	return s
}

// List returns a copy of every project in insertion order
func (r *Registry) List() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Project(nil), r.projects...)
}

// Get returns the project with the given id
func (r *Registry) Get(id string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.projects[i], nil
	}
	return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// Add registers a project and returns its id
func (r *Registry) Add(in ProjectInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", errors.New("project name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := in.ID
	if id == "" {
		id = r.newID()
	} else if r.index(id) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateProject, id)
	}

	next := append(append([]Project(nil), r.projects...), Project{ID: id, Name: name, FormType: in.FormType})
	if err := r.commit(next); err != nil {
		return "", err
	}
	return id, nil
}

// Rename changes a project's display name
func (r *Registry) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	next := append([]Project(nil), r.projects...)
	next[i].Name = name
	return r.commit(next)
}

// Delete removes a project from the registry
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	next := append(append([]Project(nil), r.projects[:i]...), r.projects[i+1:]...)
	return r.commit(next)
}

// ReplaceAll swaps the whole project list
func (r *Registry) ReplaceAll(projects []Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commit(append([]Project(nil), projects...))
}

func (r *Registry) index(id string) int {
	for i, p := range r.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) newID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
		if r.index(id) < 0 {
			return id
		}
	}
}

// commit persists next and only then makes it current
func (r *Registry) commit(next []Project) error {
	if next == nil {
		next = []Project{}
	}
	data, err := json.Marshal(persistedState{State: state{Projects: next}, Version: StateVersion})
	if err != nil {
		return fmt.Errorf("failed to encode project registry: %w", err)
	}
	if err := r.backend.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist project registry: %w", err)
	}
	r.projects = next
	return nil
}
