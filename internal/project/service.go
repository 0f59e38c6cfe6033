package project

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/a3tai/pdf-schema-builder/internal/registry"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
)

// Service manages the project list and the pages opened from it
type Service struct {
	registry *registry.Registry
	deps     Deps

	mu    sync.Mutex
	pages map[string]*Page
}

// NewService creates a project service. The registry is kept in the
// persistence layer's local store.
func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("project service requires storage")
	}
	reg, err := registry.New(deps.Store.Local())
	if err != nil {
		return nil, fmt.Errorf("failed to load project registry: %w", err)
	}
	return &Service{registry: reg, deps: deps, pages: make(map[string]*Page)}, nil
}

// Create adds a project and returns its metadata
func (s *Service) Create(name, formType string) (registry.Project, error) {
	formType = strings.TrimSpace(formType)
	if formType == "" {
		formType = strings.TrimSpace(name)
	}
	id, err := s.registry.Add(registry.ProjectInput{Name: name, FormType: formType})
	if err != nil {
		return registry.Project{}, err
	}
	log.Printf("created project %s (%s)", id, formType)
	return s.registry.Get(id)
}

// List returns every project in creation order
func (s *Service) List() []registry.Project {
	return s.registry.List()
}

// Get returns one project's metadata
func (s *Service) Get(id string) (registry.Project, error) {
	return s.registry.Get(id)
}

// Rename changes a project's display name
func (s *Service) Rename(id, name string) error {
	if err := s.registry.Rename(id, name); err != nil {
		return err
	}
	s.mu.Lock()
	page := s.pages[id]
	s.mu.Unlock()
	if page != nil {
		p, err := s.registry.Get(id)
		if err == nil {
			page.rename(p.Name)
		}
	}
	return nil
}

// Delete removes the project with its stored PDF and schema. Storage
// cleanup failures are logged; the project is removed regardless.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.registry.Delete(id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pages, id)
	s.mu.Unlock()

	if err := s.deps.Store.DeletePDF(ctx, id); err != nil {
		log.Printf("failed to delete pdf for %s: %v", id, err)
	}
	if err := s.deps.Store.DeleteSchema(ctx, id); err != nil && !errors.Is(err, storage.ErrStoreNotFound) {
		log.Printf("failed to delete schema for %s: %v", id, err)
	}
	return nil
}

// Open returns the page of a project, loading it on first use
func (s *Service) Open(ctx context.Context, id string) (*Page, error) {
	p, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if page, ok := s.pages[id]; ok {
		return page, nil
	}
	page := NewPage(p, s.deps)
	if err := page.Load(ctx); err != nil {
		return nil, err
	}
	s.pages[id] = page
	return page, nil
}
