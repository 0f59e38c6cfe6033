package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// Tier names the store a PDF ended up in
type Tier string

const (
	TierIndexed Tier = "idb"
	TierLocal   Tier = "localStorage"
)

// PDFFallbackKey is the string-store key of a project's base64 PDF
func PDFFallbackKey(projectID string) string {
	return "pdf:" + projectID
}

// Persistence stores project PDFs and schemas. The primary database may be
// nil when it could not be opened; PDFs then go to the string store only.
type Persistence struct {
	db    *Database
	local *LocalStore
}

// NewPersistence wires the primary database and the fallback string store
func NewPersistence(db *Database, local *LocalStore) *Persistence {
	return &Persistence{db: db, local: local}
}

// OpenPersistence opens the primary database under dataDir and the string
// store next to it. A primary that fails to open is logged and left out.
func OpenPersistence(fs afero.Fs, dataDir string, localQuota int) *Persistence {
	db, err := Open(fs, dataDir, DatabaseName, DefaultMigrations())
	if err != nil {
		log.Printf("primary storage unavailable, using fallback only: %v", err)
		db = nil
	}
	return NewPersistence(db, NewLocalStore(fs, dataDir, localQuota))
}

// Local exposes the string store for other small records
func (p *Persistence) Local() *LocalStore {
	return p.local
}

func (p *Persistence) store(name string) (KV, error) {
	if p.db == nil {
		return nil, fmt.Errorf("%w: primary database not open", ErrStoreNotFound)
	}
	return p.db.Store(name)
}

// PersistPDF stores the PDF bytes, preferring the primary store and falling
// back to base64 text in the string store.
func (p *Persistence) PersistPDF(ctx context.Context, projectID string, data []byte) (Tier, error) {
	if projectID == "" {
		return "", errors.New("project id cannot be empty")
	}

	primaryErr := p.putPrimary(ctx, StorePDFs, projectID, data)
	if primaryErr == nil {
		// drop any older fallback copy
		if err := p.local.RemoveItem(PDFFallbackKey(projectID)); err != nil {
			log.Printf("failed to clear fallback pdf for %s: %v", projectID, err)
		}
		return TierIndexed, nil
	}
	log.Printf("primary pdf store failed for %s, falling back: %v", projectID, primaryErr)

	if err := p.local.SetItem(PDFFallbackKey(projectID), base64.StdEncoding.EncodeToString(data)); err != nil {
		return "", fmt.Errorf("failed to persist pdf: primary: %v; fallback: %w", primaryErr, err)
	}
	return TierLocal, nil
}

// TryLoadPDF returns the stored PDF or nil. Errors are logged and treated as
// not found.
func (p *Persistence) TryLoadPDF(ctx context.Context, projectID string) []byte {
	if kv, err := p.store(StorePDFs); err == nil {
		data, err := kv.Get(ctx, projectID)
		if err == nil {
			return data
		}
		if !errors.Is(err, ErrNotFound) {
			log.Printf("failed to load pdf for %s from primary store: %v", projectID, err)
		}
	}

	encoded, ok, err := p.local.GetItem(PDFFallbackKey(projectID))
	if err != nil {
		log.Printf("failed to load pdf for %s from fallback store: %v", projectID, err)
		return nil
	}
	if !ok {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Printf("corrupted fallback pdf for %s: %v", projectID, err)
		return nil
	}
	return data
}

// DeletePDF removes the PDF from both tiers
func (p *Persistence) DeletePDF(ctx context.Context, projectID string) error {
	var err error
	if kv, storeErr := p.store(StorePDFs); storeErr == nil {
		err = multierr.Append(err, kv.Delete(ctx, projectID))
	}
	return multierr.Append(err, p.local.RemoveItem(PDFFallbackKey(projectID)))
}

// SaveSchema writes the whole schema for the project
func (p *Persistence) SaveSchema(ctx context.Context, projectID string, s schema.Schema) error {
	if s == nil {
		s = schema.Schema{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return p.putPrimary(ctx, StoreSchemas, projectID, data)
}

// LoadSchema returns the stored schema. Missing or unreadable schemas report
// false; read errors are logged.
func (p *Persistence) LoadSchema(ctx context.Context, projectID string) (schema.Schema, bool) {
	kv, err := p.store(StoreSchemas)
	if err != nil {
		return nil, false
	}
	data, err := kv.Get(ctx, projectID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("failed to load schema for %s: %v", projectID, err)
		}
		return nil, false
	}
	var s schema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("corrupted schema for %s: %v", projectID, err)
		return nil, false
	}
	return s, true
}

// DeleteSchema removes the project's schema
func (p *Persistence) DeleteSchema(ctx context.Context, projectID string) error {
	kv, err := p.store(StoreSchemas)
	if err != nil {
		return err
	}
	return kv.Delete(ctx, projectID)
}

func (p *Persistence) putPrimary(ctx context.Context, store, key string, data []byte) error {
	kv, err := p.store(store)
	if err != nil {
		return err
	}
	return kv.Put(ctx, key, data)
}
