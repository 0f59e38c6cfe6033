package registry

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-schema-builder/internal/storage"
)

type failingBackend struct{}

func (failingBackend) GetItem(string) (string, bool, error) { return "", false, nil }
func (failingBackend) SetItem(string, string) error         { return errors.New("quota") }

func newRegistry(t *testing.T) (*Registry, *storage.LocalStore) {
	t.Helper()
	local := storage.NewLocalStore(afero.NewMemMapFs(), "/data", 0)
	r, err := New(local)
	require.NoError(t, err)
	return r, local
}

func TestRegistryAdd(t *testing.T) {
	r, _ := newRegistry(t)

	id, err := r.Add(ProjectInput{Name: "Lease", FormType: "lease"})
	require.NoError(t, err)
	assert.Len(t, id, idLength)

	explicit, err := r.Add(ProjectInput{ID: "w9-2024", Name: "W-9", FormType: "w9"})
	require.NoError(t, err)
	assert.Equal(t, "w9-2024", explicit)

	_, err = r.Add(ProjectInput{ID: "w9-2024", Name: "again"})
	assert.True(t, errors.Is(err, ErrDuplicateProject))

	_, err = r.Add(ProjectInput{Name: "  "})
	assert.Error(t, err)

	projects := r.List()
	require.Len(t, projects, 2)
	assert.Equal(t, Project{ID: "w9-2024", Name: "W-9", FormType: "w9"}, projects[1])
}

func TestRegistryRenameDelete(t *testing.T) {
	r, _ := newRegistry(t)
	id, err := r.Add(ProjectInput{Name: "Lease", FormType: "lease"})
	require.NoError(t, err)

	require.NoError(t, r.Rename(id, "Residential lease"))
	p, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Residential lease", p.Name)

	assert.True(t, errors.Is(r.Rename("nope", "x"), ErrProjectNotFound))
	assert.Error(t, r.Rename(id, ""))

	require.NoError(t, r.Delete(id))
	assert.Empty(t, r.List())
	assert.True(t, errors.Is(r.Delete(id), ErrProjectNotFound))
	_, err = r.Get(id)
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestRegistryPersistsAcrossReopen(t *testing.T) {
	r, local := newRegistry(t)
	_, err := r.Add(ProjectInput{ID: "a", Name: "A", FormType: "fa"})
	require.NoError(t, err)
	require.NoError(t, r.ReplaceAll([]Project{{ID: "b", Name: "B", FormType: "fb"}, {ID: "c", Name: "C"}}))

	raw, ok, err := local.GetItem(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		`{"state":{"projects":[{"id":"b","name":"B","formType":"fb"},{"id":"c","name":"C","formType":""}]},"version":0}`,
		raw)

	reopened, err := New(local)
	require.NoError(t, err)
	assert.Equal(t, r.List(), reopened.List())
}

func TestRegistryFailedWriteKeepsState(t *testing.T) {
	r, err := New(failingBackend{})
	require.NoError(t, err)

	_, err = r.Add(ProjectInput{Name: "A"})
	assert.Error(t, err)
	assert.Empty(t, r.List())
}

func TestRegistryCorruptedState(t *testing.T) {
	local := storage.NewLocalStore(afero.NewMemMapFs(), "/data", 0)
	require.NoError(t, local.SetItem(StorageKey, "{not json"))

	_, err := New(local)
	assert.Error(t, err)
}
