package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/biomimic/pkg/analysis"
	"github.com/chazu/biomimic/pkg/design"
	"github.com/chazu/biomimic/pkg/params"
)

func newDesign(seed int64, created time.Time) *design.Design {
	p := params.Default()
	p.Seed = seed
	d := design.New(params.Spiral, p, analysis.Properties{
		Porosity:     0.4,
		Applications: []string{"Antennas"},
	})
	d.CreatedAt = created
	return d
}

func stores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "designs", "store.json"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreContract(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			list, err := s.List()
			require.NoError(t, err)
			assert.Empty(t, list)

			old := newDesign(1, base)
			mid := newDesign(2, base.Add(time.Minute))
			recent := newDesign(3, base.Add(time.Hour))
			for _, d := range []*design.Design{mid, recent, old} {
				require.NoError(t, s.Save(d))
			}

			list, err = s.List()
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].Seed, list[1].Seed, list[2].Seed})

			got, err := s.Get(mid.ID)
			require.NoError(t, err)
			assert.Equal(t, mid.ID, got.ID)
			assert.Equal(t, mid.Parameters, got.Parameters)
			assert.True(t, mid.CreatedAt.Equal(got.CreatedAt))

			// Returned designs are copies.
			got.Properties.Applications[0] = "changed"
			again, err := s.Get(mid.ID)
			require.NoError(t, err)
			assert.Equal(t, "Antennas", again.Properties.Applications[0])

			// Saving an existing ID replaces it.
			mid.Properties.Porosity = 0.9
			require.NoError(t, s.Save(mid))
			list, err = s.List()
			require.NoError(t, err)
			assert.Len(t, list, 3)
			got, err = s.Get(mid.ID)
			require.NoError(t, err)
			assert.Equal(t, 0.9, got.Properties.Porosity)

			require.NoError(t, s.Delete(old.ID))
			_, err = s.Get(old.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(old.ID), ErrNotFound)

			require.NoError(t, s.DeleteAll())
			list, err = s.List()
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			d := newDesign(1, time.Now())
			d.ID = uuid.Nil
			assert.Error(t, s.Save(d))

			d = newDesign(1, time.Now())
			d.Parameters.Complexity = 4
			assert.ErrorIs(t, s.Save(d), params.ErrOutOfRange)
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	a := newDesign(10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := newDesign(20, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(a))
	require.NoError(t, s.Save(b))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	list, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	// A reloaded design regenerates the same mesh as the original.
	want, err := a.RegenerateMesh()
	require.NoError(t, err)
	got, err := list[1].RegenerateMesh()
	require.NoError(t, err)
	assert.Equal(t, want.Vertices, got.Vertices)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"designs":[]}`), 0o644))
	_, err = NewFileStore(path)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestResolve(t *testing.T) {
	s := NewMemoryStore()
	a := newDesign(1, time.Now())
	a.ID = uuid.MustParse("aaaa1111-0000-4000-8000-000000000001")
	b := newDesign(2, time.Now())
	b.ID = uuid.MustParse("aaaa2222-0000-4000-8000-000000000002")
	require.NoError(t, s.Save(a))
	require.NoError(t, s.Save(b))

	got, err := Resolve(s, a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = Resolve(s, "AAAA2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = Resolve(s, "aaaa")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = Resolve(s, "ffff")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Resolve(s, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
