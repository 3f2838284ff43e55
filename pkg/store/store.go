// Package store persists designs. Only the design records are stored;
// meshes are regenerated from them on demand.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/biomimic/pkg/design"
)

var (
	ErrNotFound  = errors.New("design not found")
	ErrAmbiguous = errors.New("ambiguous design reference")
)

// Store provides persistent storage for designs. Implementations return
// copies, so callers may modify what they get back.
type Store interface {
	Save(d *design.Design) error
	// List returns every design, most recently created first.
	List() ([]*design.Design, error)
	Get(id uuid.UUID) (*design.Design, error)
	Delete(id uuid.UUID) error
	DeleteAll() error
}

func clone(d *design.Design) *design.Design {
	c := *d
	c.Properties.Applications = slices.Clone(d.Properties.Applications)
	return &c
}

// sortRecent orders designs newest first; ties fall back to the ID so the
// order is stable across loads.
func sortRecent(ds []*design.Design) {
	slices.SortFunc(ds, func(a, b *design.Design) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// Resolve finds a design by full ID or by a unique ID prefix.
func Resolve(s Store, ref string) (*design.Design, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		return s.Get(id)
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	matches := lo.Filter(all, func(d *design.Design, _ int) bool {
		return strings.HasPrefix(d.ID.String(), ref)
	})
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matches %d designs", ErrAmbiguous, ref, len(matches))
	}
}
