package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/biomimic/pkg/design"
)

const fileVersion = 1

type fileData struct {
	Version int              `json:"version"`
	Designs []*design.Design `json:"designs"`
}

// FileStore keeps designs in a single JSON file. Every mutation rewrites
// the file through a temporary sibling and a rename. It is safe for
// concurrent use within one process.
type FileStore struct {
	path string

	mu      sync.RWMutex
	designs []*design.Design // most recent first
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens the store at path, loading it if the file exists.
// The parent directory is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	var data fileData
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("decode store %s: %w", s.path, err)
	}
	if data.Version > fileVersion {
		return fmt.Errorf("store %s: unsupported version %d", s.path, data.Version)
	}
	for _, d := range data.Designs {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("store %s: %w", s.path, err)
		}
	}
	sortRecent(data.Designs)
	s.designs = data.Designs
	return nil
}

// flush writes designs to disk. Callers hold s.mu.
func (s *FileStore) flush(designs []*design.Design) error {
	if designs == nil {
		designs = []*design.Design{}
	}
	b, err := json.MarshalIndent(fileData{Version: fileVersion, Designs: designs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	s.designs = designs
	return nil
}

func (s *FileStore) Save(d *design.Design) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := lo.Reject(s.designs, func(x *design.Design, _ int) bool { return x.ID == d.ID })
	next = append(next, clone(d))
	sortRecent(next)
	return s.flush(next)
}

func (s *FileStore) List() ([]*design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.designs, func(d *design.Design, _ int) *design.Design {
		return clone(d)
	}), nil
}

func (s *FileStore) Get(id uuid.UUID) (*design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := lo.Find(s.designs, func(d *design.Design) bool { return d.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(d), nil
}

func (s *FileStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := lo.Reject(s.designs, func(x *design.Design, _ int) bool { return x.ID == id })
	if len(next) == len(s.designs) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.flush(next)
}

func (s *FileStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(nil)
}
