package tempel

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage keeps template history in process memory. Every value handed
// in or out is a copy.
type MemoryStorage struct {
	mu      sync.RWMutex
	history map[string][]*StoredTemplate // oldest version first
	closed  bool
}

// MemoryStorageDriver opens a fresh MemoryStorage and ignores the connection string.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

func (d *MemoryStorageDriver) Open(string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{history: map[string][]*StoredTemplate{}}
}

// read runs fn under the shared lock once ctx and the closed flag allow it.
func (s *MemoryStorage) read(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return NewStorageClosedError()
	}
	return fn()
}

func (s *MemoryStorage) write(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageClosedError()
	}
	return fn()
}

func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	var found *StoredTemplate
	err := s.read(ctx, func() error {
		h := s.history[name]
		if len(h) == 0 {
			return NewTemplateNotFoundError(name)
		}
		found = h[len(h)-1].clone()
		return nil
	})
	return found, err
}

func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	var found *StoredTemplate
	err := s.read(ctx, func() error {
		// Versions are dense from 1 while a name exists.
		h := s.history[name]
		if version < 1 || version > len(h) {
			return NewStorageVersionNotFoundError(name, version)
		}
		found = h[version-1].clone()
		return nil
	})
	return found, err
}

func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if tmpl.Name == "" {
		return &StorageError{Message: ErrMsgInvalidTemplateName}
	}
	return s.write(ctx, func() error {
		h := s.history[tmpl.Name]
		s.history[tmpl.Name] = append(h, stamp(tmpl, len(h)+1, time.Now()))
		return nil
	})
}

func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	return s.write(ctx, func() error {
		if _, ok := s.history[name]; !ok {
			return NewTemplateNotFoundError(name)
		}
		delete(s.history, name)
		return nil
	})
}

func (s *MemoryStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	query = queryOrDefault(query)
	var results []*StoredTemplate
	err := s.read(ctx, func() error {
		var candidates []*StoredTemplate
		for _, h := range s.history {
			if !query.IncludeAllVersions {
				h = h[len(h)-1:]
			}
			candidates = append(candidates, h...)
		}
		for _, t := range query.collect(candidates) {
			results = append(results, t.clone())
		}
		return nil
	})
	return results, err
}

func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.read(ctx, func() error {
		exists = len(s.history[name]) > 0
		return nil
	})
	return exists, err
}

func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	var versions []int
	err := s.read(ctx, func() error {
		versions = make([]int, 0, len(s.history[name]))
		for _, t := range slices.Backward(s.history[name]) {
			versions = append(versions, t.Version)
		}
		return nil
	})
	return versions, err
}

// Close drops all templates. Later calls fail with a closed-storage error.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.history = nil
	return nil
}

var _ TemplateStorage = (*MemoryStorage)(nil)
