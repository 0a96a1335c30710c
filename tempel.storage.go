package tempel

import (
	"cmp"
	"context"
	"crypto/rand"
	"encoding/base64"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TemplateID identifies one saved version of a template, e.g. "tmpl_6ByTSYmGzT2c".
type TemplateID string

// StoredTemplate is one saved version of a named template together with the
// structure its source compiled to.
type StoredTemplate struct {
	ID      TemplateID `json:"id"`
	Name    string     `json:"name"`
	Source  string     `json:"source"`
	Version int        `json:"version"`

	// Variables lists the placeholder names of the source in order of
	// first appearance. Loop item names are included.
	Variables []string `json:"variables,omitempty"`

	// Loops lists the loop blocks of the source in document order.
	Loops []Loop `json:"loops,omitempty"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	CreatedBy string            `json:"created_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UsesVariable reports whether the source contains a placeholder for name.
func (t *StoredTemplate) UsesVariable(name string) bool {
	return slices.Contains(t.Variables, name)
}

// IteratesList reports whether the source contains a loop over the list binding name.
func (t *StoredTemplate) IteratesList(name string) bool {
	return slices.ContainsFunc(t.Loops, func(l Loop) bool { return l.List == name })
}

func (t *StoredTemplate) clone() *StoredTemplate {
	if t == nil {
		return nil
	}
	out := *t
	out.Variables = slices.Clone(t.Variables)
	out.Loops = slices.Clone(t.Loops)
	out.Metadata = maps.Clone(t.Metadata)
	out.Tags = slices.Clone(t.Tags)
	return &out
}

// stamp returns the copy a backend persists for tmpl as version and reports
// the assigned identity back to the caller's value.
func stamp(tmpl *StoredTemplate, version int, now time.Time) *StoredTemplate {
	tmpl.ID = generateTemplateID()
	tmpl.Version = version
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	return tmpl.clone()
}

// TemplateQuery selects stored templates. Zero fields do not filter.
type TemplateQuery struct {
	NamePrefix string
	Tags       []string // all must be present
	CreatedBy  string

	// Variable keeps templates with a placeholder of this name.
	Variable string

	// List keeps templates that loop over the list binding of this name.
	List string

	Limit  int
	Offset int

	// IncludeAllVersions matches every version instead of only the newest.
	IncludeAllVersions bool
}

func (q *TemplateQuery) matches(t *StoredTemplate) bool {
	switch {
	case !strings.HasPrefix(t.Name, q.NamePrefix):
		return false
	case q.CreatedBy != "" && q.CreatedBy != t.CreatedBy:
		return false
	case q.Variable != "" && !t.UsesVariable(q.Variable):
		return false
	case q.List != "" && !t.IteratesList(q.List):
		return false
	}
	return !slices.ContainsFunc(q.Tags, func(tag string) bool {
		return !slices.Contains(t.Tags, tag)
	})
}

// collect filters a candidate set, orders it by name then newest version and
// applies the page window.
func (q *TemplateQuery) collect(candidates []*StoredTemplate) []*StoredTemplate {
	kept := slices.DeleteFunc(candidates, func(t *StoredTemplate) bool { return !q.matches(t) })
	slices.SortFunc(kept, func(a, b *StoredTemplate) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(b.Version, a.Version)
	})

	start := min(q.Offset, len(kept))
	end := len(kept)
	if q.Limit > 0 {
		end = min(start+q.Limit, end)
	}
	return slices.Clip(kept[start:end])
}

func queryOrDefault(q *TemplateQuery) *TemplateQuery {
	if q == nil {
		return &TemplateQuery{}
	}
	return q
}

// TemplateStorage persists versioned templates. Implementations must be safe
// for concurrent use.
type TemplateStorage interface {
	// Get returns the newest version of name, or an error wrapping
	// ErrTemplateNotFound.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error)

	// Save appends tmpl as the next version of its name and fills in ID,
	// Version, CreatedAt and UpdatedAt.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete drops every version of name.
	Delete(ctx context.Context, name string) error

	// List returns the templates selected by query ordered by name, newest
	// version first. A nil query selects the newest version of everything.
	List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error)

	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns the saved version numbers of name, newest first.
	ListVersions(ctx context.Context, name string) ([]int, error)

	Close() error
}

// StorageDriver opens a TemplateStorage from a connection string.
type StorageDriver interface {
	Open(connectionString string) (TemplateStorage, error)
}

type driverRegistry struct {
	mu      sync.RWMutex
	drivers map[string]StorageDriver
}

var storageDrivers = &driverRegistry{drivers: map[string]StorageDriver{}}

// RegisterStorageDriver makes a driver available to OpenStorage under name.
// It panics on a nil driver or a duplicate name.
func RegisterStorageDriver(name string, driver StorageDriver) {
	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}

	storageDrivers.mu.Lock()
	defer storageDrivers.mu.Unlock()
	if _, taken := storageDrivers.drivers[name]; taken {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers.drivers[name] = driver
}

// OpenStorage opens storage through a registered driver.
//
//	storage, err := tempel.OpenStorage("filesystem", "/var/lib/tempel")
func OpenStorage(driverName, connectionString string) (TemplateStorage, error) {
	storageDrivers.mu.RLock()
	driver := storageDrivers.drivers[driverName]
	storageDrivers.mu.RUnlock()

	if driver == nil {
		return nil, NewStorageDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the registered driver names in sorted order.
func ListStorageDrivers() []string {
	storageDrivers.mu.RLock()
	defer storageDrivers.mu.RUnlock()
	return slices.Sorted(maps.Keys(storageDrivers.drivers))
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgVersionNotFound         = "template version not found"
	ErrMsgInvalidTemplateName     = "invalid template name"
	ErrMsgPathTraversalDetected   = "path traversal detected in template name"
	ErrMsgNilStorage              = "storage is nil"
	ErrMsgInvalidTemplateSource   = "template source failed to compile"
)

// StorageError is returned by storage backends and the driver registry.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

func (e *StorageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Name != "" {
		b.WriteString(": ")
		b.WriteString(e.Name)
		if e.Version > 0 {
			b.WriteString(" v")
			b.WriteString(strconv.Itoa(e.Version))
		}
	}
	return b.String()
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageDriverNotFoundError reports an unregistered driver name.
func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgStorageDriverNotFound, Name: name}
}

// NewStorageVersionNotFoundError reports a missing version. It matches
// ErrTemplateNotFound under errors.Is.
func NewStorageVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgVersionNotFound, Name: name, Version: version, Cause: ErrTemplateNotFound}
}

// NewStorageClosedError reports use of a closed backend.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed}
}

func generateTemplateID() TemplateID {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return TemplateID(TemplateIDPrefix + base64.RawURLEncoding.EncodeToString(b[:]))
}
