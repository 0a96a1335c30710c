package tempel

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// FilesystemStorage writes each template version to its own JSON document
// under root:
//
//	<root>/<name>/v1.json
//	<root>/<name>/v2.json
//
// Documents are written to a temporary file and renamed into place, so a
// reader never sees a partial version.
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStorageDriver opens a FilesystemStorage rooted at the connection string.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

func (d *FilesystemStorageDriver) Open(root string) (TemplateStorage, error) {
	return NewFilesystemStorage(root)
}

// NewFilesystemStorage creates root if needed and returns storage over it.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, Name: root, Cause: err}
	}
	return &FilesystemStorage{root: root}, nil
}

// access checks ctx and the closed flag and runs fn under the read or write lock.
func (s *FilesystemStorage) access(ctx context.Context, exclusive bool, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if exclusive {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	if s.closed {
		return NewStorageClosedError()
	}
	return fn()
}

// accessNamed is access for operations on a single template directory.
func (s *FilesystemStorage) accessNamed(ctx context.Context, name string, exclusive bool, fn func() error) error {
	if err := checkFilesystemName(name); err != nil {
		return err
	}
	return s.access(ctx, exclusive, fn)
}

func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	var found *StoredTemplate
	err := s.accessNamed(ctx, name, false, func() error {
		versions, err := s.versions(name)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return NewTemplateNotFoundError(name)
		}
		found, err = s.readVersion(name, versions[0])
		return err
	})
	return found, err
}

func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	var found *StoredTemplate
	err := s.accessNamed(ctx, name, false, func() (err error) {
		found, err = s.readVersion(name, version)
		return err
	})
	return found, err
}

func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	return s.accessNamed(ctx, tmpl.Name, true, func() error {
		dir := filepath.Join(s.root, tmpl.Name)
		if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
			return &StorageError{Message: ErrMsgCreateStorageDir, Name: dir, Cause: err}
		}

		versions, err := s.versions(tmpl.Name)
		if err != nil {
			return err
		}
		next := 1
		if len(versions) > 0 {
			next = versions[0] + 1
		}

		// Identity is assigned only after the document is on disk.
		pending := tmpl.clone()
		doc := stamp(pending, next, time.Now())
		if err := s.writeVersion(doc); err != nil {
			return err
		}
		tmpl.ID, tmpl.Version = pending.ID, pending.Version
		tmpl.CreatedAt, tmpl.UpdatedAt = pending.CreatedAt, pending.UpdatedAt
		return nil
	})
}

func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	return s.accessNamed(ctx, name, true, func() error {
		dir := filepath.Join(s.root, name)
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			return NewTemplateNotFoundError(name)
		}
		if err := os.RemoveAll(dir); err != nil {
			return &StorageError{Message: ErrMsgDeleteTemplate, Name: name, Cause: err}
		}
		return nil
	})
}

// List reads every matching document. Directories whose documents cannot be
// read are skipped.
func (s *FilesystemStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	query = queryOrDefault(query)
	var results []*StoredTemplate
	err := s.access(ctx, false, func() error {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			return &StorageError{Message: ErrMsgReadStorageDir, Cause: err}
		}

		var candidates []*StoredTemplate
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			versions, err := s.versions(entry.Name())
			if err != nil || len(versions) == 0 {
				continue
			}
			if !query.IncludeAllVersions {
				versions = versions[:1]
			}
			for _, v := range versions {
				if doc, err := s.readVersion(entry.Name(), v); err == nil {
					candidates = append(candidates, doc)
				}
			}
		}
		results = query.collect(candidates)
		return nil
	})
	return results, err
}

func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.accessNamed(ctx, name, false, func() error {
		versions, err := s.versions(name)
		exists = len(versions) > 0
		return err
	})
	return exists, err
}

func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	var versions []int
	err := s.accessNamed(ctx, name, false, func() (err error) {
		versions, err = s.versions(name)
		return err
	})
	return versions, err
}

func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// versions returns the version numbers present for name, newest first. Files
// that are not version documents are ignored.
func (s *FilesystemStorage) versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: name, Cause: err}
	}

	versions := []int{}
	for _, entry := range entries {
		if v, ok := parseVersionFile(entry); ok {
			versions = append(versions, v)
		}
	}
	slices.Sort(versions)
	slices.Reverse(versions)
	return versions, nil
}

func parseVersionFile(entry fs.DirEntry) (int, bool) {
	if !entry.Type().IsRegular() {
		return 0, false
	}
	rest, ok := strings.CutPrefix(entry.Name(), FilesystemVersionPrefix)
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, FilesystemVersionSuffix)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	return v, err == nil && v > 0
}

func (s *FilesystemStorage) path(name string, version int) string {
	return filepath.Join(s.root, name, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionSuffix)
}

func (s *FilesystemStorage) readVersion(name string, version int) (*StoredTemplate, error) {
	path := s.path(name, version)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewStorageVersionNotFoundError(name, version)
	}
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadTemplate, Name: path, Cause: err}
	}

	doc := &StoredTemplate{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &StorageError{Message: ErrMsgUnmarshalTemplate, Name: path, Cause: err}
	}
	return doc, nil
}

func (s *FilesystemStorage) writeVersion(doc *StoredTemplate) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalTemplate, Name: doc.Name, Cause: err}
	}

	dst := s.path(doc.Name, doc.Version)
	tmp, err := os.CreateTemp(filepath.Dir(dst), FilesystemTempPattern)
	if err != nil {
		return &StorageError{Message: ErrMsgWriteTemplate, Name: dst, Cause: err}
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), FilesystemFilePermissions)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		return &StorageError{Message: ErrMsgWriteTemplate, Name: dst, Cause: err}
	}
	return nil
}

var _ TemplateStorage = (*FilesystemStorage)(nil)

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot = "invalid storage root path"
	ErrMsgCreateStorageDir   = "failed to create storage directory"
	ErrMsgReadStorageDir     = "failed to read storage directory"
	ErrMsgMarshalTemplate    = "failed to marshal template"
	ErrMsgUnmarshalTemplate  = "failed to unmarshal template"
	ErrMsgWriteTemplate      = "failed to write template file"
	ErrMsgReadTemplate       = "failed to read template file"
	ErrMsgDeleteTemplate     = "failed to delete template"
)

// checkFilesystemName rejects names that are not a single path element
// inside root.
func checkFilesystemName(name string) error {
	switch {
	case name == "":
		return &StorageError{Message: ErrMsgInvalidTemplateName}
	case strings.Contains(name, ".."):
		return &StorageError{Message: ErrMsgPathTraversalDetected, Name: name}
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return &StorageError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	return nil
}
