package tempel

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// StorageEngine renders templates held by a TemplateStorage backend.
// Compiled templates are cached per name and recompiled only when the ID of
// the latest stored version changes.
type StorageEngine struct {
	engine  *Engine
	storage TemplateStorage

	mu           sync.RWMutex
	cache        map[string]*compiledCacheEntry
	cacheEnabled bool
}

// compiledCacheEntry caches a compiled template with the stored version it
// came from. IDs are unique per saved version, so a name that was deleted and
// saved again never matches an older entry.
type compiledCacheEntry struct {
	template *Template
	id       TemplateID
}

// StorageEngineConfig configures the StorageEngine.
type StorageEngineConfig struct {
	// Storage is the template storage backend (required).
	Storage TemplateStorage

	// Engine compiles stored sources.
	// If nil, a new engine with default options is created.
	Engine *Engine

	// DisableCompiledTemplateCache makes every render recompile the source.
	DisableCompiledTemplateCache bool
}

// NewStorageEngine creates a new StorageEngine with the given configuration.
func NewStorageEngine(config StorageEngineConfig) (*StorageEngine, error) {
	if config.Storage == nil {
		return nil, &StorageError{Message: ErrMsgNilStorage}
	}

	engine := config.Engine
	if engine == nil {
		var err error
		engine, err = New()
		if err != nil {
			return nil, err
		}
	}

	return &StorageEngine{
		engine:       engine,
		storage:      config.Storage,
		cache:        make(map[string]*compiledCacheEntry),
		cacheEnabled: !config.DisableCompiledTemplateCache,
	}, nil
}

// MustNewStorageEngine creates a new StorageEngine, panicking on error.
func MustNewStorageEngine(config StorageEngineConfig) *StorageEngine {
	se, err := NewStorageEngine(config)
	if err != nil {
		panic(err)
	}
	return se
}

// Render renders the latest version of a stored template.
func (se *StorageEngine) Render(ctx context.Context, templateName string, bindings Bindings) (string, error) {
	tmpl, err := se.load(ctx, templateName)
	if err != nil {
		return "", err
	}
	return tmpl.Render(bindings)
}

// RenderVersion renders a specific version of a stored template.
// Older versions are compiled on demand and never cached.
func (se *StorageEngine) RenderVersion(ctx context.Context, templateName string, version int, bindings Bindings) (string, error) {
	stored, err := se.storage.GetVersion(ctx, templateName, version)
	if err != nil {
		return "", err
	}

	tmpl, err := se.engine.Compile(stored.Source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(bindings)
}

// Compile returns the compiled latest version of a stored template.
func (se *StorageEngine) Compile(ctx context.Context, templateName string) (*Template, error) {
	return se.load(ctx, templateName)
}

// Save compiles the source and, if it is valid, stores it as a new version
// with the compiled Variables and Loops filled in.
func (se *StorageEngine) Save(ctx context.Context, tmpl *StoredTemplate) error {
	compiled, err := se.engine.Compile(tmpl.Source)
	if err != nil {
		return &StorageError{
			Message: ErrMsgInvalidTemplateSource,
			Name:    tmpl.Name,
			Cause:   err,
		}
	}
	tmpl.Variables = compiled.Variables()
	tmpl.Loops = compiled.Loops()

	if err := se.storage.Save(ctx, tmpl); err != nil {
		return err
	}

	se.invalidate(tmpl.Name)
	se.engine.logger.Debug(LogMsgStorageSaved,
		zap.String(LogFieldTemplateName, tmpl.Name),
		zap.Int(LogFieldVersion, tmpl.Version))
	return nil
}

// Delete removes all versions of a template from storage.
func (se *StorageEngine) Delete(ctx context.Context, templateName string) error {
	if err := se.storage.Delete(ctx, templateName); err != nil {
		return err
	}

	se.invalidate(templateName)
	se.engine.logger.Debug(LogMsgStorageDeleted, zap.String(LogFieldTemplateName, templateName))
	return nil
}

// Get retrieves the latest version of a stored template.
func (se *StorageEngine) Get(ctx context.Context, templateName string) (*StoredTemplate, error) {
	return se.storage.Get(ctx, templateName)
}

// GetVersion retrieves a specific version of a stored template.
func (se *StorageEngine) GetVersion(ctx context.Context, templateName string, version int) (*StoredTemplate, error) {
	return se.storage.GetVersion(ctx, templateName, version)
}

// List returns stored templates matching the query.
func (se *StorageEngine) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	return se.storage.List(ctx, query)
}

// TemplatesUsing returns the names of templates whose newest version reads
// binding, either as a placeholder or as the list of a loop. Names are sorted.
func (se *StorageEngine) TemplatesUsing(ctx context.Context, binding string) ([]string, error) {
	var names []string
	for _, query := range []*TemplateQuery{{Variable: binding}, {List: binding}} {
		found, err := se.storage.List(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, stored := range found {
			names = append(names, stored.Name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Exists checks if a template exists in storage.
func (se *StorageEngine) Exists(ctx context.Context, templateName string) (bool, error) {
	return se.storage.Exists(ctx, templateName)
}

// ListVersions returns all version numbers for a template, newest first.
func (se *StorageEngine) ListVersions(ctx context.Context, templateName string) ([]int, error) {
	return se.storage.ListVersions(ctx, templateName)
}

// Engine returns the underlying engine.
func (se *StorageEngine) Engine() *Engine {
	return se.engine
}

// Storage returns the underlying storage backend.
func (se *StorageEngine) Storage() TemplateStorage {
	return se.storage
}

// ClearCache drops every cached compiled template.
func (se *StorageEngine) ClearCache() {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.cache = make(map[string]*compiledCacheEntry)
	se.engine.logger.Debug(LogMsgStorageCacheCleared)
}

// CacheSize returns the number of cached compiled templates.
func (se *StorageEngine) CacheSize() int {
	se.mu.RLock()
	defer se.mu.RUnlock()

	return len(se.cache)
}

// Close closes the underlying storage.
func (se *StorageEngine) Close() error {
	return se.storage.Close()
}

// load fetches the latest stored version and returns its compiled form,
// reusing the cache while the stored ID is unchanged.
func (se *StorageEngine) load(ctx context.Context, templateName string) (*Template, error) {
	stored, err := se.storage.Get(ctx, templateName)
	if err != nil {
		return nil, err
	}

	if se.cacheEnabled {
		se.mu.RLock()
		entry, ok := se.cache[templateName]
		se.mu.RUnlock()

		if ok && entry.id == stored.ID {
			se.engine.logger.Debug(LogMsgStorageCacheHit,
				zap.String(LogFieldTemplateName, templateName),
				zap.Int(LogFieldVersion, stored.Version))
			return entry.template, nil
		}
	}

	se.engine.logger.Debug(LogMsgStorageCacheMiss,
		zap.String(LogFieldTemplateName, templateName),
		zap.Int(LogFieldVersion, stored.Version))

	tmpl, err := se.engine.Compile(stored.Source)
	if err != nil {
		return nil, err
	}

	if se.cacheEnabled {
		se.mu.Lock()
		se.cache[templateName] = &compiledCacheEntry{template: tmpl, id: stored.ID}
		se.mu.Unlock()
	}

	return tmpl, nil
}

func (se *StorageEngine) invalidate(templateName string) {
	if !se.cacheEnabled {
		return
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	delete(se.cache, templateName)
}
