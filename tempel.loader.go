package tempel

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// StdinPath is the LoadFile path that reads the document from stdin
const StdinPath = "-"

// LoadFile reads the document at path and compiles it. Read failures are
// reported as TemplateRead errors; compile failures are returned unchanged.
func LoadFile(path string, opts ...Option) (*Template, error) {
	config := newEngineConfig(opts...)
	return loadFile(path, os.Stdin, config)
}

// Load reads the document from r and compiles it.
func Load(r io.Reader, opts ...Option) (*Template, error) {
	config := newEngineConfig(opts...)
	return load(r, StdinPath, config)
}

// LoadFile reads and compiles a document with the engine configuration.
func (e *Engine) LoadFile(path string) (*Template, error) {
	return loadFile(path, os.Stdin, e.config)
}

func loadFile(path string, stdin io.Reader, config *engineConfig) (*Template, error) {
	if path == StdinPath {
		return load(stdin, path, config)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewTemplateReadError(path, err)
	}
	config.logger.Debug(LogMsgTemplateLoaded, zap.String(LogFieldPath, path))
	return compile(string(data), config)
}

func load(r io.Reader, path string, config *engineConfig) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewTemplateReadError(path, err)
	}
	config.logger.Debug(LogMsgTemplateLoaded, zap.String(LogFieldPath, path))
	return compile(string(data), config)
}
