package tempel

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring compilation and rendering.
type Option func(*engineConfig)

// engineConfig holds the internal configuration shared by an Engine and the
// templates it compiles.
type engineConfig struct {
	missingList MissingListStrategy
	logger      *zap.Logger
}

// defaultEngineConfig returns the default configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		missingList: MissingListFail,
		logger:      nil,
	}
}

// newEngineConfig applies opts over the defaults and fills in a no-op logger.
func newEngineConfig(opts ...Option) *engineConfig {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = zap.NewNop()
	}
	return config
}

// WithMissingListStrategy sets what a loop does when its list is unbound or
// not a list.
// Default: MissingListFail
func WithMissingListStrategy(strategy MissingListStrategy) Option {
	return func(c *engineConfig) {
		c.missingList = strategy
	}
}

// WithLogger sets the logger.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
