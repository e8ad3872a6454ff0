package internal

import (
	"log/slog"

	"github.com/starford/seekr/internal/index"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	version  string
	logger   *slog.Logger
	embedder index.Embedder
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithEmbedder overrides the embedding client built from configuration.
func WithEmbedder(e index.Embedder) Option {
	return func(a *application) {
		a.embedder = e
	}
}
