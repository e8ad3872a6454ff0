package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/seekr/internal/chunker"
	"github.com/starford/seekr/internal/embedding"
	"github.com/starford/seekr/internal/engine"
	"github.com/starford/seekr/internal/index"
	"github.com/starford/seekr/internal/search"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig  `yaml:"app"`
	SQLite      SQLiteConfig       `yaml:"sqlite"`
	Auth        AuthConfig         `yaml:"auth"`
	Embedding   EmbeddingConfig    `yaml:"embedding"`
	Chunking    ChunkingConfig     `yaml:"chunking"`
	Search      SearchConfig       `yaml:"search"`
	Collections []CollectionConfig `yaml:"collections"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Collections))
	for i := range c.Collections {
		if err := c.Collections[i].Validate(); err != nil {
			return fmt.Errorf("collections[%d]: %w", i, err)
		}
		if _, dup := seen[c.Collections[i].Name]; dup {
			return fmt.Errorf("collections[%d]: duplicate name %q", i, c.Collections[i].Name)
		}
		seen[c.Collections[i].Name] = struct{}{}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.BusyTimeout, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// EmbeddingConfig configures the OpenAI-compatible embedding provider. An
// empty APIKey is valid: lexical search keeps working and embedding
// operations fail with a missing-credential error.
type EmbeddingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Dimensions, validation.Min(0)),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(1), validation.Max(2048)),
		validation.Field(&c.BatchDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.Timeout, validation.Required),
	)
}

// Client builds the embedding client.
func (c *EmbeddingConfig) Client() *embedding.Client {
	return embedding.New(embedding.Config{
		BaseURL:    c.BaseURL,
		APIKey:     c.APIKey,
		Model:      c.Model,
		Timeout:    c.Timeout,
		Dimensions: c.Dimensions,
	})
}

// ChunkingConfig holds chunk sizing.
type ChunkingConfig struct {
	TargetTokens  int `yaml:"target_tokens"`
	MinTokens     int `yaml:"min_tokens"`
	CharsPerToken int `yaml:"chars_per_token"`
}

// Validate validates the chunking configuration.
func (c *ChunkingConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TargetTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.MinTokens, validation.Min(0)),
		validation.Field(&c.CharsPerToken, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.MinTokens > c.TargetTokens {
		return fmt.Errorf("chunking: min_tokens %d exceeds target_tokens %d", c.MinTokens, c.TargetTokens)
	}
	return nil
}

// Chunker builds the configured chunker.
func (c *ChunkingConfig) Chunker() *chunker.Chunker {
	return chunker.New(
		chunker.WithTargetTokens(c.TargetTokens),
		chunker.WithMinTokens(c.MinTokens),
		chunker.WithEstimator(chunker.CharEstimator{CharsPerToken: c.CharsPerToken}),
	)
}

// SearchConfig holds ranking defaults.
type SearchConfig struct {
	LexicalWeight float64 `yaml:"lexical_weight"`
	VectorWeight  float64 `yaml:"vector_weight"`
	DefaultLimit  int     `yaml:"default_limit"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LexicalWeight, validation.Min(0.0)),
		validation.Field(&c.VectorWeight, validation.Min(0.0)),
		validation.Field(&c.DefaultLimit, validation.Required, validation.Min(1), validation.Max(engine.MaxLimit)),
	); err != nil {
		return err
	}
	if c.LexicalWeight == 0 && c.VectorWeight == 0 {
		return fmt.Errorf("search: lexical_weight and vector_weight are both zero")
	}
	return nil
}

// Weights returns the fusion weights.
func (c *SearchConfig) Weights() search.Weights {
	return search.Weights{Lexical: c.LexicalWeight, Vector: c.VectorWeight}
}

// CollectionConfig declares a collection to register at startup.
type CollectionConfig struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"`
}

// Validate validates the collection entry.
func (c *CollectionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path:        "./seekr.db",
			BusyTimeout: index.DefaultBusyTimeout,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Embedding: EmbeddingConfig{
			BaseURL:    embedding.DefaultBaseURL,
			Model:      embedding.DefaultModel,
			BatchSize:  index.DefaultBatchSize,
			BatchDelay: 200 * time.Millisecond,
			Timeout:    embedding.DefaultTimeout,
		},
		Chunking: ChunkingConfig{
			TargetTokens:  chunker.DefaultTargetTokens,
			MinTokens:     chunker.DefaultMinTokens,
			CharsPerToken: 4,
		},
		Search: SearchConfig{
			LexicalWeight: search.DefaultWeights.Lexical,
			VectorWeight:  search.DefaultWeights.Vector,
			DefaultLimit:  engine.DefaultLimit,
		},
	}
}
