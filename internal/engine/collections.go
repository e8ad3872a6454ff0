package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/storage"
)

var collectionName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// AddCollection registers a directory under name. An empty pattern means
// storage.DefaultPattern. The path is stored in absolute form and must be an
// existing directory.
func (s *Service) AddCollection(ctx context.Context, name, path, pattern string) (models.Collection, error) {
	if pattern == "" {
		pattern = storage.DefaultPattern
	}
	c := models.Collection{Name: name, BasePath: path, Pattern: pattern}
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 64), validation.Match(collectionName)),
		validation.Field(&c.BasePath, validation.Required),
	); err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if err := storage.ValidatePattern(pattern); err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return models.Collection{}, fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidArgument, abs)
	}
	c.BasePath = abs

	c, err = s.db.AddCollection(ctx, c)
	if err != nil {
		return models.Collection{}, err
	}
	s.logger.Info("collection added",
		slog.String("name", c.Name),
		slog.String("path", c.BasePath),
		slog.String("pattern", c.Pattern))
	if s.opts.Publisher != nil {
		s.opts.Publisher.PublishCollection("added", c.Name)
	}
	return c, nil
}

// EnsureCollection adds the collection unless one with the same name exists.
// It returns the stored collection either way.
func (s *Service) EnsureCollection(ctx context.Context, name, path, pattern string) (models.Collection, error) {
	if c, err := s.db.GetCollection(ctx, name); err == nil {
		return c, nil
	}
	return s.AddCollection(ctx, name, path, pattern)
}

// ListCollections returns all collections with their counts.
func (s *Service) ListCollections(ctx context.Context) ([]models.CollectionInfo, error) {
	return s.db.ListCollections(ctx)
}

// RemoveCollection deletes a collection and everything indexed under it.
func (s *Service) RemoveCollection(ctx context.Context, name string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.db.RemoveCollection(ctx, name); err != nil {
		return err
	}
	s.logger.Info("collection removed", slog.String("name", name))
	if s.opts.Publisher != nil {
		s.opts.Publisher.PublishCollection("removed", name)
	}
	return nil
}
