package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/repository"
	"site_cms/internal/storage"

	"github.com/google/uuid"
)

// Entity is a content record that can trim and validate itself.
type Entity[T any] interface {
	Sanitized() (T, error)
}

// Patch turns a partial update into column assignments.
type Patch interface {
	Fields() (map[string]any, error)
}

// ContentService implements CRUD for one list-style content entity.
type ContentService[T Entity[T], P Patch] struct {
	log  *slog.Logger
	name string
	repo repository.ContentRepository[T]
}

func NewContentService[T Entity[T], P Patch](
	log *slog.Logger,
	name string,
	repo repository.ContentRepository[T],
) *ContentService[T, P] {
	return &ContentService[T, P]{
		log:  log.With(slog.String("entity", name)),
		name: name,
		repo: repo,
	}
}

func (s *ContentService[T, P]) List(ctx context.Context) ([]T, error) {
	const op = "content_service.List"
	log := s.log.With(slog.String("op", op))

	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list records", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *ContentService[T, P]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	const op = "content_service.Get"

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("failed to get record", slog.String("op", op), slog.String("id", id.String()), sl.Err(err))
		}
		return item, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// Create trims and validates item, then stores it under a fresh id.
func (s *ContentService[T, P]) Create(ctx context.Context, item T) (T, error) {
	const op = "content_service.Create"
	log := s.log.With(slog.String("op", op))

	clean, err := item.Sanitized()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New()

	created, err := s.repo.Create(ctx, id, clean)
	if err != nil {
		log.Error("failed to create record", sl.Err(err))
		return item, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("record created", slog.String("id", id.String()))

	return created, nil
}

// Update applies the fields present in patch and refreshes updatedAt.
func (s *ContentService[T, P]) Update(ctx context.Context, id uuid.UUID, patch P) (T, error) {
	const op = "content_service.Update"
	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	var zero T

	fields, err := patch.Fields()
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to update record", sl.Err(err))
		}
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("record updated", slog.Int("fields", len(fields)))

	return updated, nil
}

func (s *ContentService[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "content_service.Delete"
	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to delete record", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("record deleted")

	return nil
}
