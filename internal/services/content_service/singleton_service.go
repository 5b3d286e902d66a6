package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/repository"
	"site_cms/internal/storage"
)

// SingletonService manages an entity that exists at most once.
type SingletonService[T Entity[T]] struct {
	log  *slog.Logger
	repo repository.SingletonRepository[T]
}

func NewSingletonService[T Entity[T]](log *slog.Logger, name string, repo repository.SingletonRepository[T]) *SingletonService[T] {
	return &SingletonService[T]{
		log:  log.With(slog.String("entity", name)),
		repo: repo,
	}
}

// Get returns the stored instance, or nil when none has been set yet.
func (s *SingletonService[T]) Get(ctx context.Context) (*T, error) {
	const op = "singleton_service.Get"

	item, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		s.log.Error("failed to get record", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

// Set requires every field and overwrites the stored instance.
func (s *SingletonService[T]) Set(ctx context.Context, item T) (T, error) {
	const op = "singleton_service.Set"
	log := s.log.With(slog.String("op", op))

	clean, err := item.Sanitized()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.repo.Set(ctx, clean)
	if err != nil {
		log.Error("failed to store record", sl.Err(err))
		return item, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("record stored")

	return stored, nil
}

func (s *SingletonService[T]) Clear(ctx context.Context) error {
	const op = "singleton_service.Clear"

	if err := s.repo.Clear(ctx); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("failed to clear record", slog.String("op", op), sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("record cleared", slog.String("op", op))

	return nil
}
