package repository

import (
	"context"

	"site_cms/internal/domain/models"

	"github.com/google/uuid"
)

type GalleryRepository interface {
	GetGallery(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	GetGalleries(ctx context.Context) ([]models.Gallery, error)
	CreateGallery(ctx context.Context, gallery models.Gallery, newImages []models.GalleryImage) (models.Gallery, error)
	UpdateGallery(ctx context.Context, gallery models.Gallery, newImages []models.GalleryImage, replaceImages bool) (models.Gallery, error)
	DeleteGallery(ctx context.Context, id uuid.UUID, beforeCommit func(context.Context, []models.GalleryImage) error) ([]models.GalleryImage, error)
}

type GalleryImageRepository interface {
	CreateImage(ctx context.Context, img models.GalleryImage) (models.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, img models.GalleryImage, position *int, titleImage bool) (models.GalleryImage, error)
	GetImage(ctx context.Context, id uuid.UUID) (models.GalleryImage, error)
	GetImagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GalleryImage, error)
	GetImagesByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryImage, error)
	UpdateImage(ctx context.Context, id uuid.UUID, patch models.ImagePatch) (models.GalleryImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID, beforeCommit func(context.Context, models.GalleryImage) error) (models.GalleryImage, error)
}

// ContentRepository is implemented by ContentRepo for every list-style entity.
type ContentRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, id uuid.UUID, item T) (T, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SingletonRepository is implemented by SingletonRepo.
type SingletonRepository[T any] interface {
	Get(ctx context.Context) (T, error)
	Set(ctx context.Context, item T) (T, error)
	Clear(ctx context.Context) error
}

var (
	_ GalleryRepository                     = (*GalleryRepo)(nil)
	_ GalleryImageRepository                = (*GalleryImageRepo)(nil)
	_ ContentRepository[models.Partner]     = (*ContentRepo[models.Partner])(nil)
	_ SingletonRepository[models.AboutText] = (*SingletonRepo[models.AboutText])(nil)
	_ RemovalJournal                        = (*RedisRemovalJournal)(nil)
	_ RemovalJournal                        = NopRemovalJournal{}
)
