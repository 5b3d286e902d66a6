package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/metrics"
	"site_cms/internal/repository"
	"site_cms/internal/storage"
	"site_cms/internal/storage/blobstore"
	"site_cms/internal/transport/http/dto"

	"github.com/google/uuid"
)

const (
	standaloneFolder = "gallery_images"
	galleryFolderFmt = "galleries/%s"
)

// GalleryFinder reports whether a gallery exists.
type GalleryFinder interface {
	GetGallery(ctx context.Context, id uuid.UUID) (models.Gallery, error)
}

// BlobRemover journals and deletes blobs of removed images.
type BlobRemover interface {
	Schedule(ctx context.Context, ids ...string) error
	Remove(ctx context.Context, ids ...string) int
}

type ImageService struct {
	log            *slog.Logger
	images         repository.GalleryImageRepository
	galleries      GalleryFinder
	store          blobstore.BlobStore
	remover        BlobRemover
	maxUploadBytes int64
}

func NewImageService(
	log *slog.Logger,
	images repository.GalleryImageRepository,
	galleries GalleryFinder,
	store blobstore.BlobStore,
	remover BlobRemover,
	maxUploadBytes int64,
) *ImageService {
	return &ImageService{
		log:            log,
		images:         images,
		galleries:      galleries,
		store:          store,
		remover:        remover,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadImage stores the file in the blob store and records it. When the
// record cannot be written the uploaded blob is deleted again.
func (s *ImageService) UploadImage(ctx context.Context, input dto.ImageUploadInput) (models.GalleryImage, error) {
	const op = "image_service.UploadImage"

	log := s.log.With(slog.String("op", op))

	if input.File == nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, models.NewValidationError("imageFile", "is required"))
	}
	if input.File.Size > s.maxUploadBytes {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, storage.ErrFileTooLarge)
	}
	if input.Order != nil && *input.Order < 0 {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, models.NewValidationError("order", "must be at least 0"))
	}

	folder := standaloneFolder
	if input.GalleryID != nil {
		log = log.With(slog.String("gallery_id", input.GalleryID.String()))

		if _, err := s.galleries.GetGallery(ctx, *input.GalleryID); err != nil {
			return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
		}
		folder = fmt.Sprintf(galleryFolderFmt, input.GalleryID)
	}

	log.Info("upload image", slog.String("filename", input.File.Filename), slog.Int64("size", input.File.Size))

	blob, err := s.store.Upload(ctx, input.File, folder)
	if err != nil {
		log.Error("failed to upload blob", sl.Err(err))
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	img := models.GalleryImage{
		ID:           uuid.New(),
		Gallery:      input.GalleryID,
		CloudinaryID: blob.ID,
		ImageURL:     blob.URL,
		CloudinaryData: models.CloudinaryData{
			PublicID:     blob.ID,
			Format:       blob.Format,
			Width:        blob.Width,
			Height:       blob.Height,
			Bytes:        blob.Bytes,
			ResourceType: blob.ResourceType,
			CreatedAt:    blob.CreatedAt,
			ETag:         blob.ETag,
		},
		Caption:    strings.TrimSpace(input.Caption),
		UploadedAt: time.Now().UTC(),
	}
	if input.Order != nil {
		img.Order = *input.Order
	}

	var created models.GalleryImage
	if input.GalleryID != nil {
		created, err = s.images.CreateGalleryImage(ctx, img, input.Order, input.TitleImage)
	} else {
		created, err = s.images.CreateImage(ctx, img)
	}
	if err != nil {
		// Удаляем blob если не удалось сохранить в БД
		s.compensate(ctx, log, blob.ID)
		log.Error("failed to save image to database", sl.Err(err))

		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image uploaded", slog.String("id", created.ID.String()), slog.String("blob_id", blob.ID))

	return created, nil
}

func (s *ImageService) compensate(ctx context.Context, log *slog.Logger, blobID string) {
	status, err := s.store.Delete(context.WithoutCancel(ctx), blobID)
	if err != nil {
		metrics.UploadCompensations.WithLabelValues(metrics.ResultFailed).Inc()
		log.Error("failed to delete orphaned blob", slog.String("blob_id", blobID), sl.Err(err))
		return
	}

	metrics.UploadCompensations.WithLabelValues(status).Inc()
	log.Warn("orphaned blob deleted", slog.String("blob_id", blobID), slog.String("status", status))
}

// ListGalleryImages returns the images owned by a gallery in display order.
func (s *ImageService) ListGalleryImages(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryImage, error) {
	const op = "image_service.ListGalleryImages"

	images, err := s.images.GetImagesByGallery(ctx, galleryID)
	if err != nil {
		s.log.Error("failed to list images", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (s *ImageService) GetImage(ctx context.Context, id uuid.UUID) (models.GalleryImage, error) {
	const op = "image_service.GetImage"

	img, err := s.images.GetImage(ctx, id)
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

func (s *ImageService) UpdateImage(ctx context.Context, id uuid.UUID, patch models.ImagePatch) (models.GalleryImage, error) {
	const op = "image_service.UpdateImage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("image_id", id.String()),
	)

	if patch.Caption != nil {
		caption := strings.TrimSpace(*patch.Caption)
		patch.Caption = &caption
	}

	if err := patch.Validate(); err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.images.UpdateImage(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to update image", sl.Err(err))
		}
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image updated")

	return updated, nil
}

// DeleteImage removes the image record and its gallery references, then
// the blob.
func (s *ImageService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "image_service.DeleteImage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("image_id", id.String()),
	)

	removed, err := s.images.DeleteImage(ctx, id, func(ctx context.Context, img models.GalleryImage) error {
		return s.remover.Schedule(ctx, img.CloudinaryID)
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to delete image", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	confirmed := s.remover.Remove(ctx, removed.CloudinaryID)

	log.Info("image deleted", slog.String("blob_id", removed.CloudinaryID), slog.Bool("blob_confirmed", confirmed == 1))

	return nil
}
