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
	"site_cms/internal/repository"
	"site_cms/internal/storage"
	"site_cms/internal/transport/http/dto"

	"github.com/google/uuid"
)

// BlobRemover journals and deletes blobs of removed images.
type BlobRemover interface {
	Schedule(ctx context.Context, ids ...string) error
	Remove(ctx context.Context, ids ...string) int
}

type GalleryService struct {
	log       *slog.Logger
	galleries repository.GalleryRepository
	images    repository.GalleryImageRepository
	remover   BlobRemover
}

func NewGalleryService(
	log *slog.Logger,
	galleries repository.GalleryRepository,
	images repository.GalleryImageRepository,
	remover BlobRemover,
) *GalleryService {
	return &GalleryService{
		log:       log,
		galleries: galleries,
		images:    images,
		remover:   remover,
	}
}

// CreateGallery создает новую галерею
func (s *GalleryService) CreateGallery(ctx context.Context, req dto.GalleryRequest) (models.ExpandedGallery, error) {
	const op = "service.GalleryService.CreateGallery"
	log := s.log.With(slog.String("op", op))

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, models.NewValidationError("name", "is required"))
	}

	gallery := models.Gallery{
		ID:     uuid.New(),
		Images: models.ImageRefs{},
	}
	if err := applyScalars(&gallery, req); err != nil {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	var newImages []models.GalleryImage
	if req.Images != nil {
		refs, created, err := s.resolveImages(ctx, gallery.ID, *req.Images)
		if err != nil {
			return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
		}
		gallery.Images, newImages = refs, created
	}

	saved, err := s.galleries.CreateGallery(ctx, gallery, newImages)
	if err != nil {
		log.Error("failed to create gallery", sl.Err(err))
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created",
		slog.String("id", saved.ID.String()),
		slog.Int("images", len(saved.Images)),
		slog.Int("new_images", len(newImages)),
	)

	return s.expandOne(ctx, saved)
}

// UpdateGallery обновляет данные галереи. Список изображений заменяется,
// только если он передан в запросе.
func (s *GalleryService) UpdateGallery(ctx context.Context, id uuid.UUID, req dto.GalleryRequest) (models.ExpandedGallery, error) {
	const op = "service.GalleryService.UpdateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	gallery, err := s.galleries.GetGallery(ctx, id)
	if err != nil {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, models.NewValidationError("name", "must not be blank"))
	}

	if err := applyScalars(&gallery, req); err != nil {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	var newImages []models.GalleryImage
	if req.Images != nil {
		refs, created, err := s.resolveImages(ctx, gallery.ID, *req.Images)
		if err != nil {
			return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
		}
		gallery.Images, newImages = refs, created
	}

	saved, err := s.galleries.UpdateGallery(ctx, gallery, newImages, req.Images != nil)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to update gallery", sl.Err(err))
		}
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery updated", slog.Bool("images_replaced", req.Images != nil))

	return s.expandOne(ctx, saved)
}

func (s *GalleryService) GetGallery(ctx context.Context, id uuid.UUID) (models.ExpandedGallery, error) {
	const op = "service.GalleryService.GetGallery"

	gallery, err := s.galleries.GetGallery(ctx, id)
	if err != nil {
		return models.ExpandedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.expandOne(ctx, gallery)
}

// ListGalleries возвращает все галереи, новые первыми
func (s *GalleryService) ListGalleries(ctx context.Context) ([]models.ExpandedGallery, error) {
	const op = "service.GalleryService.ListGalleries"
	log := s.log.With(slog.String("op", op))

	galleries, err := s.galleries.GetGalleries(ctx)
	if err != nil {
		log.Error("failed to list galleries", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expanded, err := s.expand(ctx, galleries)
	if err != nil {
		log.Error("failed to expand galleries", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return expanded, nil
}

// DeleteGallery removes the gallery with the images it owns, then their
// blobs. Blob ids are journaled inside the database transaction, so blobs
// the store fails to delete are retried by the sweep.
func (s *GalleryService) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "service.GalleryService.DeleteGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	if _, err := s.galleries.GetGallery(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.galleries.DeleteGallery(ctx, id, func(ctx context.Context, images []models.GalleryImage) error {
		return s.remover.Schedule(ctx, blobIDs(images)...)
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to delete gallery", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	ids := blobIDs(removed)
	confirmed := s.remover.Remove(ctx, ids...)

	log.Info("gallery deleted",
		slog.Int("images", len(removed)),
		slog.Int("blobs_confirmed", confirmed),
	)

	return nil
}

func (s *GalleryService) expandOne(ctx context.Context, gallery models.Gallery) (models.ExpandedGallery, error) {
	expanded, err := s.expand(ctx, []models.Gallery{gallery})
	if err != nil {
		return models.ExpandedGallery{}, err
	}

	return expanded[0], nil
}

// expand joins every reference with its image document in one batch.
// References to missing documents are skipped.
func (s *GalleryService) expand(ctx context.Context, galleries []models.Gallery) ([]models.ExpandedGallery, error) {
	var ids []uuid.UUID
	for _, g := range galleries {
		ids = append(ids, g.Images.ImageIDs()...)
	}

	images, err := s.images.GetImagesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.GalleryImage, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	out := make([]models.ExpandedGallery, 0, len(galleries))
	for _, g := range galleries {
		expanded := models.ExpandedGallery{
			ID:           g.ID,
			Name:         g.Name,
			EventDate:    g.EventDate,
			CoverImage:   g.CoverImage,
			CoverImageID: g.CoverImageID,
			Images:       make([]models.ExpandedImage, 0, len(g.Images)),
			CreatedAt:    g.CreatedAt,
			UpdatedAt:    g.UpdatedAt,
		}

		for _, ref := range g.Images {
			switch {
			case ref.Image != nil:
				img, ok := byID[*ref.Image]
				if !ok {
					s.log.Warn("skipping dangling image reference",
						slog.String("gallery_id", g.ID.String()),
						slog.String("image_id", ref.Image.String()),
					)
					continue
				}
				expanded.Images = append(expanded.Images, img.Expand(ref.TitleImage))
			case ref.ImageURL != "":
				expanded.Images = append(expanded.Images, models.ExpandedImage{
					URL:          ref.ImageURL,
					CloudinaryID: ref.CloudinaryID,
					TitleImage:   ref.TitleImage,
				})
			}
		}

		out = append(out, expanded)
	}

	return out, nil
}

func applyScalars(gallery *models.Gallery, req dto.GalleryRequest) error {
	if req.Name != nil {
		gallery.Name = strings.TrimSpace(*req.Name)
	}

	if req.EventDate != nil {
		date, err := req.ParseEventDate()
		if err != nil {
			return err
		}
		gallery.EventDate = date
	}

	if req.CoverImage != nil {
		gallery.CoverImage = strings.TrimSpace(*req.CoverImage)
	}

	if req.CoverImageID != nil {
		gallery.CoverImageID = strings.TrimSpace(*req.CoverImageID)
	}

	return nil
}

func blobIDs(images []models.GalleryImage) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.CloudinaryID)
	}

	return ids
}

func now() time.Time {
	return time.Now().UTC()
}
