package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"site_cms/internal/domain/models"
	"site_cms/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var galleryColumns = []string{
	"id",
	"name",
	"event_date",
	"cover_image",
	"cover_image_id",
	"images",
	"created_at",
	"updated_at",
}

type GalleryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: newBuilder(),
	}
}

// GetGallery возвращает галерею по ID
func (r *GalleryRepo) GetGallery(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGallery"

	query, args, err := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

// GetGalleries возвращает все галереи, новые первыми
func (r *GalleryRepo) GetGalleries(ctx context.Context) ([]models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleries"

	query, args, err := r.sb.Select(galleryColumns...).
		From("galleries").
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	galleries := make([]models.Gallery, 0)
	for rows.Next() {
		gallery, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, gallery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return galleries, nil
}

// CreateGallery writes the gallery together with the images its list
// introduces. Referenced images without an owner are claimed, and every
// referenced image's sort_order is set to its list position.
func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery models.Gallery, newImages []models.GalleryImage) (models.Gallery, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	if gallery.Images == nil {
		gallery.Images = models.ImageRefs{}
	}

	now := time.Now().UTC()

	query, args, err := r.sb.Insert("galleries").
		Columns(galleryColumns...).
		Values(
			gallery.ID,
			gallery.Name,
			gallery.EventDate,
			gallery.CoverImage,
			gallery.CoverImageID,
			gallery.Images,
			now,
			now,
		).
		Suffix("RETURNING " + strings.Join(galleryColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	var created models.Gallery
	err = r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		created, err = scanGallery(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}

		return attachImages(ctx, tx, r.sb, created.ID, created.Images, newImages)
	})
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// UpdateGallery overwrites the gallery's scalar fields. The image list is
// written, with the same bookkeeping as CreateGallery, only when
// replaceImages is set.
func (r *GalleryRepo) UpdateGallery(
	ctx context.Context,
	gallery models.Gallery,
	newImages []models.GalleryImage,
	replaceImages bool,
) (models.Gallery, error) {
	const op = "repository.GalleryRepo.UpdateGallery"

	builder := r.sb.Update("galleries").
		Set("name", gallery.Name).
		Set("event_date", gallery.EventDate).
		Set("cover_image", gallery.CoverImage).
		Set("cover_image_id", gallery.CoverImageID).
		Set("updated_at", time.Now().UTC())

	if replaceImages {
		if gallery.Images == nil {
			gallery.Images = models.ImageRefs{}
		}
		builder = builder.Set("images", gallery.Images)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": gallery.ID}).
		Suffix("RETURNING " + strings.Join(galleryColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	var updated models.Gallery
	err = r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		updated, err = scanGallery(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}

		if !replaceImages {
			return nil
		}

		return attachImages(ctx, tx, r.sb, updated.ID, updated.Images, newImages)
	})
	if err != nil {
		if isNoRows(err) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteGallery removes the gallery and every image it owns in one
// transaction and returns the removed images. beforeCommit, when set, sees
// the removed images while the transaction is still open; an error from it
// rolls everything back.
func (r *GalleryRepo) DeleteGallery(
	ctx context.Context,
	id uuid.UUID,
	beforeCommit func(context.Context, []models.GalleryImage) error,
) ([]models.GalleryImage, error) {
	const op = "repository.GalleryRepo.DeleteGallery"

	imagesQuery, imagesArgs, err := r.sb.Delete("gallery_images").
		Where(sq.Eq{"gallery_id": id}).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	galleryQuery, galleryArgs, err := r.sb.Delete("galleries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var removed []models.GalleryImage
	err = r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, imagesQuery, imagesArgs...)
		if err != nil {
			return err
		}
		removed, err = collectImages(rows)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, galleryQuery, galleryArgs...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}

		if beforeCommit != nil {
			return beforeCommit(ctx, removed)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return removed, nil
}

func scanGallery(row pgx.Row) (models.Gallery, error) {
	var (
		gallery   models.Gallery
		eventDate sql.NullTime
	)

	err := row.Scan(
		&gallery.ID,
		&gallery.Name,
		&eventDate,
		&gallery.CoverImage,
		&gallery.CoverImageID,
		&gallery.Images,
		&gallery.CreatedAt,
		&gallery.UpdatedAt,
	)
	if err != nil {
		return models.Gallery{}, err
	}

	if eventDate.Valid {
		t := eventDate.Time
		gallery.EventDate = &t
	}

	return gallery, nil
}

// lockGallery reads a gallery row and holds it until tx ends.
func lockGallery(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, id uuid.UUID) (models.Gallery, error) {
	query, args, err := sb.Select(galleryColumns...).
		From("galleries").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return models.Gallery{}, err
	}

	gallery, err := scanGallery(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return models.Gallery{}, storage.ErrNotFound
		}
		return models.Gallery{}, err
	}

	return gallery, nil
}

func saveGalleryImages(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, id uuid.UUID, refs models.ImageRefs) error {
	if refs == nil {
		refs = models.ImageRefs{}
	}

	query, args, err := sb.Update("galleries").
		Set("images", refs).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, query, args...)
	return err
}

// attachImages inserts newImages, claims unowned referenced images for
// galleryID and renumbers the images it owns by list position.
func attachImages(
	ctx context.Context,
	tx pgx.Tx,
	sb sq.StatementBuilderType,
	galleryID uuid.UUID,
	refs models.ImageRefs,
	newImages []models.GalleryImage,
) error {
	for _, img := range newImages {
		if _, err := insertImage(ctx, tx, sb, img); err != nil {
			return err
		}
	}

	ids := refs.ImageIDs()
	if len(ids) > 0 {
		query, args, err := sb.Update("gallery_images").
			Set("gallery_id", galleryID).
			Where(sq.Eq{"id": ids, "gallery_id": nil}).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
	}

	return renumberImages(ctx, tx, sb, galleryID, refs)
}

// renumberImages sets sort_order to the list position for referenced images
// owned by galleryID. Images owned by other galleries keep their order.
func renumberImages(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, galleryID uuid.UUID, refs models.ImageRefs) error {
	for pos, ref := range refs {
		if ref.Image == nil {
			continue
		}

		query, args, err := sb.Update("gallery_images").
			Set("sort_order", pos).
			Where(sq.Eq{"id": *ref.Image, "gallery_id": galleryID}).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
	}

	return nil
}
