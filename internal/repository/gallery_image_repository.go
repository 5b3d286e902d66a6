package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"site_cms/internal/domain/models"
	"site_cms/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var imageColumns = []string{
	"id",
	"gallery_id",
	"cloudinary_id",
	"image_url",
	"cloudinary_data",
	"caption",
	"sort_order",
	"uploaded_at",
}

type GalleryImageRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGalleryImageRepo(db *pgxpool.Pool) *GalleryImageRepo {
	return &GalleryImageRepo{
		db: db,
		sb: newBuilder(),
	}
}

// CreateImage stores an image that belongs to no gallery list.
func (r *GalleryImageRepo) CreateImage(ctx context.Context, img models.GalleryImage) (models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.CreateImage"

	var created models.GalleryImage
	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = insertImage(ctx, tx, r.sb, img)
		return err
	})
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// CreateGalleryImage stores img and links it into its gallery's list in one
// transaction. The reference goes to position when it is within the list,
// otherwise it is appended. A title reference clears the flag on its siblings.
func (r *GalleryImageRepo) CreateGalleryImage(
	ctx context.Context,
	img models.GalleryImage,
	position *int,
	titleImage bool,
) (models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.CreateGalleryImage"

	if img.Gallery == nil {
		return models.GalleryImage{}, fmt.Errorf("%s: image has no gallery", op)
	}
	galleryID := *img.Gallery

	var created models.GalleryImage
	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		gallery, err := lockGallery(ctx, tx, r.sb, galleryID)
		if err != nil {
			return err
		}

		if titleImage {
			for i := range gallery.Images {
				gallery.Images[i].TitleImage = false
			}
		}

		id := img.ID
		ref := models.GalleryImageRef{Image: &id, TitleImage: titleImage}
		refs := insertRef(gallery.Images, ref, position)

		img.Order = refs.IndexOf(id)
		if _, err := insertImage(ctx, tx, r.sb, img); err != nil {
			return err
		}

		if err := saveGalleryImages(ctx, tx, r.sb, galleryID, refs); err != nil {
			return err
		}

		if err := renumberImages(ctx, tx, r.sb, galleryID, refs); err != nil {
			return err
		}

		created, err = getImage(ctx, tx, r.sb, id)
		return err
	})
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *GalleryImageRepo) GetImage(ctx context.Context, id uuid.UUID) (models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.GetImage"

	img, err := getImage(ctx, r.db, r.sb, id)
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

// GetImagesByIDs returns the images that exist among ids, in no particular order.
func (r *GalleryImageRepo) GetImagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.GetImagesByIDs"

	if len(ids) == 0 {
		return []models.GalleryImage{}, nil
	}

	query, args, err := r.sb.Select(imageColumns...).
		From("gallery_images").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, err := collectImages(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// GetImagesByGallery returns the images owned by galleryID ordered by
// sort_order, then upload time.
func (r *GalleryImageRepo) GetImagesByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.GetImagesByGallery"

	query, args, err := r.sb.Select(imageColumns...).
		From("gallery_images").
		Where(sq.Eq{"gallery_id": galleryID}).
		OrderBy("sort_order", "uploaded_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, err := collectImages(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// UpdateImage applies patch. An order change on an image that sits in its
// gallery's list moves the reference to that position and renumbers the list.
func (r *GalleryImageRepo) UpdateImage(ctx context.Context, id uuid.UUID, patch models.ImagePatch) (models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.UpdateImage"

	var updated models.GalleryImage
	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		img, err := lockImage(ctx, tx, r.sb, id)
		if err != nil {
			return err
		}

		builder := r.sb.Update("gallery_images").Where(sq.Eq{"id": id})
		changed := false

		if patch.Caption != nil {
			builder = builder.Set("caption", *patch.Caption)
			changed = true
		}

		if patch.Order != nil {
			moved, err := r.moveRef(ctx, tx, img, *patch.Order)
			if err != nil {
				return err
			}
			if !moved {
				builder = builder.Set("sort_order", *patch.Order)
				changed = true
			}
		}

		if changed {
			query, args, err := builder.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}

		updated, err = getImage(ctx, tx, r.sb, id)
		return err
	})
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// moveRef moves img's reference inside its owner's list. It reports false
// when the image is not listed by its owner.
func (r *GalleryImageRepo) moveRef(ctx context.Context, tx pgx.Tx, img models.GalleryImage, order int) (bool, error) {
	if img.Gallery == nil {
		return false, nil
	}

	gallery, err := lockGallery(ctx, tx, r.sb, *img.Gallery)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	from := gallery.Images.IndexOf(img.ID)
	if from < 0 {
		return false, nil
	}

	ref := gallery.Images[from]
	rest := make(models.ImageRefs, 0, len(gallery.Images))
	rest = append(rest, gallery.Images[:from]...)
	rest = append(rest, gallery.Images[from+1:]...)

	refs := insertRef(rest, ref, &order)

	if err := saveGalleryImages(ctx, tx, r.sb, gallery.ID, refs); err != nil {
		return false, err
	}

	return true, renumberImages(ctx, tx, r.sb, gallery.ID, refs)
}

// DeleteImage removes the image and drops every gallery reference to it in
// one transaction. It returns the removed image. beforeCommit, when set, runs
// inside the transaction; an error from it rolls the delete back.
func (r *GalleryImageRepo) DeleteImage(
	ctx context.Context,
	id uuid.UUID,
	beforeCommit func(context.Context, models.GalleryImage) error,
) (models.GalleryImage, error) {
	const op = "repository.GalleryImageRepo.DeleteImage"

	deleteQuery, deleteArgs, err := r.sb.Delete("gallery_images").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	needle := fmt.Sprintf(`[{"image":%q}]`, id.String())
	refsQuery, refsArgs, err := r.sb.Select(galleryColumns...).
		From("galleries").
		Where("images @> ?::jsonb", needle).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	var removed models.GalleryImage
	err = r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		removed, err = scanImage(tx.QueryRow(ctx, deleteQuery, deleteArgs...))
		if err != nil {
			if isNoRows(err) {
				return storage.ErrNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx, refsQuery, refsArgs...)
		if err != nil {
			return err
		}
		galleries := make([]models.Gallery, 0)
		for rows.Next() {
			g, err := scanGallery(rows)
			if err != nil {
				rows.Close()
				return err
			}
			galleries = append(galleries, g)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, g := range galleries {
			refs := make(models.ImageRefs, 0, len(g.Images))
			for _, ref := range g.Images {
				if ref.Image != nil && *ref.Image == id {
					continue
				}
				refs = append(refs, ref)
			}

			if err := saveGalleryImages(ctx, tx, r.sb, g.ID, refs); err != nil {
				return err
			}
			if err := renumberImages(ctx, tx, r.sb, g.ID, refs); err != nil {
				return err
			}
		}

		if beforeCommit != nil {
			return beforeCommit(ctx, removed)
		}

		return nil
	})
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return removed, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func getImage(ctx context.Context, db queryRower, sb sq.StatementBuilderType, id uuid.UUID) (models.GalleryImage, error) {
	query, args, err := sb.Select(imageColumns...).
		From("gallery_images").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryImage{}, err
	}

	img, err := scanImage(db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return models.GalleryImage{}, storage.ErrNotFound
		}
		return models.GalleryImage{}, err
	}

	return img, nil
}

func lockImage(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, id uuid.UUID) (models.GalleryImage, error) {
	query, args, err := sb.Select(imageColumns...).
		From("gallery_images").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return models.GalleryImage{}, err
	}

	img, err := scanImage(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return models.GalleryImage{}, storage.ErrNotFound
		}
		return models.GalleryImage{}, err
	}

	return img, nil
}

func insertImage(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, img models.GalleryImage) (models.GalleryImage, error) {
	query, args, err := sb.Insert("gallery_images").
		Columns(imageColumns...).
		Values(
			img.ID,
			img.Gallery,
			img.CloudinaryID,
			img.ImageURL,
			img.CloudinaryData,
			img.Caption,
			img.Order,
			img.UploadedAt,
		).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return models.GalleryImage{}, err
	}

	return scanImage(tx.QueryRow(ctx, query, args...))
}

func scanImage(row pgx.Row) (models.GalleryImage, error) {
	var (
		img     models.GalleryImage
		gallery uuid.NullUUID
	)

	err := row.Scan(
		&img.ID,
		&gallery,
		&img.CloudinaryID,
		&img.ImageURL,
		&img.CloudinaryData,
		&img.Caption,
		&img.Order,
		&img.UploadedAt,
	)
	if err != nil {
		return models.GalleryImage{}, err
	}

	if gallery.Valid {
		id := gallery.UUID
		img.Gallery = &id
	}

	return img, nil
}

func collectImages(rows pgx.Rows) ([]models.GalleryImage, error) {
	defer rows.Close()

	images := make([]models.GalleryImage, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return images, nil
}

// insertRef returns refs with ref placed at *position, clamped to the list
// bounds, or appended when position is nil.
func insertRef(refs models.ImageRefs, ref models.GalleryImageRef, position *int) models.ImageRefs {
	at := len(refs)
	if position != nil && *position >= 0 && *position < len(refs) {
		at = *position
	}

	out := make(models.ImageRefs, 0, len(refs)+1)
	out = append(out, refs[:at]...)
	out = append(out, ref)
	out = append(out, refs[at:]...)

	return out
}
