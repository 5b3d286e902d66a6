package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"site_cms/internal/domain/models"

	"github.com/google/uuid"
)

// resolveImages turns the raw images list of a request into references.
//
// Every entry is parsed and every referenced image is checked before
// anything is built, so a bad entry rejects the request without side
// effects. URL entries become new images owned by galleryID; they are
// returned for the repository to insert with the gallery.
func (s *GalleryService) resolveImages(
	ctx context.Context,
	galleryID uuid.UUID,
	raw []json.RawMessage,
) (models.ImageRefs, []models.GalleryImage, error) {
	inputs := make([]models.ImageInput, len(raw))
	blobIDs := make(map[int]string)
	var ids []uuid.UUID

	for i, entry := range raw {
		in, err := models.ParseImageInput(entry, i)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = in

		switch v := in.(type) {
		case models.ImageByID:
			ids = append(ids, v.ID)
		case models.ImageByIDWithFlag:
			ids = append(ids, v.ID)
		case models.ImageByURL:
			if blobIDs[i], err = entryBlobID(i, v.URL); err != nil {
				return nil, nil, err
			}
		case models.ImageByURLWithFlag:
			if blobIDs[i], err = entryBlobID(i, v.URL); err != nil {
				return nil, nil, err
			}
		}
	}

	existing, err := s.images.GetImagesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load referenced images: %w", err)
	}

	found := make(map[uuid.UUID]struct{}, len(existing))
	for _, img := range existing {
		found[img.ID] = struct{}{}
	}

	flags := titleFlags(inputs)
	refs := make(models.ImageRefs, 0, len(inputs))
	var created []models.GalleryImage

	for i, in := range inputs {
		switch v := in.(type) {
		case models.ImageByID:
			ref, err := existingRef(found, i, v.ID, flags[i])
			if err != nil {
				return nil, nil, err
			}
			refs = append(refs, ref)
		case models.ImageByIDWithFlag:
			ref, err := existingRef(found, i, v.ID, flags[i])
			if err != nil {
				return nil, nil, err
			}
			refs = append(refs, ref)
		case models.ImageByURL:
			img := newURLImage(galleryID, i, v.URL, blobIDs[i], "")
			created = append(created, img)
			refs = append(refs, newRef(img.ID, flags[i]))
		case models.ImageByURLWithFlag:
			img := newURLImage(galleryID, i, v.URL, blobIDs[i], v.Caption)
			created = append(created, img)
			refs = append(refs, newRef(img.ID, flags[i]))
		default:
			return nil, nil, fmt.Errorf("images[%d]: unexpected input %T", i, in)
		}
	}

	return refs, created, nil
}

// titleFlags resolves the titleImage flag of each entry. An entry without an
// explicit flag defaults to being the title when it is first. At most one
// flag stays set: the first explicit true, else the first default true.
func titleFlags(inputs []models.ImageInput) []bool {
	flags := make([]bool, len(inputs))
	firstExplicit, firstDefault := -1, -1

	for i, in := range inputs {
		value, explicit := in.TitleFlag()
		if !explicit {
			value = in.Position() == 0
		}
		if !value {
			continue
		}

		if explicit && firstExplicit < 0 {
			firstExplicit = i
		}
		if !explicit && firstDefault < 0 {
			firstDefault = i
		}
	}

	switch {
	case firstExplicit >= 0:
		flags[firstExplicit] = true
	case firstDefault >= 0:
		flags[firstDefault] = true
	}

	return flags
}

func entryBlobID(index int, url string) (string, error) {
	id, err := models.BlobIDFromURL(url)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return "", models.NewValidationError(fmt.Sprintf("images[%d]", index), "%s", verr.Message)
		}
		return "", err
	}

	return id, nil
}

func existingRef(found map[uuid.UUID]struct{}, index int, id uuid.UUID, title bool) (models.GalleryImageRef, error) {
	if _, ok := found[id]; !ok {
		return models.GalleryImageRef{}, models.NewValidationError(
			fmt.Sprintf("images[%d]", index), "image %s does not exist", id,
		)
	}

	return newRef(id, title), nil
}

func newRef(id uuid.UUID, title bool) models.GalleryImageRef {
	return models.GalleryImageRef{Image: &id, TitleImage: title}
}

func newURLImage(galleryID uuid.UUID, index int, url, blobID, caption string) models.GalleryImage {
	if caption == "" {
		caption = fmt.Sprintf("Image %d", index+1)
	}

	owner := galleryID
	uploadedAt := now()

	return models.GalleryImage{
		ID:           uuid.New(),
		Gallery:      &owner,
		CloudinaryID: blobID,
		ImageURL:     url,
		CloudinaryData: models.CloudinaryData{
			PublicID:  blobID,
			CreatedAt: uploadedAt,
		},
		Caption:    caption,
		Order:      index,
		UploadedAt: uploadedAt,
	}
}
