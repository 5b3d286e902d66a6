package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gallery is a named, dated collection of ordered image references.
type Gallery struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	CoverImage   string     `json:"coverImage,omitempty"`
	CoverImageID string     `json:"coverImageId,omitempty"`
	Images       ImageRefs  `json:"images"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// GalleryImageRef is one slot of a gallery's image list. It either points at
// a GalleryImage document or, for older data, carries the URL and blob id inline.
type GalleryImageRef struct {
	Image        *uuid.UUID `json:"image,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	CloudinaryID string     `json:"cloudinaryId,omitempty"`
	TitleImage   bool       `json:"titleImage"`
}

type ImageRefs []GalleryImageRef

// ImageIDs returns the document ids referenced by the list, in list order.
func (r ImageRefs) ImageIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r))
	for _, ref := range r {
		if ref.Image != nil {
			ids = append(ids, *ref.Image)
		}
	}

	return ids
}

// IndexOf returns the position of the reference to imageID, or -1.
func (r ImageRefs) IndexOf(imageID uuid.UUID) int {
	for i, ref := range r {
		if ref.Image != nil && *ref.Image == imageID {
			return i
		}
	}

	return -1
}

// Value реализует интерфейс driver.Valuer для сериализации ImageRefs в JSONB
func (r ImageRefs) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в ImageRefs
func (r *ImageRefs) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = ImageRefs{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("image refs: unsupported scan type %T", value)
	}
}

// ExpandedImage is a gallery reference joined with its GalleryImage document.
type ExpandedImage struct {
	ID             *uuid.UUID      `json:"id,omitempty"`
	URL            string          `json:"url"`
	CloudinaryID   string          `json:"cloudinaryId"`
	Title          string          `json:"title,omitempty"`
	Description    string          `json:"description,omitempty"`
	UploadedAt     *time.Time      `json:"uploadedAt,omitempty"`
	CloudinaryData *CloudinaryData `json:"cloudinaryData,omitempty"`
	TitleImage     bool            `json:"titleImage"`
}

// ExpandedGallery is the gallery shape returned by the API.
type ExpandedGallery struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	EventDate    *time.Time      `json:"eventDate,omitempty"`
	CoverImage   string          `json:"coverImage,omitempty"`
	CoverImageID string          `json:"coverImageId,omitempty"`
	Images       []ExpandedImage `json:"images"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
