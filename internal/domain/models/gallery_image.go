package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GalleryImage records one uploaded photo: its blob handle, URL and the
// metadata snapshot captured at upload time.
type GalleryImage struct {
	ID             uuid.UUID      `json:"id"`
	Gallery        *uuid.UUID     `json:"gallery,omitempty"`
	CloudinaryID   string         `json:"cloudinaryId"`
	ImageURL       string         `json:"imageUrl"`
	CloudinaryData CloudinaryData `json:"cloudinaryData"`
	Caption        string         `json:"caption,omitempty"`
	Order          int            `json:"order"`
	UploadedAt     time.Time      `json:"uploadedAt"`
}

// Expand joins the image with the title flag of the reference pointing at it.
func (img GalleryImage) Expand(titleImage bool) ExpandedImage {
	id := img.ID
	uploadedAt := img.UploadedAt
	data := img.CloudinaryData

	return ExpandedImage{
		ID:             &id,
		URL:            img.ImageURL,
		CloudinaryID:   img.CloudinaryID,
		Title:          img.Caption,
		Description:    img.Caption,
		UploadedAt:     &uploadedAt,
		CloudinaryData: &data,
		TitleImage:     titleImage,
	}
}

type CloudinaryData struct {
	PublicID     string    `json:"public_id"`
	Format       string    `json:"format,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Bytes        int64     `json:"bytes,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ETag         string    `json:"etag,omitempty"`
}

// Value реализует интерфейс driver.Valuer для сериализации CloudinaryData в JSONB
func (d CloudinaryData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в CloudinaryData
func (d *CloudinaryData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = CloudinaryData{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cloudinary data: unsupported scan type %T", value)
	}
}

// ImagePatch holds the editable image fields; nil means "leave unchanged".
type ImagePatch struct {
	Caption *string `json:"caption,omitempty"`
	Order   *int    `json:"order,omitempty" validate:"omitempty,min=0"`
}

func (p ImagePatch) Validate() error {
	return validateStruct(p)
}
