package dto

import (
	"encoding/json"
	"strings"
	"time"

	"site_cms/internal/domain/models"
)

const eventDateLayout = "2006-01-02"

// GalleryRequest is the body of gallery create and update. Absent fields
// are nil; on update they keep their stored value.
type GalleryRequest struct {
	Name         *string            `json:"name,omitempty"`
	EventDate    *string            `json:"eventDate,omitempty"`    // YYYY-MM-DD или RFC 3339, пустая строка очищает
	CoverImage   *string            `json:"coverImage,omitempty"`   // URL обложки
	CoverImageID *string            `json:"coverImageId,omitempty"` // идентификатор обложки в хранилище
	Images       *[]json.RawMessage `json:"images,omitempty" swaggertype:"array,object"`
}

// ParseEventDate returns the parsed date, or nil for an empty value.
func (r GalleryRequest) ParseEventDate() (*time.Time, error) {
	if r.EventDate == nil {
		return nil, nil
	}

	raw := strings.TrimSpace(*r.EventDate)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(eventDateLayout, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, models.NewValidationError("eventDate", "must be a YYYY-MM-DD or RFC 3339 date")
	}

	t = t.UTC()
	return &t, nil
}

// MessageResponse is returned by deletes that report what happened.
type MessageResponse struct {
	Message string `json:"message"`
}
