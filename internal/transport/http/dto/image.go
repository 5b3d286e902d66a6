package dto

import (
	"mime/multipart"

	"github.com/google/uuid"
)

// ImageUploadInput carries one multipart image upload.
type ImageUploadInput struct {
	File       *multipart.FileHeader `form:"imageFile"`
	GalleryID  *uuid.UUID            // nil for standalone uploads
	Caption    string                `form:"caption"`
	Order      *int                  `form:"order"`
	TitleImage bool                  `form:"titleImage"`
}
