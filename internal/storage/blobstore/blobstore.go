package blobstore

import (
	"context"
	"mime/multipart"
	"time"
)

const (
	StatusDeleted  = "deleted"
	StatusNotFound = "not_found"
)

// MaxBatchDelete is the largest number of identifiers sent in one batch delete.
const MaxBatchDelete = 100

// UploadedBlob describes a stored binary as reported by the provider.
type UploadedBlob struct {
	ID           string
	URL          string
	Format       string
	Width        int
	Height       int
	Bytes        int64
	ResourceType string
	CreatedAt    time.Time
	ETag         string
}

// DeleteReport maps every identifier the store answered for to StatusDeleted
// or StatusNotFound. Identifiers missing from Statuses were not confirmed.
type DeleteReport struct {
	Statuses map[string]string
	Errors   []error
}

func NewDeleteReport() DeleteReport {
	return DeleteReport{Statuses: make(map[string]string)}
}

// Confirmed returns the identifiers the store is done with (deleted or not found).
func (r DeleteReport) Confirmed() []string {
	ids := make([]string, 0, len(r.Statuses))
	for id := range r.Statuses {
		ids = append(ids, id)
	}

	return ids
}

// NotFound returns the identifiers that were already gone.
func (r DeleteReport) NotFound() []string {
	var ids []string
	for id, status := range r.Statuses {
		if status == StatusNotFound {
			ids = append(ids, id)
		}
	}

	return ids
}

type BlobStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (UploadedBlob, error)
	Delete(ctx context.Context, id string) (string, error)
	DeleteMany(ctx context.Context, ids []string) (DeleteReport, error)
}

// Chunks splits ids into batches of at most size elements.
func Chunks(ids []string, size int) [][]string {
	var chunks [][]string
	for size < len(ids) {
		ids, chunks = ids[size:], append(chunks, ids[:size:size])
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}

	return chunks
}
