package cloudinarystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"site_cms/internal/storage/blobstore"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	destroyOK       = "ok"
	destroyNotFound = "not found"
)

// Store keeps blobs in Cloudinary. Uploads are converted to jpg.
type Store struct {
	log *slog.Logger
	cld *cloudinary.Cloudinary
}

func New(log *slog.Logger, cloudName, apiKey, apiSecret string) (*Store, error) {
	const op = "cloudinarystore.New"

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{log: log, cld: cld}, nil
}

func (s *Store) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (blobstore.UploadedBlob, error) {
	const op = "cloudinarystore.Upload"

	src, err := file.Open()
	if err != nil {
		return blobstore.UploadedBlob{}, fmt.Errorf("%s: open: %w", op, err)
	}
	defer src.Close()

	res, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder: folder,
		Format: "jpg",
	})
	if err != nil {
		return blobstore.UploadedBlob{}, fmt.Errorf("%s: %w", op, err)
	}
	if res.Error.Message != "" {
		return blobstore.UploadedBlob{}, fmt.Errorf("%s: %s", op, res.Error.Message)
	}

	return blobstore.UploadedBlob{
		ID:           res.PublicID,
		URL:          res.SecureURL,
		Format:       res.Format,
		Width:        res.Width,
		Height:       res.Height,
		Bytes:        int64(res.Bytes),
		ResourceType: res.ResourceType,
		CreatedAt:    res.CreatedAt,
		ETag:         res.Etag,
	}, nil
}

func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	const op = "cloudinarystore.Delete"

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch res.Result {
	case destroyOK:
		return blobstore.StatusDeleted, nil
	case destroyNotFound:
		return blobstore.StatusNotFound, nil
	}

	if res.Error.Message != "" {
		return "", fmt.Errorf("%s: %s", op, res.Error.Message)
	}

	return "", fmt.Errorf("%s: unexpected result %q", op, res.Result)
}

// DeleteMany removes ids through the admin API in batches. A failed batch is
// recorded in the report and the remaining batches are still attempted.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (blobstore.DeleteReport, error) {
	const op = "cloudinarystore.DeleteMany"

	report := blobstore.NewDeleteReport()

	for _, chunk := range blobstore.Chunks(ids, blobstore.MaxBatchDelete) {
		res, err := s.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{PublicIDs: chunk})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", op, err))
			continue
		}
		if res.Error.Message != "" {
			report.Errors = append(report.Errors, fmt.Errorf("%s: %s", op, res.Error.Message))
			continue
		}

		for id, status := range res.Deleted {
			switch status {
			case blobstore.StatusDeleted, blobstore.StatusNotFound:
				report.Statuses[id] = status
			default:
				report.Errors = append(report.Errors, fmt.Errorf("%s: %s: %s", op, id, status))
			}
		}
	}

	if len(report.Errors) > 0 && len(report.Statuses) == 0 {
		return report, errors.Join(report.Errors...)
	}

	return report, nil
}
