package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"site_cms/internal/storage/blobstore"

	"github.com/google/uuid"
)

// LocalFileStorage реализация BlobStore для локальной файловой системы.
// Идентификатор blob имеет вид "<folder>/<name>", файл лежит в
// <baseDir>/<folder>/<name>.<ext> и отдается по <baseURL>/<folder>/<name>.<ext>.
type LocalFileStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./uploads")
	baseURL string // Базовый URL для доступа к файлам (например: "http://localhost:3001/media/upload")
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalFileStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (blobstore.UploadedBlob, error) {
	if err := ctx.Err(); err != nil {
		return blobstore.UploadedBlob{}, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}

	id := path.Join(folder, uuid.NewString())
	filePath := s.GetFullPath(id + ext)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return blobstore.UploadedBlob{}, fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return blobstore.UploadedBlob{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	// Создаем целевой файл
	dst, err := os.Create(filePath)
	if err != nil {
		return blobstore.UploadedBlob{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	hash := md5.New()

	size, err := io.Copy(io.MultiWriter(dst, hash), &contextReader{ctx: ctx, r: src})
	if err != nil {
		_ = os.Remove(filePath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return blobstore.UploadedBlob{}, ctxErr
		}
		return blobstore.UploadedBlob{}, fmt.Errorf("failed to copy file: %w", err)
	}

	blob := blobstore.UploadedBlob{
		ID:           id,
		URL:          s.baseURL + "/" + id + ext,
		Format:       strings.TrimPrefix(ext, "."),
		Bytes:        size,
		ResourceType: "image",
		CreatedAt:    time.Now().UTC(),
		ETag:         hex.EncodeToString(hash.Sum(nil)),
	}

	if cfg, err := decodeImageConfig(filePath); err == nil {
		blob.Width, blob.Height = cfg.Width, cfg.Height
	}

	return blob, nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, err := cleanID(id)
	if err != nil {
		return "", err
	}

	matches, err := filepath.Glob(s.GetFullPath(clean) + ".*")
	if err != nil {
		return "", fmt.Errorf("failed to look up %q: %w", id, err)
	}
	if len(matches) == 0 {
		return blobstore.StatusNotFound, nil
	}

	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to remove %q: %w", id, err)
		}
	}

	return blobstore.StatusDeleted, nil
}

func (s *LocalFileStorage) DeleteMany(ctx context.Context, ids []string) (blobstore.DeleteReport, error) {
	report := blobstore.NewDeleteReport()

	for _, id := range ids {
		status, err := s.Delete(ctx, id)
		if err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Statuses[id] = status
	}

	return report, nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

// cleanID rejects ids that escape baseDir or that Glob would expand.
func cleanID(id string) (string, error) {
	if strings.ContainsAny(id, globMeta) {
		return "", fmt.Errorf("invalid blob id %q", id)
	}

	clean := strings.TrimPrefix(path.Clean("/"+id), "/")
	if clean == "" || clean != strings.Trim(id, "/") {
		return "", fmt.Errorf("invalid blob id %q", id)
	}

	return clean, nil
}

const globMeta = "*?[]\\"

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}

func decodeImageConfig(filePath string) (image.Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}
