package cloudinarystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"site_cms/internal/lib/logger/handlers/slogdiscard"
	"site_cms/internal/storage/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudinary struct {
	deleteCalls [][]string
	destroyed   []string
}

func (f *fakeCloudinary) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/resources/image/upload"):
		ids := requestedIDs(r)
		f.deleteCalls = append(f.deleteCalls, ids)

		deleted := make(map[string]string, len(ids))
		for _, id := range ids {
			if strings.HasPrefix(id, "gone") {
				deleted[id] = "not_found"
			} else {
				deleted[id] = "deleted"
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": deleted})

	case strings.HasSuffix(r.URL.Path, "/image/destroy"):
		_ = r.ParseMultipartForm(1 << 20)
		id := r.FormValue("public_id")
		f.destroyed = append(f.destroyed, id)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "not found"})

	case strings.HasSuffix(r.URL.Path, "/image/upload") || strings.HasSuffix(r.URL.Path, "/auto/upload"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"public_id":     "gallery_images/abc",
			"secure_url":    "https://res.cloudinary.com/demo/image/upload/v1/gallery_images/abc.jpg",
			"format":        "jpg",
			"width":         640,
			"height":        480,
			"bytes":         1234,
			"resource_type": "image",
			"created_at":    "2024-05-01T10:00:00Z",
			"etag":          "etag-1",
		})

	default:
		http.NotFound(w, r)
	}
}

// requestedIDs accepts public ids sent either as query parameters or as a JSON body.
func requestedIDs(r *http.Request) []string {
	if ids := r.URL.Query()["public_ids[]"]; len(ids) > 0 {
		return ids
	}
	if ids := r.URL.Query()["public_ids"]; len(ids) > 0 {
		return ids
	}

	var body struct {
		PublicIDs []string `json:"public_ids"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	return body.PublicIDs
}

func newTestStore(t *testing.T) (*Store, *fakeCloudinary) {
	t.Helper()

	fake := &fakeCloudinary{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := New(slogdiscard.NewDiscardLogger(), "demo", "key", "secret")
	require.NoError(t, err)
	store.cld.Config.API.UploadPrefix = srv.URL

	return store, fake
}

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("imageFile", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, header, err := req.FormFile("imageFile")
	require.NoError(t, err)

	return header
}

func TestStore_Upload(t *testing.T) {
	store, _ := newTestStore(t)

	blob, err := store.Upload(context.Background(), fileHeader(t, "photo.png", "not really a png"), "gallery_images")
	require.NoError(t, err)

	assert.Equal(t, "gallery_images/abc", blob.ID)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/gallery_images/abc.jpg", blob.URL)
	assert.Equal(t, 640, blob.Width)
	assert.Equal(t, int64(1234), blob.Bytes)
	assert.Equal(t, "etag-1", blob.ETag)
}

func TestStore_Delete(t *testing.T) {
	store, fake := newTestStore(t)

	status, err := store.Delete(context.Background(), "gallery_images/abc")
	require.NoError(t, err)
	assert.Equal(t, blobstore.StatusNotFound, status)
	assert.Equal(t, []string{"gallery_images/abc"}, fake.destroyed)
}

func TestStore_DeleteMany(t *testing.T) {
	store, fake := newTestStore(t)

	ids := make([]string, 0, 150)
	for i := 0; i < 149; i++ {
		ids = append(ids, fmt.Sprintf("galleries/g/img-%d", i))
	}
	ids = append(ids, "gone/one")

	report, err := store.DeleteMany(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, fake.deleteCalls, 2)
	assert.Len(t, fake.deleteCalls[0], blobstore.MaxBatchDelete)
	assert.Equal(t, []string{"gone/one"}, report.NotFound())
	assert.Empty(t, report.Errors)
}
