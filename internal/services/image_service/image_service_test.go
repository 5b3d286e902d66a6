package services_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/handlers/slogdiscard"
	services "site_cms/internal/services/image_service"
	"site_cms/internal/storage"
	"site_cms/internal/storage/blobstore"
	"site_cms/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const maxUpload = 1024

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) CreateImage(ctx context.Context, img models.GalleryImage) (models.GalleryImage, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) CreateGalleryImage(ctx context.Context, img models.GalleryImage, position *int, titleImage bool) (models.GalleryImage, error) {
	args := m.Called(ctx, img, position, titleImage)
	return args.Get(0).(models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) GetImage(ctx context.Context, id uuid.UUID) (models.GalleryImage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) GetImagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GalleryImage, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) GetImagesByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryImage, error) {
	args := m.Called(ctx, galleryID)
	return args.Get(0).([]models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) UpdateImage(ctx context.Context, id uuid.UUID, patch models.ImagePatch) (models.GalleryImage, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.GalleryImage), args.Error(1)
}

func (m *MockImageRepository) DeleteImage(ctx context.Context, id uuid.UUID, beforeCommit func(context.Context, models.GalleryImage) error) (models.GalleryImage, error) {
	args := m.Called(ctx, id, beforeCommit)
	img := args.Get(0).(models.GalleryImage)
	if err := args.Error(1); err != nil {
		return models.GalleryImage{}, err
	}
	if beforeCommit != nil {
		if err := beforeCommit(ctx, img); err != nil {
			return models.GalleryImage{}, err
		}
	}
	return img, nil
}

type MockGalleryFinder struct {
	mock.Mock
}

func (m *MockGalleryFinder) GetGallery(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Gallery), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (blobstore.UploadedBlob, error) {
	args := m.Called(ctx, file, folder)
	return args.Get(0).(blobstore.UploadedBlob), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) DeleteMany(ctx context.Context, ids []string) (blobstore.DeleteReport, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(blobstore.DeleteReport), args.Error(1)
}

type MockBlobRemover struct {
	mock.Mock
}

func (m *MockBlobRemover) Schedule(ctx context.Context, ids ...string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockBlobRemover) Remove(ctx context.Context, ids ...string) int {
	args := m.Called(ctx, ids)
	return args.Int(0)
}

type fixture struct {
	service   *services.ImageService
	images    *MockImageRepository
	galleries *MockGalleryFinder
	store     *MockBlobStore
	remover   *MockBlobRemover
}

func newFixture() fixture {
	f := fixture{
		images:    new(MockImageRepository),
		galleries: new(MockGalleryFinder),
		store:     new(MockBlobStore),
		remover:   new(MockBlobRemover),
	}
	f.service = services.NewImageService(slogdiscard.NewDiscardLogger(), f.images, f.galleries, f.store, f.remover, maxUpload)
	return f
}

func (f fixture) assertExpectations(t *testing.T) {
	f.images.AssertExpectations(t)
	f.galleries.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.remover.AssertExpectations(t)
}

func ptr[V any](v V) *V { return &v }

func testBlob(folder string) blobstore.UploadedBlob {
	return blobstore.UploadedBlob{
		ID:           folder + "/abc",
		URL:          "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/abc.jpg",
		Format:       "jpg",
		Width:        800,
		Height:       600,
		Bytes:        512,
		ResourceType: "image",
	}
}

func TestImageService_UploadImage(t *testing.T) {
	ctx := context.Background()
	file := &multipart.FileHeader{Filename: "photo.jpg", Size: 512}

	tests := []struct {
		name    string
		input   dto.ImageUploadInput
		setup   func(f fixture)
		wantErr error
		field   string
		check   func(t *testing.T, img models.GalleryImage)
	}{
		{
			name:  "missing file",
			input: dto.ImageUploadInput{},
			field: "imageFile",
		},
		{
			name:    "file too large",
			input:   dto.ImageUploadInput{File: &multipart.FileHeader{Filename: "big.jpg", Size: maxUpload + 1}},
			wantErr: storage.ErrFileTooLarge,
		},
		{
			name:  "negative order",
			input: dto.ImageUploadInput{File: file, Order: ptr(-1)},
			field: "order",
		},
		{
			name: "standalone upload",
			input: dto.ImageUploadInput{
				File:    file,
				Caption: "  Sunset  ",
			},
			setup: func(f fixture) {
				f.store.On("Upload", ctx, file, "gallery_images").Return(testBlob("gallery_images"), nil).Once()
				f.images.On("CreateImage", ctx, mock.MatchedBy(func(img models.GalleryImage) bool {
					return img.CloudinaryID == "gallery_images/abc" &&
						img.Caption == "Sunset" &&
						img.Gallery == nil &&
						img.CloudinaryData.Width == 800 &&
						img.CloudinaryData.PublicID == "gallery_images/abc"
				})).Return(models.GalleryImage{ID: uuid.New(), CloudinaryID: "gallery_images/abc", Caption: "Sunset"}, nil).Once()
			},
			check: func(t *testing.T, img models.GalleryImage) {
				assert.Equal(t, "Sunset", img.Caption)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			img, err := f.service.UploadImage(ctx, tt.input)

			switch {
			case tt.field != "":
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
				f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
			default:
				require.NoError(t, err)
				tt.check(t, img)
			}
			f.assertExpectations(t)
		})
	}
}

func TestImageService_UploadGalleryImage(t *testing.T) {
	ctx := context.Background()
	file := &multipart.FileHeader{Filename: "photo.jpg", Size: 512}
	galleryID := uuid.New()
	folder := "galleries/" + galleryID.String()

	t.Run("gallery must exist before upload", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, galleryID).Return(models.Gallery{}, storage.ErrNotFound).Once()

		_, err := f.service.UploadImage(ctx, dto.ImageUploadInput{File: file, GalleryID: &galleryID})

		assert.ErrorIs(t, err, storage.ErrNotFound)
		f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("links image into gallery", func(t *testing.T) {
		f := newFixture()
		order := ptr(0)
		f.galleries.On("GetGallery", ctx, galleryID).Return(models.Gallery{ID: galleryID}, nil).Once()
		f.store.On("Upload", ctx, file, folder).Return(testBlob(folder), nil).Once()
		f.images.On("CreateGalleryImage", ctx, mock.MatchedBy(func(img models.GalleryImage) bool {
			return img.Gallery != nil && *img.Gallery == galleryID && img.Order == 0
		}), order, true).Return(models.GalleryImage{ID: uuid.New(), Gallery: &galleryID}, nil).Once()

		img, err := f.service.UploadImage(ctx, dto.ImageUploadInput{
			File:       file,
			GalleryID:  &galleryID,
			Order:      order,
			TitleImage: true,
		})

		require.NoError(t, err)
		assert.Equal(t, galleryID, *img.Gallery)
		f.assertExpectations(t)
	})

	t.Run("failed write deletes uploaded blob", func(t *testing.T) {
		f := newFixture()
		dbErr := errors.New("connection reset")
		f.galleries.On("GetGallery", ctx, galleryID).Return(models.Gallery{ID: galleryID}, nil).Once()
		f.store.On("Upload", ctx, file, folder).Return(testBlob(folder), nil).Once()
		f.images.On("CreateGalleryImage", ctx, mock.Anything, (*int)(nil), false).
			Return(models.GalleryImage{}, dbErr).Once()
		f.store.On("Delete", mock.Anything, folder+"/abc").Return(blobstore.StatusDeleted, nil).Once()

		_, err := f.service.UploadImage(ctx, dto.ImageUploadInput{File: file, GalleryID: &galleryID})

		assert.ErrorIs(t, err, dbErr)
		f.assertExpectations(t)
	})

	t.Run("failed compensation is not surfaced", func(t *testing.T) {
		f := newFixture()
		dbErr := errors.New("connection reset")
		f.galleries.On("GetGallery", ctx, galleryID).Return(models.Gallery{ID: galleryID}, nil).Once()
		f.store.On("Upload", ctx, file, folder).Return(testBlob(folder), nil).Once()
		f.images.On("CreateGalleryImage", ctx, mock.Anything, (*int)(nil), false).
			Return(models.GalleryImage{}, dbErr).Once()
		f.store.On("Delete", mock.Anything, folder+"/abc").Return("", errors.New("cloud down")).Once()

		_, err := f.service.UploadImage(ctx, dto.ImageUploadInput{File: file, GalleryID: &galleryID})

		assert.ErrorIs(t, err, dbErr)
		assert.NotContains(t, err.Error(), "cloud down")
		f.assertExpectations(t)
	})
}

func TestImageService_UpdateImage(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("trims caption", func(t *testing.T) {
		f := newFixture()
		f.images.On("UpdateImage", ctx, id, models.ImagePatch{Caption: ptr("Hello"), Order: ptr(2)}).
			Return(models.GalleryImage{ID: id, Caption: "Hello", Order: 2}, nil).Once()

		img, err := f.service.UpdateImage(ctx, id, models.ImagePatch{Caption: ptr("  Hello "), Order: ptr(2)})

		require.NoError(t, err)
		assert.Equal(t, 2, img.Order)
		f.assertExpectations(t)
	})

	t.Run("negative order", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.UpdateImage(ctx, id, models.ImagePatch{Order: ptr(-3)})

		assert.True(t, models.IsValidationError(err))
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.images.On("UpdateImage", ctx, id, models.ImagePatch{}).Return(models.GalleryImage{}, storage.ErrNotFound).Once()

		_, err := f.service.UpdateImage(ctx, id, models.ImagePatch{})

		assert.ErrorIs(t, err, storage.ErrNotFound)
		f.assertExpectations(t)
	})
}

func TestImageService_DeleteImage(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("journals blob then removes it", func(t *testing.T) {
		f := newFixture()
		img := models.GalleryImage{ID: id, CloudinaryID: "gallery_images/abc"}
		f.images.On("DeleteImage", ctx, id, mock.Anything).Return(img, nil).Once()
		f.remover.On("Schedule", ctx, []string{"gallery_images/abc"}).Return(nil).Once()
		f.remover.On("Remove", ctx, []string{"gallery_images/abc"}).Return(1).Once()

		require.NoError(t, f.service.DeleteImage(ctx, id))
		f.assertExpectations(t)
	})

	t.Run("journal failure aborts delete", func(t *testing.T) {
		f := newFixture()
		img := models.GalleryImage{ID: id, CloudinaryID: "gallery_images/abc"}
		f.images.On("DeleteImage", ctx, id, mock.Anything).Return(img, nil).Once()
		f.remover.On("Schedule", ctx, []string{"gallery_images/abc"}).Return(errors.New("redis down")).Once()

		err := f.service.DeleteImage(ctx, id)

		assert.Error(t, err)
		f.remover.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.images.On("DeleteImage", ctx, id, mock.Anything).Return(models.GalleryImage{}, storage.ErrNotFound).Once()

		assert.ErrorIs(t, f.service.DeleteImage(ctx, id), storage.ErrNotFound)
		f.assertExpectations(t)
	})
}

func TestImageService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	galleryID := uuid.New()
	f := newFixture()
	images := []models.GalleryImage{{ID: uuid.New(), Order: 0}, {ID: uuid.New(), Order: 1}}
	f.images.On("GetImagesByGallery", ctx, galleryID).Return(images, nil).Once()
	f.images.On("GetImage", ctx, images[1].ID).Return(images[1], nil).Once()

	list, err := f.service.ListGalleryImages(ctx, galleryID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	img, err := f.service.GetImage(ctx, images[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Order)
	f.assertExpectations(t)
}
