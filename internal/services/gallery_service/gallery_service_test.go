package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/handlers/slogdiscard"
	"site_cms/internal/storage"
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

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) GetGallery(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleries(ctx context.Context) ([]models.Gallery, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) CreateGallery(ctx context.Context, gallery models.Gallery, newImages []models.GalleryImage) (models.Gallery, error) {
	args := m.Called(ctx, gallery, newImages)
	if fn, ok := args.Get(0).(func(context.Context, models.Gallery, []models.GalleryImage) models.Gallery); ok {
		return fn(ctx, gallery, newImages), args.Error(1)
	}
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) UpdateGallery(ctx context.Context, gallery models.Gallery, newImages []models.GalleryImage, replaceImages bool) (models.Gallery, error) {
	args := m.Called(ctx, gallery, newImages, replaceImages)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) DeleteGallery(ctx context.Context, id uuid.UUID, beforeCommit func(context.Context, []models.GalleryImage) error) ([]models.GalleryImage, error) {
	args := m.Called(ctx, id, beforeCommit)
	return args.Get(0).([]models.GalleryImage), args.Error(1)
}

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
	if fn, ok := args.Get(0).(func(context.Context, []uuid.UUID) []models.GalleryImage); ok {
		return fn(ctx, ids), args.Error(1)
	}
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
	return args.Get(0).(models.GalleryImage), args.Error(1)
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
	service   *GalleryService
	galleries *MockGalleryRepository
	images    *MockImageRepository
	remover   *MockBlobRemover
}

func newFixture() fixture {
	f := fixture{
		galleries: new(MockGalleryRepository),
		images:    new(MockImageRepository),
		remover:   new(MockBlobRemover),
	}
	f.service = NewGalleryService(slogdiscard.NewDiscardLogger(), f.galleries, f.images, f.remover)
	return f
}

func (f fixture) assertExpectations(t *testing.T) {
	f.galleries.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.remover.AssertExpectations(t)
}

func rawImages(t *testing.T, entries ...any) *[]json.RawMessage {
	t.Helper()

	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		require.NoError(t, err)
		out = append(out, b)
	}
	return &out
}

func ptr[V any](v V) *V { return &v }

const cloudURL = "https://res.cloudinary.com/demo/image/upload/v1712/galleries/summer/beach.jpg"

func TestGalleryService_CreateGallery(t *testing.T) {
	ctx := context.Background()
	existing := models.GalleryImage{ID: uuid.New(), CloudinaryID: "gallery_images/old", ImageURL: "https://x/old.jpg", Caption: "old"}

	t.Run("name is required", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.CreateGallery(ctx, dto.GalleryRequest{Name: ptr("   ")})

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
		f.assertExpectations(t)
	})

	t.Run("missing referenced image rejects before writing", func(t *testing.T) {
		f := newFixture()
		missing := uuid.New()
		f.images.On("GetImagesByIDs", ctx, []uuid.UUID{existing.ID, missing}).
			Return([]models.GalleryImage{existing}, nil).Once()

		_, err := f.service.CreateGallery(ctx, dto.GalleryRequest{
			Name:   ptr("Summer"),
			Images: rawImages(t, existing.ID.String(), cloudURL, map[string]any{"id": missing.String()}),
		})

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "images[2]", verr.Field)
		f.galleries.AssertNotCalled(t, "CreateGallery", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("wildcard url entry rejects before writing", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.CreateGallery(ctx, dto.GalleryRequest{
			Name:   ptr("Summer"),
			Images: rawImages(t, cloudURL, "http://x.example/upload/gallery_images/*.jpg"),
		})

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "images[1]", verr.Field)
		f.images.AssertNotCalled(t, "GetImagesByIDs", mock.Anything, mock.Anything)
		f.galleries.AssertNotCalled(t, "CreateGallery", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("unparseable entry", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.CreateGallery(ctx, dto.GalleryRequest{
			Name:   ptr("Summer"),
			Images: rawImages(t, map[string]any{"caption": "no target"}),
		})

		assert.True(t, models.IsValidationError(err))
		f.assertExpectations(t)
	})

	t.Run("resolves ids and urls", func(t *testing.T) {
		f := newFixture()
		var saved models.Gallery
		var created []models.GalleryImage

		f.images.On("GetImagesByIDs", ctx, []uuid.UUID{existing.ID}).
			Return([]models.GalleryImage{existing}, nil).Once()
		f.galleries.On("CreateGallery", ctx, mock.AnythingOfType("models.Gallery"), mock.Anything).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(models.Gallery)
				created = args.Get(2).([]models.GalleryImage)
			}).
			Return(func(_ context.Context, g models.Gallery, _ []models.GalleryImage) models.Gallery {
				g.CreatedAt = time.Now()
				return g
			}, nil).Once()
		f.images.On("GetImagesByIDs", ctx, mock.Anything).
			Return(func(_ context.Context, _ []uuid.UUID) []models.GalleryImage {
				return append([]models.GalleryImage{existing}, created...)
			}, nil).Once()

		got, err := f.service.CreateGallery(ctx, dto.GalleryRequest{
			Name:      ptr(" Summer "),
			EventDate: ptr("2024-06-01"),
			Images: rawImages(t,
				existing.ID.String(),
				cloudURL,
				map[string]any{"url": cloudURL, "caption": "Sunset", "titleImage": true},
			),
		})
		require.NoError(t, err)

		assert.Equal(t, "Summer", saved.Name)
		require.NotNil(t, saved.EventDate)
		assert.Equal(t, "2024-06-01", saved.EventDate.Format("2006-01-02"))

		require.Len(t, saved.Images, 3)
		assert.Equal(t, existing.ID, *saved.Images[0].Image)
		assert.False(t, saved.Images[0].TitleImage)
		assert.True(t, saved.Images[2].TitleImage)

		require.Len(t, created, 2)
		assert.Equal(t, "galleries/summer/beach", created[0].CloudinaryID)
		assert.Equal(t, "Image 2", created[0].Caption)
		assert.Equal(t, "Sunset", created[1].Caption)
		assert.Equal(t, saved.ID, *created[0].Gallery)

		require.Len(t, got.Images, 3)
		assert.Equal(t, "old", got.Images[0].Title)
		assert.Equal(t, "Sunset", got.Images[2].Description)
		assert.True(t, got.Images[2].TitleImage)
		f.assertExpectations(t)
	})
}

func TestGalleryService_UpdateGallery(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	imageID := uuid.New()
	stored := models.Gallery{
		ID:     id,
		Name:   "Winter",
		Images: models.ImageRefs{{Image: &imageID, TitleImage: true}},
	}

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, id).Return(models.Gallery{}, storage.ErrNotFound).Once()

		_, err := f.service.UpdateGallery(ctx, id, dto.GalleryRequest{Name: ptr("x")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("omitted images keep the list", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, id).Return(stored, nil).Once()
		f.galleries.On("UpdateGallery", ctx, mock.MatchedBy(func(g models.Gallery) bool {
			return g.Name == "Winter 2024" && len(g.Images) == 1
		}), []models.GalleryImage(nil), false).
			Return(models.Gallery{ID: id, Name: "Winter 2024", Images: stored.Images}, nil).Once()
		f.images.On("GetImagesByIDs", ctx, []uuid.UUID{imageID}).
			Return([]models.GalleryImage{}, nil).Once()

		got, err := f.service.UpdateGallery(ctx, id, dto.GalleryRequest{Name: ptr("Winter 2024")})
		require.NoError(t, err)
		assert.Equal(t, "Winter 2024", got.Name)
		assert.Empty(t, got.Images, "dangling references are skipped")
		f.assertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, id).Return(stored, nil).Once()

		_, err := f.service.UpdateGallery(ctx, id, dto.GalleryRequest{Name: ptr("")})
		assert.True(t, models.IsValidationError(err))
		f.assertExpectations(t)
	})

	t.Run("bad event date", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, id).Return(stored, nil).Once()

		_, err := f.service.UpdateGallery(ctx, id, dto.GalleryRequest{EventDate: ptr("yesterday")})
		assert.True(t, models.IsValidationError(err))
		f.assertExpectations(t)
	})
}

func TestGalleryService_DeleteGallery(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.galleries.On("GetGallery", ctx, id).Return(models.Gallery{}, storage.ErrNotFound).Once()

		err := f.service.DeleteGallery(ctx, id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("journals then removes every blob once", func(t *testing.T) {
		f := newFixture()
		images := []models.GalleryImage{
			{ID: uuid.New(), CloudinaryID: "galleries/g/a"},
			{ID: uuid.New(), CloudinaryID: "galleries/g/b"},
		}

		f.galleries.On("GetGallery", ctx, id).Return(models.Gallery{ID: id}, nil).Once()
		f.galleries.On("DeleteGallery", ctx, id, mock.Anything).
			Run(func(args mock.Arguments) {
				hook := args.Get(2).(func(context.Context, []models.GalleryImage) error)
				require.NoError(t, hook(ctx, images))
			}).
			Return(images, nil).Once()
		f.remover.On("Schedule", ctx, []string{"galleries/g/a", "galleries/g/b"}).Return(nil).Once()
		f.remover.On("Remove", ctx, []string{"galleries/g/a", "galleries/g/b"}).Return(2).Once()

		require.NoError(t, f.service.DeleteGallery(ctx, id))
		f.assertExpectations(t)
	})
}

func TestGalleryService_ListGalleries_LegacyRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.galleries.On("GetGalleries", ctx).Return([]models.Gallery{{
		ID:   uuid.New(),
		Name: "Old",
		Images: models.ImageRefs{
			{ImageURL: "https://res.cloudinary.com/demo/image/upload/legacy.jpg", CloudinaryID: "legacy", TitleImage: true},
		},
	}}, nil).Once()
	f.images.On("GetImagesByIDs", ctx, []uuid.UUID(nil)).Return([]models.GalleryImage{}, nil).Once()

	got, err := f.service.ListGalleries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Images, 1)
	assert.Equal(t, "legacy", got[0].Images[0].CloudinaryID)
	assert.Nil(t, got[0].Images[0].ID)
	f.assertExpectations(t)
}

func TestTitleFlags(t *testing.T) {
	byID := func(i int) models.ImageInput { return models.ImageByID{Index: i, ID: uuid.New()} }
	flagged := func(i int, v bool) models.ImageInput {
		return models.ImageByIDWithFlag{Index: i, ID: uuid.New(), TitleImage: &v}
	}

	tests := []struct {
		name   string
		inputs []models.ImageInput
		want   []bool
	}{
		{
			name:   "first entry by default",
			inputs: []models.ImageInput{byID(0), byID(1)},
			want:   []bool{true, false},
		},
		{
			name:   "explicit true wins over default",
			inputs: []models.ImageInput{byID(0), flagged(1, true)},
			want:   []bool{false, true},
		},
		{
			name:   "first explicit true only",
			inputs: []models.ImageInput{flagged(0, true), flagged(1, true)},
			want:   []bool{true, false},
		},
		{
			name:   "explicit false on first leaves none",
			inputs: []models.ImageInput{flagged(0, false), byID(1)},
			want:   []bool{false, false},
		},
		{
			name:   "empty",
			inputs: nil,
			want:   []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titleFlags(tt.inputs))
		})
	}
}
