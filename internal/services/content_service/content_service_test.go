package services_test

import (
	"context"
	"errors"
	"testing"

	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/handlers/slogdiscard"
	services "site_cms/internal/services/content_service"
	"site_cms/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockContentRepository[T any] struct {
	mock.Mock
}

func (m *MockContentRepository[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockContentRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockContentRepository[T]) Create(ctx context.Context, id uuid.UUID, item T) (T, error) {
	args := m.Called(ctx, id, item)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockContentRepository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (T, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockContentRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSingletonRepository[T any] struct {
	mock.Mock
}

func (m *MockSingletonRepository[T]) Get(ctx context.Context) (T, error) {
	args := m.Called(ctx)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockSingletonRepository[T]) Set(ctx context.Context, item T) (T, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockSingletonRepository[T]) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func ptr[V any](v V) *V { return &v }

func newPartnerService() (*services.ContentService[models.Partner, models.PartnerPatch], *MockContentRepository[models.Partner]) {
	repo := new(MockContentRepository[models.Partner])
	return services.NewContentService[models.Partner, models.PartnerPatch](slogdiscard.NewDiscardLogger(), "partner", repo), repo
}

func TestContentService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     models.Partner
		mockSetup func(*MockContentRepository[models.Partner])
		wantField string
		wantErr   error
	}{
		{
			name:  "trims and stores",
			input: models.Partner{Name: "  Acme ", Logo: "logo.png"},
			mockSetup: func(m *MockContentRepository[models.Partner]) {
				m.On("Create", ctx, mock.AnythingOfType("uuid.UUID"), models.Partner{Name: "Acme", Logo: "logo.png"}).
					Return(models.Partner{ID: uuid.New(), Name: "Acme", Logo: "logo.png"}, nil).Once()
			},
		},
		{
			name:      "blank name",
			input:     models.Partner{Name: "   ", Logo: "logo.png"},
			mockSetup: func(m *MockContentRepository[models.Partner]) {},
			wantField: "name",
		},
		{
			name:  "repository error",
			input: models.Partner{Name: "Acme", Logo: "logo.png"},
			mockSetup: func(m *MockContentRepository[models.Partner]) {
				m.On("Create", ctx, mock.Anything, mock.Anything).
					Return(models.Partner{}, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newPartnerService()
			tt.mockSetup(repo)

			got, err := service.Create(ctx, tt.input)

			switch {
			case tt.wantField != "":
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
			case tt.wantErr != nil:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, "Acme", got.Name)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestContentService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("only present fields", func(t *testing.T) {
		service, repo := newPartnerService()
		repo.On("Update", ctx, id, map[string]any{"logo": "new.png"}).
			Return(models.Partner{ID: id, Name: "Acme", Logo: "new.png"}, nil).Once()

		got, err := service.Update(ctx, id, models.PartnerPatch{Logo: ptr(" new.png ")})
		require.NoError(t, err)
		assert.Equal(t, "new.png", got.Logo)
		repo.AssertExpectations(t)
	})

	t.Run("present but blank", func(t *testing.T) {
		service, repo := newPartnerService()

		_, err := service.Update(ctx, id, models.PartnerPatch{Name: ptr("  ")})
		assert.True(t, models.IsValidationError(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		service, repo := newPartnerService()
		repo.On("Update", ctx, id, map[string]any{}).
			Return(models.Partner{}, storage.ErrNotFound).Once()

		_, err := service.Update(ctx, id, models.PartnerPatch{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestContentService_GetListDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	service, repo := newPartnerService()

	repo.On("List", ctx).Return([]models.Partner{{ID: id}}, nil).Once()
	repo.On("Get", ctx, id).Return(models.Partner{}, storage.ErrNotFound).Once()
	repo.On("Delete", ctx, id).Return(nil).Once()

	list, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = service.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, service.Delete(ctx, id))
	repo.AssertExpectations(t)
}

func TestSingletonService(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSingletonRepository[models.AboutText])
	service := services.NewSingletonService[models.AboutText](slogdiscard.NewDiscardLogger(), "about_text", repo)

	t.Run("get when empty", func(t *testing.T) {
		repo.On("Get", ctx).Return(models.AboutText{}, storage.ErrNotFound).Once()

		got, err := service.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set requires text", func(t *testing.T) {
		_, err := service.Set(ctx, models.AboutText{Text: " "})
		assert.True(t, models.IsValidationError(err))
	})

	t.Run("set trims", func(t *testing.T) {
		repo.On("Set", ctx, models.AboutText{Text: "hello"}).Return(models.AboutText{Text: "hello"}, nil).Once()

		got, err := service.Set(ctx, models.AboutText{Text: " hello "})
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("get after set", func(t *testing.T) {
		repo.On("Get", ctx).Return(models.AboutText{Text: "hello"}, nil).Once()

		got, err := service.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("clear missing", func(t *testing.T) {
		repo.On("Clear", ctx).Return(storage.ErrNotFound).Once()
		assert.ErrorIs(t, service.Clear(ctx), storage.ErrNotFound)
	})

	repo.AssertExpectations(t)
}
