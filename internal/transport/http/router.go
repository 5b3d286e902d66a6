package http

import (
	"context"
	"log/slog"

	"site_cms/internal/domain/models"
	"site_cms/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "site_cms/docs"
)

type GalleryService interface {
	CreateGallery(ctx context.Context, req dto.GalleryRequest) (models.ExpandedGallery, error)
	UpdateGallery(ctx context.Context, id uuid.UUID, req dto.GalleryRequest) (models.ExpandedGallery, error)
	GetGallery(ctx context.Context, id uuid.UUID) (models.ExpandedGallery, error)
	ListGalleries(ctx context.Context) ([]models.ExpandedGallery, error)
	DeleteGallery(ctx context.Context, id uuid.UUID) error
}

type ImageService interface {
	UploadImage(ctx context.Context, input dto.ImageUploadInput) (models.GalleryImage, error)
	ListGalleryImages(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryImage, error)
	GetImage(ctx context.Context, id uuid.UUID) (models.GalleryImage, error)
	UpdateImage(ctx context.Context, id uuid.UUID, patch models.ImagePatch) (models.GalleryImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

type ContentService[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id uuid.UUID, patch P) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SingletonService[T any] interface {
	Get(ctx context.Context) (*T, error)
	Set(ctx context.Context, item T) (T, error)
	Clear(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log               *slog.Logger
	GalleryService    GalleryService
	ImageService      ImageService
	AboutText         *SingletonHandlers[models.AboutText]
	PiedavajumsHeader *SingletonHandlers[models.PiedavajumsHeader]
	Partners          *ContentHandlers[models.Partner, models.PartnerPatch]
	Piedavajumi       *ContentHandlers[models.Piedavajums, models.PiedavajumsPatch]
	TeamMembers       *ContentHandlers[models.TeamMember, models.TeamMemberPatch]
	Testimonials      *ContentHandlers[models.Testimonial, models.TestimonialPatch]
	checks            map[string]HealthChecker
}

// Services groups the dependencies of NewRouter.
type Services struct {
	Galleries         GalleryService
	Images            ImageService
	AboutText         SingletonService[models.AboutText]
	PiedavajumsHeader SingletonService[models.PiedavajumsHeader]
	Partners          ContentService[models.Partner, models.PartnerPatch]
	Piedavajumi       ContentService[models.Piedavajums, models.PiedavajumsPatch]
	TeamMembers       ContentService[models.TeamMember, models.TeamMemberPatch]
	Testimonials      ContentService[models.Testimonial, models.TestimonialPatch]
}

func NewRouter(log *slog.Logger, services Services, checks map[string]HealthChecker) *Routers {
	return &Routers{
		log:            log,
		GalleryService: services.Galleries,
		ImageService:   services.Images,
		AboutText: NewSingletonHandlers(log, "about_text", services.AboutText, func(item *models.AboutText) any {
			if item == nil {
				return map[string]*string{"text": nil}
			}
			return map[string]*string{"text": &item.Text}
		}),
		PiedavajumsHeader: NewSingletonHandlers(log, "piedavajums_header", services.PiedavajumsHeader, func(item *models.PiedavajumsHeader) any {
			if item == nil {
				return map[string]string{"header": "", "introParagraph1": "", "introParagraph2": ""}
			}
			return item
		}),
		Partners:     NewContentHandlers(log, "partner", services.Partners),
		Piedavajumi:  NewContentHandlers(log, "piedavajums", services.Piedavajumi),
		TeamMembers:  NewContentHandlers(log, "team_member", services.TeamMembers),
		Testimonials: NewContentHandlers(log, "testimonial", services.Testimonials),
		checks:       checks,
	}
}

// Register mounts the API routes on api.
func (r *Routers) Register(api *echo.Group) {
	galleries := api.Group("/galleries")
	{
		galleries.GET("", r.ListGalleries)
		galleries.POST("", r.CreateGallery)
		galleries.GET("/:id", r.GetGallery)
		galleries.PUT("/:id", r.UpdateGallery)
		galleries.DELETE("/:id", r.DeleteGallery)
	}

	images := api.Group("/images")
	{
		images.POST("", r.UploadImage)
		images.POST("/gallery/:galleryId", r.UploadGalleryImage)
		images.GET("/gallery/:galleryId", r.ListGalleryImages)
		images.GET("/:imageId", r.GetImage)
		images.PUT("/:imageId", r.UpdateImage)
		images.DELETE("/:imageId", r.DeleteImage)
	}

	r.AboutText.Register(api, "/about-text")

	piedavajumi := api.Group("/piedavajumi")
	r.PiedavajumsHeader.Register(piedavajumi, "/header")
	r.Piedavajumi.Register(piedavajumi)

	r.Partners.Register(api.Group("/partners"))
	r.TeamMembers.Register(api.Group("/team-members"))
	r.Testimonials.Register(api.Group("/testimonials"))
}
