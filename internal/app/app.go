package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	httpapp "site_cms/internal/app/http"
	"site_cms/internal/config"
	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/repository"
	remover "site_cms/internal/services/blob_remover"
	content "site_cms/internal/services/content_service"
	gallery "site_cms/internal/services/gallery_service"
	image "site_cms/internal/services/image_service"
	"site_cms/internal/storage/blobstore"
	"site_cms/internal/storage/blobstore/cloudinarystore"
	filestorage "site_cms/internal/storage/filestorage"
	"site_cms/internal/storage/postgresql"
	redisapp "site_cms/internal/storage/redis"
	httprouters "site_cms/internal/transport/http"
)

const envProd = "prod"

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	Remover    *remover.BlobRemover
	storage    *postgresql.Storage
	redis      *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	if cfg.Storage.AutoMigrate {
		version, err := postgresql.Migrate(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("database migrated", slog.Uint64("version", uint64(version)))
	}

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, static, err := newBlobStore(log, cfg.Blob)
	if err != nil {
		storage.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redis, journal := newJournal(log, cfg.Redis)

	repo := repository.NewRepository(storage.Pool())
	blobRemover := remover.NewBlobRemover(log, store, journal)

	routers := httprouters.NewRouter(log, httprouters.Services{
		Galleries:         gallery.NewGalleryService(log, repo.Galleries, repo.Images, blobRemover),
		Images:            image.NewImageService(log, repo.Images, repo.Galleries, store, blobRemover, cfg.Blob.MaxUploadBytes),
		AboutText:         content.NewSingletonService[models.AboutText](log, "about_text", repo.AboutText),
		PiedavajumsHeader: content.NewSingletonService[models.PiedavajumsHeader](log, "piedavajums_header", repo.PiedavajumsHeader),
		Partners:          content.NewContentService[models.Partner, models.PartnerPatch](log, "partner", repo.Partners),
		Piedavajumi:       content.NewContentService[models.Piedavajums, models.PiedavajumsPatch](log, "piedavajums", repo.Piedavajumi),
		TeamMembers:       content.NewContentService[models.TeamMember, models.TeamMemberPatch](log, "team_member", repo.TeamMembers),
		Testimonials:      content.NewContentService[models.Testimonial, models.TestimonialPatch](log, "testimonial", repo.Testimonials),
	}, healthChecks(storage, redis))

	server := httpapp.New(log, httpapp.Options{
		HTTP:           cfg.HTTP,
		MaxUploadBytes: cfg.Blob.MaxUploadBytes,
		Debug:          cfg.Env != envProd,
		Static:         static,
	}, routers)
	server.BuildRouters()

	return &App{
		log:        log,
		HTTPServer: server,
		Remover:    blobRemover,
		storage:    storage,
		redis:      redis,
	}, nil
}

// NewSweeper builds a BlobRemover without the database. The returned func
// releases its connections.
func NewSweeper(log *slog.Logger, cfg *config.Config) (*remover.BlobRemover, func(), error) {
	const op = "app.NewSweeper"

	store, _, err := newBlobStore(log, cfg.Blob)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	redis, journal := newJournal(log, cfg.Redis)

	closeFn := func() {
		if redis != nil {
			_ = redis.Close()
		}
	}

	return remover.NewBlobRemover(log, store, journal), closeFn, nil
}

// Stop shuts the HTTP server down and closes the connection pools.
func (a *App) Stop(ctx context.Context) {
	const op = "app.Stop"

	log := a.log.With(slog.String("op", op))

	if err := a.HTTPServer.Stop(ctx); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error("failed to close redis", sl.Err(err))
		}
	}

	a.storage.Stop()
}

func newBlobStore(log *slog.Logger, cfg config.BlobConfig) (blobstore.BlobStore, *httpapp.StaticMount, error) {
	switch cfg.Driver {
	case config.BlobDriverLocal:
		store, err := filestorage.NewLocalFileStorage(cfg.Local.BaseDir, cfg.Local.BaseURL)
		if err != nil {
			return nil, nil, err
		}

		u, err := url.Parse(cfg.Local.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("blob.local.base_url: %w", err)
		}

		log.Info("using local blob storage", slog.String("dir", store.GetBaseDir()))

		return store, &httpapp.StaticMount{Prefix: u.Path, Dir: store.GetBaseDir()}, nil
	default:
		cld := cfg.Cloudinary
		store, err := cloudinarystore.New(log, cld.CloudName, cld.APIKey, cld.APISecret)
		if err != nil {
			return nil, nil, err
		}

		return store, nil, nil
	}
}

func newJournal(log *slog.Logger, cfg config.RedisConf) (*redisapp.Client, repository.RemovalJournal) {
	if cfg.RedisAddr == "" {
		log.Warn("redis is not configured, blob removals are not journaled")
		return nil, repository.NopRemovalJournal{}
	}

	client := redisapp.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	return client, repository.NewRedisRemovalJournal(client)
}

func healthChecks(storage *postgresql.Storage, redis *redisapp.Client) map[string]httprouters.HealthChecker {
	checks := map[string]httprouters.HealthChecker{
		"postgres": storage,
	}
	if redis != nil {
		checks["redis"] = redis
	}

	return checks
}
