package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"site_cms/internal/config"
	appmiddleware "site_cms/internal/middleware"
	httprouters "site_cms/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// multipartOverhead is added to the upload limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// StaticMount serves a local directory under an URL prefix.
type StaticMount struct {
	Prefix string
	Dir    string
}

type Options struct {
	HTTP           config.HTTPConfig
	MaxUploadBytes int64
	Debug          bool
	Static         *StaticMount
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = httprouters.NewValidator()
	e.HTTPErrorHandler = httprouters.ErrorHandler(log)

	e.Server.ReadTimeout = opts.HTTP.ReadTimeout
	e.Server.WriteTimeout = opts.HTTP.WriteTimeout
	e.Server.IdleTimeout = opts.HTTP.IdleTimeout

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.HTTP.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	e.Use(appmiddleware.PrometheusMetrics)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (opts.MaxUploadBytes+multipartOverhead)/1024)))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if opts.Debug {
		if err := statsviz.Register(mux); err != nil {
			log.Warn("statsviz start with error", slog.String("error", err.Error()))
		}
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		opts:    opts,
	}
}

// Handler exposes the configured echo instance.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info("starting http server",
		slog.String("op", op),
		slog.String("addr", s.addr()),
	)

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	const op = "http.Server.Stop"

	ctx, cancel := context.WithTimeout(ctx, s.opts.HTTP.ShutdownTimeout)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.opts.HTTP.Host, s.opts.HTTP.Port)
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echoprometheus.NewHandler())

	if s.opts.Debug {
		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}
	}

	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.opts.Static != nil {
		s.e.Static(s.opts.Static.Prefix, s.opts.Static.Dir)
	}

	s.routers.Register(s.e.Group("/api"))
}
