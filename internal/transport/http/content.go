package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ContentHandlers serves list/get/create/update/delete for one list-style
// entity under a route group.
type ContentHandlers[T any, P any] struct {
	log     *slog.Logger
	name    string
	service ContentService[T, P]
}

func NewContentHandlers[T any, P any](log *slog.Logger, name string, service ContentService[T, P]) *ContentHandlers[T, P] {
	return &ContentHandlers[T, P]{
		log:     log,
		name:    name,
		service: service,
	}
}

func (h *ContentHandlers[T, P]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ContentHandlers[T, P]) logger(op string) *slog.Logger {
	return h.log.With(
		slog.String("op", "http.content."+h.name+"."+op),
	)
}

func (h *ContentHandlers[T, P]) List(c echo.Context) error {
	log := h.logger("List")

	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandlers[T, P]) Get(c echo.Context) error {
	log := h.logger("Get")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	item, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ContentHandlers[T, P]) Create(c echo.Context) error {
	log := h.logger("Create")

	var item T
	if err := c.Bind(&item); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	created, err := h.service.Create(c.Request().Context(), item)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *ContentHandlers[T, P]) Update(c echo.Context) error {
	log := h.logger("Update")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	var patch P
	if err := c.Bind(&patch); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	updated, err := h.service.Update(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *ContentHandlers[T, P]) Delete(c echo.Context) error {
	log := h.logger("Delete")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SingletonHandlers serves get/set/clear for a single-instance entity.
// present renders the stored value, or the empty shape when it is nil.
type SingletonHandlers[T any] struct {
	log     *slog.Logger
	name    string
	service SingletonService[T]
	present func(*T) any
}

func NewSingletonHandlers[T any](log *slog.Logger, name string, service SingletonService[T], present func(*T) any) *SingletonHandlers[T] {
	return &SingletonHandlers[T]{
		log:     log,
		name:    name,
		service: service,
		present: present,
	}
}

func (h *SingletonHandlers[T]) Register(g *echo.Group, path string) {
	g.GET(path, h.Get)
	g.PUT(path, h.Set)
	g.DELETE(path, h.Clear)
}

func (h *SingletonHandlers[T]) logger(op string) *slog.Logger {
	return h.log.With(
		slog.String("op", "http.singleton."+h.name+"."+op),
	)
}

func (h *SingletonHandlers[T]) Get(c echo.Context) error {
	log := h.logger("Get")

	item, err := h.service.Get(c.Request().Context())
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, h.present(item))
}

func (h *SingletonHandlers[T]) Set(c echo.Context) error {
	log := h.logger("Set")

	var item T
	if err := c.Bind(&item); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	saved, err := h.service.Set(c.Request().Context(), item)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, saved)
}

func (h *SingletonHandlers[T]) Clear(c echo.Context) error {
	log := h.logger("Clear")

	if err := h.service.Clear(c.Request().Context()); err != nil {
		return fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}
