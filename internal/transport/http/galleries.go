package http

import (
	"log/slog"
	"net/http"

	"site_cms/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

// ListGalleries godoc
// @Summary Список галерей
// @Description Возвращает все галереи с развернутыми изображениями, новые первыми
// @Tags galleries
// @Produce json
// @Success 200 {array} models.ExpandedGallery
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	log := r.log.With(
		slog.String("op", op),
	)

	galleries, err := r.GalleryService.ListGalleries(c.Request().Context())
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, galleries)
}

// GetGallery godoc
// @Summary Получение галереи
// @Tags galleries
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Success 200 {object} models.ExpandedGallery
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Router /api/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	gallery, err := r.GalleryService.GetGallery(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, gallery)
}

// CreateGallery godoc
// @Summary Создание галереи
// @Description Элементы images: UUID существующего изображения, URL, {"id","titleImage"} или {"url","caption","titleImage"}
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body dto.GalleryRequest true "Данные галереи"
// @Success 201 {object} models.ExpandedGallery
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Router /api/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.GalleryRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	gallery, err := r.GalleryService.CreateGallery(c.Request().Context(), req)
	if err != nil {
		return fail(c, log, err)
	}

	log.Info("gallery created", slog.String("gallery_id", gallery.ID.String()))

	return c.JSON(http.StatusCreated, gallery)
}

// UpdateGallery godoc
// @Summary Обновление галереи
// @Description Отсутствующие поля не меняются; images заменяет весь список
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Param request body dto.GalleryRequest true "Изменяемые поля"
// @Success 200 {object} models.ExpandedGallery
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Router /api/galleries/{id} [put]
func (r *Routers) UpdateGallery(c echo.Context) error {
	const op = "http.routers.UpdateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	var req dto.GalleryRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	gallery, err := r.GalleryService.UpdateGallery(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, gallery)
}

// DeleteGallery godoc
// @Summary Удаление галереи
// @Description Удаляет галерею, ее изображения и файлы в хранилище
// @Tags galleries
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Router /api/galleries/{id} [delete]
func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, log, err)
	}

	if err := r.GalleryService.DeleteGallery(c.Request().Context(), id); err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Gallery and all associated images deleted successfully",
	})
}
