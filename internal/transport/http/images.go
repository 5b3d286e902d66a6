package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"site_cms/internal/domain/models"
	"site_cms/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadImage godoc
// @Summary Загрузка изображения
// @Description Загружает изображение в хранилище без привязки к галерее
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param imageFile formData file true "Файл изображения"
// @Param caption formData string false "Подпись"
// @Param order formData integer false "Позиция"
// @Success 201 {object} models.GalleryImage
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Failure 413 {object} response.ErrorResponse "Превышен максимальный размер файла"
// @Router /api/images [post]
func (r *Routers) UploadImage(c echo.Context) error {
	return r.upload(c, "http.routers.UploadImage", nil)
}

// UploadGalleryImage godoc
// @Summary Загрузка изображения в галерею
// @Description Загружает изображение и добавляет ссылку на него в список галереи
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param galleryId path string true "UUID галереи" format(uuid)
// @Param imageFile formData file true "Файл изображения"
// @Param caption formData string false "Подпись"
// @Param order formData integer false "Позиция в галерее (по умолчанию в конец)"
// @Param titleImage formData boolean false "Сделать титульным"
// @Success 201 {object} models.GalleryImage
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Failure 413 {object} response.ErrorResponse "Превышен максимальный размер файла"
// @Router /api/images/gallery/{galleryId} [post]
func (r *Routers) UploadGalleryImage(c echo.Context) error {
	const op = "http.routers.UploadGalleryImage"

	id, err := parseID(c, "galleryId")
	if err != nil {
		return fail(c, r.log.With(slog.String("op", op)), err)
	}

	return r.upload(c, op, &id)
}

func (r *Routers) upload(c echo.Context, op string, galleryID *uuid.UUID) error {
	log := r.log.With(
		slog.String("op", op),
	)

	input, err := parseImageUpload(c)
	if err != nil {
		return fail(c, log, err)
	}
	input.GalleryID = galleryID

	img, err := r.ImageService.UploadImage(c.Request().Context(), input)
	if err != nil {
		return fail(c, log, err)
	}

	log.Info("image uploaded", slog.String("image_id", img.ID.String()))

	return c.JSON(http.StatusCreated, img)
}

func parseImageUpload(c echo.Context) (dto.ImageUploadInput, error) {
	var input dto.ImageUploadInput

	file, err := c.FormFile("imageFile")
	switch {
	case err == nil:
		input.File = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// the service rejects the missing file
	default:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return input, he
		}
		return input, models.NewValidationError("imageFile", "malformed multipart body")
	}

	input.Caption = c.FormValue("caption")

	if raw := strings.TrimSpace(c.FormValue("order")); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return input, models.NewValidationError("order", "must be an integer")
		}
		input.Order = &order
	}

	if raw := strings.TrimSpace(c.FormValue("titleImage")); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			return input, models.NewValidationError("titleImage", "must be a boolean")
		}
		input.TitleImage = flag
	}

	return input, nil
}

// ListGalleryImages godoc
// @Summary Изображения галереи
// @Description Возвращает изображения галереи по order, затем по дате загрузки
// @Tags images
// @Produce json
// @Param galleryId path string true "UUID галереи" format(uuid)
// @Success 200 {array} models.GalleryImage
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/images/gallery/{galleryId} [get]
func (r *Routers) ListGalleryImages(c echo.Context) error {
	const op = "http.routers.ListGalleryImages"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "galleryId")
	if err != nil {
		return fail(c, log, err)
	}

	images, err := r.ImageService.ListGalleryImages(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, images)
}

// GetImage godoc
// @Summary Получение изображения
// @Tags images
// @Produce json
// @Param imageId path string true "UUID изображения" format(uuid)
// @Success 200 {object} models.GalleryImage
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Failure 404 {object} response.ErrorResponse "Изображение не найдено"
// @Router /api/images/{imageId} [get]
func (r *Routers) GetImage(c echo.Context) error {
	const op = "http.routers.GetImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "imageId")
	if err != nil {
		return fail(c, log, err)
	}

	img, err := r.ImageService.GetImage(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, img)
}

// UpdateImage godoc
// @Summary Обновление изображения
// @Description Меняет подпись и/или позицию изображения в галерее
// @Tags images
// @Accept json
// @Produce json
// @Param imageId path string true "UUID изображения" format(uuid)
// @Param request body models.ImagePatch true "Изменяемые поля"
// @Success 200 {object} models.GalleryImage
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Failure 404 {object} response.ErrorResponse "Изображение не найдено"
// @Router /api/images/{imageId} [put]
func (r *Routers) UpdateImage(c echo.Context) error {
	const op = "http.routers.UpdateImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "imageId")
	if err != nil {
		return fail(c, log, err)
	}

	var patch models.ImagePatch
	if err := c.Bind(&patch); err != nil {
		log.Warn("failed to bind request", slog.String("error", err.Error()))
		return badRequest(c, "")
	}

	if err := c.Validate(patch); err != nil {
		return fail(c, log, err)
	}

	img, err := r.ImageService.UpdateImage(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, img)
}

// DeleteImage godoc
// @Summary Удаление изображения
// @Description Удаляет изображение, ссылку на него в галерее и файл в хранилище
// @Tags images
// @Produce json
// @Param imageId path string true "UUID изображения" format(uuid)
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Failure 404 {object} response.ErrorResponse "Изображение не найдено"
// @Router /api/images/{imageId} [delete]
func (r *Routers) DeleteImage(c echo.Context) error {
	const op = "http.routers.DeleteImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c, "imageId")
	if err != nil {
		return fail(c, log, err)
	}

	if err := r.ImageService.DeleteImage(c.Request().Context(), id); err != nil {
		return fail(c, log, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Image deleted successfully"})
}
