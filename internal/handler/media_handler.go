package handler

import (
	"net/http"
	"strconv"

	"lumiere/internal/config"
	"lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 画像のアップロードと配信
type MediaHandler struct {
	uc *usecase.UploadUsecase
}

func NewMediaHandler(uc *usecase.UploadUsecase) *MediaHandler {
	return &MediaHandler{uc: uc}
}

func (h *MediaHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/api/upload", h.upload, adminOnly(cfg, userRepo)...)
	e.GET("/images/*", h.serve)
}

func (h *MediaHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Missing file"))
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("unreadable file"))
	}
	defer f.Close()

	out, err := h.uc.UploadImage(c.Request().Context(), usecase.UploadInput{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MediaHandler) serve(c echo.Context) error {
	obj, err := h.uc.OpenImage(c.Request().Context(), c.Param("*"))
	if err != nil {
		return writeError(c, err)
	}
	defer obj.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	return c.Stream(http.StatusOK, obj.ContentType, obj)
}
