package handler

import (
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AIスタイリストとメール文面生成
type StylistHandler struct {
	stylist *usecase.StylistUsecase
	email   *usecase.EmailCopyUsecase
}

func NewStylistHandler(stylist *usecase.StylistUsecase, email *usecase.EmailCopyUsecase) *StylistHandler {
	return &StylistHandler{stylist: stylist, email: email}
}

type stylistRequest struct {
	Query string `json:"query"`
}

func (h *StylistHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/api/ai-stylist", h.recommend)
	e.POST("/api/admin/email-copy", h.emailCopy, adminOnly(cfg, userRepo)...)
}

func (h *StylistHandler) recommend(c echo.Context) error {
	var req stylistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Missing query"))
	}

	out, err := h.stylist.Recommend(c.Request().Context(), req.Query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StylistHandler) emailCopy(c echo.Context) error {
	var req usecase.EmailCopyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.email.Generate(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
