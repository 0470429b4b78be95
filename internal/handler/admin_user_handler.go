package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/repository"
	auth "lumiere/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc     *auth.SessionUsecase
	logger *slog.Logger
}

func NewAdminUserHandler(uc *auth.SessionUsecase, logger *slog.Logger) *AdminUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminUserHandler{uc: uc, logger: logger}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/api/admin/users/:id/force-logout", h.ForceLogout, adminOnly(cfg, userRepo)...)
}

// ForceLogout は対象ユーザーの token_version を上げて全トークンを失効させる
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	userID := c.Param("id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid user_id"))
	}

	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorJSON("user not found"))
		}
		h.logger.ErrorContext(c.Request().Context(), "force logout failed", "user_id", userID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
