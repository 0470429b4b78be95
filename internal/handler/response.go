package handler

import (
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/domain/model"
	"lumiere/internal/middleware"
	"lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// エラーは全部 {message} で返す
type ErrorResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
}

// JWT必須 + token_version一致
func authed(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
}

// 上に加えてADMIN限定
func adminOnly(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return append(authed(cfg, userRepo), middleware.AdminRoleGuard())
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// JWT + DB で確定したユーザー情報
func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.Actor{}, false
	}
	email, _ := c.Get(middleware.CtxUserEmailKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)

	return usecase.Actor{
		UserID:  id,
		Email:   email,
		IsAdmin: role == string(model.RoleAdmin),
	}, true
}

func sessionIDFromContext(c echo.Context) string {
	sid, _ := c.Get(middleware.CtxSessionIDKey).(string)
	return sid
}
