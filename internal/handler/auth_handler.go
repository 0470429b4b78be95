package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/repository"
	auth "lumiere/internal/usecase/auth_usecase"
	"lumiere/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	sessionUC  *auth.SessionUsecase      // ログアウト・本人情報
	logger     *slog.Logger
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessionUC *auth.SessionUsecase,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		sessionUC:  sessionUC,
		logger:     logger,
	}
}

// /api/auth/register のリクエストボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// /api/auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)

	guard := authed(cfg, userRepo)
	e.POST("/api/auth/logout", h.Logout, guard...)
	e.GET("/api/auth/me", h.Me, guard...)
	e.GET("/api/admin/profile", h.Profile, guard...)
}

// Register は POST /api/auth/register のハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR"))
	}
	if err := validator.ValidateRegister(req.Email, req.Password, req.Name); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR"))
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmailFormat):
			return c.JSON(http.StatusBadRequest, errorJSON("invalid email"))
		case errors.Is(err, auth.ErrPasswordTooShort):
			return c.JSON(http.StatusBadRequest, errorJSON("password must be at least 8 characters"))
		case errors.Is(err, auth.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, errorJSON("password is too weak"))
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusConflict, errorJSON("email already registered"))
		default:
			h.logger.ErrorContext(c.Request().Context(), "register failed", "err", err)
			return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
		}
	}

	return c.JSON(http.StatusCreated, out)
}

// Login は POST /api/auth/login のハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR"))
	}
	if err := validator.ValidateLogin(req.Email, req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR"))
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, errorJSON("invalid email or password"))
		case errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusForbidden, errorJSON("account disabled"))
		default:
			h.logger.ErrorContext(c.Request().Context(), "login failed", "err", err)
			return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
		}
	}

	return c.JSON(http.StatusOK, out)
}

// Logout は発行済みトークンを全部無効にする
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	if err := h.sessionUC.Logout(c.Request().Context(), userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}
		h.logger.ErrorContext(c.Request().Context(), "logout failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.sessionUC.Me(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}
		h.logger.ErrorContext(c.Request().Context(), "load me failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	return c.JSON(http.StatusOK, out)
}

// Profile は管理画面の表示切替用（roleはTokenVersionGuardがDBの値で上書き済み）
func (h *AuthHandler) Profile(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	return c.JSON(http.StatusOK, profileResponse{IsAdmin: actor.IsAdmin})
}
