package handler

import (
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/middleware"
	"lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済開始（Stripe Checkout へのリダイレクトURLを返す）
type CheckoutHandler struct {
	uc     *usecase.CheckoutUsecase
	cartUC *usecase.CartUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, cartUC *usecase.CartUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, cartUC: cartUC}
}

type cartCheckoutRequest struct {
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	guard := authed(cfg, userRepo)

	e.POST("/api/checkout", h.checkout, guard...)
	// Cookieセッションのカートから決済する
	e.POST("/api/cart/checkout", h.checkoutSessionCart, append([]echo.MiddlewareFunc{middleware.SessionCookie(cfg.IsProd())}, guard...)...)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req usecase.StartCheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.StartCheckout(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 決済に進んでもカートは消さない（成功ページで消す）
func (h *CheckoutHandler) checkoutSessionCart(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req cartCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	ctx := c.Request().Context()
	view, err := h.cartUC.GetCart(ctx, sessionIDFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.StartCheckout(ctx, actor, usecase.StartCheckoutInput{
		Items:      usecase.LineItemsFromCart(view.Items),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
