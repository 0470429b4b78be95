package handler

import (
	"net/http"

	"lumiere/internal/middleware"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart のHTTP（Cookieセッション単位、ログイン不要）
type CartHandler struct {
	uc     *usecase.CartUsecase
	secure bool
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, secureCookie bool) *CartHandler {
	return &CartHandler{uc: uc, secure: secureCookie}
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /api/cart, /api/cart/items/:id を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	session := middleware.SessionCookie(h.secure)

	e.GET("/api/cart", h.getCart, session)
	e.DELETE("/api/cart", h.clear, session)
	e.POST("/api/cart/items", h.addToCart, session)
	e.PATCH("/api/cart/items/:id", h.patchItem, session)
	e.DELETE("/api/cart/items/:id", h.deleteItem, session)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), sessionIDFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("productId required"))
	}

	out, err := h.uc.AddItem(c.Request().Context(), sessionIDFromContext(c), req.ProductID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), sessionIDFromContext(c), c.Param("id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	out, err := h.uc.RemoveItem(c.Request().Context(), sessionIDFromContext(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	out, err := h.uc.ClearCart(c.Request().Context(), sessionIDFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
