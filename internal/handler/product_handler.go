package handler

import (
	"net/http"

	"lumiere/internal/domain/model"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products と /api/search の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type productListResponse struct {
	Products []model.Product `json:"products"`
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/products", h.list)
	e.GET("/api/products/:id", h.detail)
	e.GET("/api/search", h.search)
}

func (h *ProductHandler) list(c echo.Context) error {
	items, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		//失敗しても一覧は空配列で返す
		status := http.StatusInternalServerError
		if he, ok := usecase.AsHTTPError(err); ok {
			status = he.Status
		}
		return c.JSON(status, productListResponse{Products: []model.Product{}})
	}

	return c.JSON(http.StatusOK, productListResponse{Products: items})
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) search(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Search(c.Request().Context(), c.QueryParam("q")))
}
