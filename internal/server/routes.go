package server

import (
	"net/http"

	"lumiere/internal/config"
	"lumiere/internal/handler"
	"lumiere/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers は main で組み立てたハンドラ一式
type Handlers struct {
	Auth         *handler.AuthHandler
	AdminUser    *handler.AdminUserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Webhook      *handler.WebhookHandler
	Stylist      *handler.StylistHandler
	Media        *handler.MediaHandler
	Contact      *handler.ContactHandler
	AuditLog     *handler.AuditLogHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//公開
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)

	//JWT（一部ADMIN）
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.Checkout.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.Stylist.RegisterRoutes(e, cfg, userRepo)
	h.Media.RegisterRoutes(e, cfg, userRepo)
	h.Contact.RegisterRoutes(e, cfg, userRepo)
	h.AuditLog.RegisterRoutes(e, cfg, userRepo)
}
