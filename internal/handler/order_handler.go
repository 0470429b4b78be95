package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lumiere/internal/config"
	"lumiere/internal/domain/model"
	"lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SSEのキープアライブ間隔
const eventsHeartbeat = 25 * time.Second

// 注文ステータス変更の購読元（Redis pub/sub）
type OrderEventSource interface {
	Subscribe(ctx context.Context) (<-chan model.OrderStatusChanged, error)
}

type orderListResponse struct {
	Orders []model.Order `json:"orders"`
}

type orderResponse struct {
	Order model.Order `json:"order"`
}

type OrderHandler struct {
	uc     *usecase.OrderUsecase
	events OrderEventSource
	logger *slog.Logger
}

// events が nil なら /api/orders/events は 503
func NewOrderHandler(uc *usecase.OrderUsecase, events OrderEventSource, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{uc: uc, events: events, logger: logger}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/api/orders")
	g.Use(authed(cfg, userRepo)...)

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/events", h.stream)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.ListOrders(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: out})
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, orderResponse{Order: out})
}

// stream は自分の注文（ADMINは全注文）のステータス変更を SSE で流す
func (h *OrderHandler) stream(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	if h.events == nil {
		return c.JSON(http.StatusServiceUnavailable, errorJSON("order events not configured"))
	}

	ctx := c.Request().Context()
	events, err := h.events.Subscribe(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "subscribe order events failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, errorJSON("order events unavailable"))
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(eventsHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !actor.IsAdmin && ev.UserID != actor.UserID {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: order-status\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
