package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"lumiere/internal/infra/payment"
	"lumiere/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Stripeが送ってくる本文の上限
const maxWebhookBytes = 65536

// 署名検証して PaymentEvent にする
type PaymentEventParser interface {
	Parse(payload []byte, signature string) (usecase.PaymentEvent, error)
}

// 決済イベントの反映先
type PaymentEventSink interface {
	ApplyPaymentEvent(ctx context.Context, ev usecase.PaymentEvent) error
}

type WebhookHandler struct {
	parser PaymentEventParser
	sink   PaymentEventSink
	logger *slog.Logger
}

func NewWebhookHandler(parser PaymentEventParser, sink PaymentEventSink, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{parser: parser, sink: sink, logger: logger}
}

type webhookAck struct {
	Received bool `json:"received"`
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/stripe/webhook", h.receive)
}

func (h *WebhookHandler) receive(c echo.Context) error {
	sig := c.Request().Header.Get("Stripe-Signature")
	if h.parser == nil || sig == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("Webhook misconfigured"))
	}

	//署名検証は生のbodyで行う
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Webhook Error: "+err.Error()))
	}

	ev, err := h.parser.Parse(payload, sig)
	if errors.Is(err, payment.ErrWebhookMisconfigured) {
		return c.JSON(http.StatusBadRequest, errorJSON("Webhook misconfigured"))
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Webhook Error: "+err.Error()))
	}

	//DB障害は500で返してStripeに再送させる
	if err := h.sink.ApplyPaymentEvent(c.Request().Context(), ev); err != nil {
		h.logger.ErrorContext(c.Request().Context(), "apply payment event failed", "type", ev.Type, "err", err)
		return c.JSON(http.StatusInternalServerError, errorJSON("webhook handler failed"))
	}

	return c.JSON(http.StatusOK, webhookAck{Received: true})
}
