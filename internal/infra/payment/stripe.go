package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lumiere/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe の metadata キー
const (
	MetadataOrderID = "orderId"
	MetadataUserID  = "userId"
)

var ErrWebhookMisconfigured = errors.New("webhook misconfigured")

// StripeGateway は Checkout Session を作る
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// NewStripeGatewayWithBackends はテスト用（stripe-mock など）
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, backends)}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in usecase.CheckoutSessionInput) (usecase.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems:  make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items)),
	}
	params.Context = ctx

	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}

	for _, it := range in.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(it.Name),
		}
		// Stripe は公開URLの画像しか受け付けない
		if strings.HasPrefix(it.Image, "https://") {
			product.Images = []*string{stripe.String(it.Image)}
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(in.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(ToMinorUnits(it.Price)),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params.AddMetadata(MetadataOrderID, in.OrderID)
	params.AddMetadata(MetadataUserID, in.UserID)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return usecase.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ToMinorUnits は 120.5 -> 12050（セント）
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// WebhookParser は署名を検証して PaymentEvent にする
type WebhookParser struct {
	secret string
}

func NewWebhookParser(secret string) *WebhookParser {
	return &WebhookParser{secret: secret}
}

// Parse は署名が無い・secret未設定なら ErrWebhookMisconfigured を返す
func (p *WebhookParser) Parse(payload []byte, signature string) (usecase.PaymentEvent, error) {
	if p == nil || p.secret == "" || signature == "" {
		return usecase.PaymentEvent{}, ErrWebhookMisconfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return usecase.PaymentEvent{}, err
	}

	out := usecase.PaymentEvent{Type: string(event.Type)}

	// checkout.session.* 以外は中身を見ない
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return usecase.PaymentEvent{}, fmt.Errorf("decode checkout session: %w", err)
	}

	out.SessionID = sess.ID
	out.OrderID = sess.Metadata[MetadataOrderID]
	out.UserID = sess.Metadata[MetadataUserID]
	return out, nil
}
