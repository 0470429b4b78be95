package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type EmailType string

const (
	EmailAbandonedCart     EmailType = "abandoned_cart"
	EmailNewCollection     EmailType = "new_collection"
	EmailOrderConfirmation EmailType = "order_confirmation"
)

func (t EmailType) Valid() bool {
	switch t {
	case EmailAbandonedCart, EmailNewCollection, EmailOrderConfirmation:
		return true
	}
	return false
}

var emailCopySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"subject": map[string]any{"type": "string"},
		"body":    map[string]any{"type": "string"},
		"cta":     map[string]any{"type": "string"},
	},
	"required":             []string{"subject", "body", "cta"},
	"additionalProperties": false,
}

type EmailProduct struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type EmailCopyInput struct {
	Type         EmailType      `json:"type"`
	CustomerName string         `json:"customerName"`
	Products     []EmailProduct `json:"products"`
}

type EmailCopy struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	CTA     string `json:"cta"`
}

// AI未設定
var unconfiguredEmailCopy = EmailCopy{
	Subject: "Your items are waiting",
	Body:    "We noticed you left a few items behind. Come back anytime!",
	CTA:     "View your cart",
}

// AI呼び出し失敗
var failedEmailCopy = EmailCopy{
	Subject: "We saved your items",
	Body:    "Something went wrong with our AI stylist. Please try again later.",
	CTA:     "Visit our store",
}

// 管理画面のメール文面生成
type EmailCopyUsecase struct {
	completer Completer
	logger    *slog.Logger
}

func NewEmailCopyUsecase(completer Completer, logger *slog.Logger) *EmailCopyUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailCopyUsecase{completer: completer, logger: logger}
}

func (u *EmailCopyUsecase) Generate(ctx context.Context, in EmailCopyInput) (EmailCopy, error) {
	if !in.Type.Valid() {
		return EmailCopy{}, NewHTTPError(http.StatusBadRequest, "invalid email type")
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = "Valued Customer"
	}

	if u.completer == nil {
		return unconfiguredEmailCopy, nil
	}

	raw, err := u.completer.CompleteJSON(ctx, CompletionRequest{
		System:     "You are a professional minimalist email copywriter for the Lumière jewelry brand.",
		Prompt:     emailCopyPrompt(in.Type, name, in.Products),
		SchemaName: "email_copy",
		Schema:     emailCopySchema,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "email copy: completion failed", "type", in.Type, "err", err)
		return failedEmailCopy, nil
	}

	var out EmailCopy
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		u.logger.ErrorContext(ctx, "email copy: unparsable completion", "type", in.Type, "err", err)
		return failedEmailCopy, nil
	}

	if strings.TrimSpace(out.Subject) == "" {
		out.Subject = "Your items are waiting"
	}
	if strings.TrimSpace(out.Body) == "" {
		out.Body = "We saved your items for you"
	}
	if strings.TrimSpace(out.CTA) == "" {
		out.CTA = "Complete your order"
	}
	return out, nil
}

func emailCopyPrompt(t EmailType, customerName string, products []EmailProduct) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Email Type: %s\n", t)
	fmt.Fprintf(&b, "Customer Name: %s\n\n", customerName)
	b.WriteString("Product Context:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: $%s\n", p.Name, p.Price.StringFixed(2))
	}
	b.WriteString("\nWrite an elegant, clean, premium-feeling email in a calm and warm luxury tone. ")
	b.WriteString("No emojis. Keep it short and persuasive.\n")
	b.WriteString("Return ONLY JSON with subject, body and cta.")

	return b.String()
}
