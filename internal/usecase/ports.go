package usecase

import (
	"context"
	"errors"
	"io"

	"lumiere/internal/domain/model"
)

// 操作しているユーザー（JWTから取り出したもの）
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// 決済ゲートウェイ（Stripe Checkout）
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
}

type CheckoutSessionInput struct {
	OrderID       string
	UserID        string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Currency      string
	Items         []model.OrderItem
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Webhookで受け取った決済イベント（署名検証済み）
type PaymentEvent struct {
	Type      string
	SessionID string
	OrderID   string
	UserID    string
}

// 注文ステータス変更の配信先
type OrderEventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, ev model.OrderStatusChanged) error
}

// Redisが無い構成用
type NoopOrderEventPublisher struct{}

func (NoopOrderEventPublisher) PublishOrderStatusChanged(context.Context, model.OrderStatusChanged) error {
	return nil
}

// 生成AI（JSONだけを返させる）
type Completer interface {
	CompleteJSON(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     map[string]any
}

// 画像の保存先
var ErrObjectNotFound = errors.New("object not found")

type ObjectStorage interface {
	Put(ctx context.Context, name string, contentType string, r io.Reader) error
	Open(ctx context.Context, name string) (Object, error)
	Delete(ctx context.Context, name string) error
}

type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}
