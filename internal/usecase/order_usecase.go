package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"github.com/shopspring/decimal"
)

// 決済イベントの種類（Stripe の event type）
const (
	PaymentEventCheckoutCompleted          = "checkout.session.completed"
	PaymentEventCheckoutAsyncSucceeded     = "checkout.session.async_payment_succeeded"
	PaymentEventCheckoutExpired            = "checkout.session.expired"
	PaymentEventCheckoutAsyncPaymentFailed = "checkout.session.async_payment_failed"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	publisher OrderEventPublisher
	logger    *slog.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	publisher OrderEventPublisher,
	logger *slog.Logger,
) *OrderUsecase {
	if publisher == nil {
		publisher = NoopOrderEventPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderUsecase{tx: tx, orders: orders, publisher: publisher, logger: logger}
}

// 本人の注文。管理者は全件
func (u *OrderUsecase) ListOrders(ctx context.Context, actor Actor) ([]model.Order, error) {
	if actor.UserID == "" {
		return []model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var (
		orders []model.Order
		err    error
	)
	if actor.IsAdmin {
		orders, err = u.orders.ListAll(ctx)
	} else {
		orders, err = u.orders.ListByUserID(ctx, actor.UserID)
	}
	if err != nil {
		return []model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return orders, nil
}

type CreateOrderInput struct {
	Items []LineItemInput `json:"items"`
	//クライアント計算の合計（検証にだけ使う）
	Total           *decimal.Decimal `json:"total"`
	StripeSessionID string           `json:"stripeSessionId"`
}

// PlaceOrder は pending 注文を作る。価格はカタログから取り直す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor Actor, in CreateOrderInput) (model.Order, error) {
	if actor.UserID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ID) == "" {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
		}
	}

	items := mergeLineItems(in.Items)

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		priced, total, err := priceLineItems(ctx, r.Products(), items)
		if err != nil {
			return err
		}

		if in.Total != nil && !in.Total.Equal(total) {
			u.logger.WarnContext(ctx, "client total ignored",
				"user_id", actor.UserID,
				"client_total", in.Total.String(),
				"catalog_total", total.String(),
			)
		}

		now := time.Now()
		order := model.Order{
			UserID:    actor.UserID,
			Status:    model.OrderStatusPending,
			Total:     total,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if sid := strings.TrimSpace(in.StripeSessionID); sid != "" {
			order.StripeSessionID = &sid
		}

		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, id, priced); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = id
		order.Items = priced
		out = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// イベント種別 -> 遷移先
func paymentEventTarget(eventType string) (model.OrderStatus, bool) {
	switch eventType {
	case PaymentEventCheckoutCompleted, PaymentEventCheckoutAsyncSucceeded:
		return model.OrderStatusPaid, true
	case PaymentEventCheckoutExpired, PaymentEventCheckoutAsyncPaymentFailed:
		return model.OrderStatusFailed, true
	}
	return "", false
}

// ApplyPaymentEvent は決済Webhookの受け口。
// pending の注文だけを paid / failed に進める。対象外のイベントは何もしない。
// エラーを返すのはDB障害のときだけ（Stripeに再送させる）。
func (u *OrderUsecase) ApplyPaymentEvent(ctx context.Context, ev PaymentEvent) error {
	to, ok := paymentEventTarget(ev.Type)
	if !ok {
		u.logger.DebugContext(ctx, "payment event ignored", "type", ev.Type)
		return nil
	}
	if ev.OrderID == "" {
		u.logger.WarnContext(ctx, "payment event without order id", "type", ev.Type, "session_id", ev.SessionID)
		return nil
	}

	order, err := u.orders.FindByID(ctx, ev.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		u.logger.WarnContext(ctx, "payment event for unknown order", "type", ev.Type, "order_id", ev.OrderID)
		return nil
	}
	if err != nil {
		return err
	}

	//再送は無視
	if order.Status == to {
		return nil
	}
	if order.Status != model.OrderStatusPending {
		u.logger.WarnContext(ctx, "payment event for settled order",
			"type", ev.Type,
			"order_id", order.ID,
			"status", order.Status,
		)
		return nil
	}

	changed := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Orders().TransitionStatus(ctx, order.ID, model.OrderStatusPending, to)
		if err != nil {
			return err
		}
		if !ok {
			// 同時に届いた別イベントが先に進めた
			return nil
		}

		if to == model.OrderStatusPaid && ev.SessionID != "" {
			if err := r.Orders().SetStripeSessionID(ctx, order.ID, ev.SessionID); err != nil {
				return err
			}
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        model.AuditActorPaymentGateway,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			BeforeJSON:   statusJSON(model.OrderStatusPending),
			AfterJSON:    statusJSON(to),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	u.logger.InfoContext(ctx, "order status changed by payment",
		"order_id", order.ID,
		"from", model.OrderStatusPending,
		"to", to,
		"event", ev.Type,
	)
	u.publish(ctx, model.OrderStatusChanged{
		OrderID: order.ID,
		UserID:  order.UserID,
		From:    model.OrderStatusPending,
		To:      to,
		At:      time.Now(),
	})
	return nil
}

// 配信の失敗は注文処理には影響させない
func (u *OrderUsecase) publish(ctx context.Context, ev model.OrderStatusChanged) {
	if err := u.publisher.PublishOrderStatusChanged(ctx, ev); err != nil {
		u.logger.ErrorContext(ctx, "publish order status failed", "order_id", ev.OrderID, "err", err)
	}
}

func statusJSON(s model.OrderStatus) string {
	return `{"status":"` + string(s) + `"}`
}
