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
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	publisher OrderEventPublisher
	logger    *slog.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, publisher OrderEventPublisher, logger *slog.Logger) *AdminOrderUsecase {
	if publisher == nil {
		publisher = NoopOrderEventPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminOrderUsecase{tx: tx, publisher: publisher, logger: logger}
}

type AdminUpdateOrderStatusInput struct {
	Status string `json:"status"`
}

type AdminOrderListOutput struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 手動で進められる遷移（paid にするのは決済Webhookだけ）
var adminTransitions = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPaid:    model.OrderStatusShipped,
	model.OrderStatusShipped: model.OrderStatusDelivered,
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.OrderStatus(f.Status) {
	case "", model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusFailed:
	default:
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out AdminOrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = AdminOrderListOutput{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})
	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新（paid -> shipped -> delivered のみ）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID string, orderID string, in AdminUpdateOrderStatusInput) (model.Order, error) {
	if actorAdminUserID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	switch newStatus {
	case model.OrderStatusShipped, model.OrderStatusDelivered:
		// OK
	case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusFailed:
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "status is managed by payment")
	default:
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		out     model.Order
		changed bool
		before  model.OrderStatus
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			out = o
			return nil
		}
		// 終端ガード
		if o.Status == model.OrderStatusDelivered || o.Status == model.OrderStatusFailed {
			return NewHTTPError(http.StatusConflict, "cannot change "+string(o.Status)+" order")
		}
		if adminTransitions[o.Status] != newStatus {
			return NewHTTPError(http.StatusConflict, "invalid status transition")
		}

		ok, err := r.Orders().TransitionStatus(ctx, orderID, o.Status, newStatus)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order was modified")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(o.Status),
			AfterJSON:    statusJSON(newStatus),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before = o.Status
		o.Status = newStatus
		out = o
		changed = true
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	if changed {
		ev := model.OrderStatusChanged{
			OrderID: out.ID,
			UserID:  out.UserID,
			From:    before,
			To:      newStatus,
			At:      time.Now(),
		}
		if err := u.publisher.PublishOrderStatusChanged(ctx, ev); err != nil {
			u.logger.ErrorContext(ctx, "publish order status failed", "order_id", out.ID, "err", err)
		}
	}
	return out, nil
}

// 期間パラメータでtime.Timeが必要なら、handlerでtime.Parseしてここに入れる
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
