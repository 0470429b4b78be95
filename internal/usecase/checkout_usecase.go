package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
)

// Stripe側で session id に置き換わる
const checkoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	gateway  PaymentGateway
	feURL    string
	currency string
	logger   *slog.Logger
}

// gateway が nil のときはチェックアウト無効（500を返す）
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	gateway PaymentGateway,
	feURL string,
	currency string,
	logger *slog.Logger,
) *CheckoutUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutUsecase{
		tx:       tx,
		orders:   orders,
		gateway:  gateway,
		feURL:    strings.TrimRight(feURL, "/"),
		currency: currency,
		logger:   logger,
	}
}

type StartCheckoutInput struct {
	Items      []LineItemInput `json:"items"`
	SuccessURL string          `json:"successUrl"`
	CancelURL  string          `json:"cancelUrl"`
}

type StartCheckoutOutput struct {
	URL string `json:"url"`
}

// StartCheckout は pending 注文を作ってから決済セッションを作る。
// 在庫は減らさない。
func (u *CheckoutUsecase) StartCheckout(ctx context.Context, actor Actor, in StartCheckoutInput) (StartCheckoutOutput, error) {
	if u.gateway == nil {
		return StartCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "payment gateway not configured")
	}
	if actor.UserID == "" {
		return StartCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	//空カートはどこにも問い合わせない
	if len(in.Items) == 0 {
		return StartCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ID) == "" {
			return StartCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
		}
	}

	successURL, err := u.redirectURL(in.SuccessURL, "/success?session_id="+checkoutSessionPlaceholder)
	if err != nil {
		return StartCheckoutOutput{}, err
	}
	cancelURL, err := u.redirectURL(in.CancelURL, "/checkout")
	if err != nil {
		return StartCheckoutOutput{}, err
	}

	items := mergeLineItems(in.Items)

	var (
		orderID    string
		orderItems []model.OrderItem
	)

	//注文作成はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		priced, total, err := priceLineItems(ctx, r.Products(), items)
		if err != nil {
			return err
		}

		now := time.Now()
		id, err := r.Orders().Create(ctx, model.Order{
			UserID:    actor.UserID,
			Status:    model.OrderStatusPending,
			Total:     total,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, id, priced); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderID = id
		orderItems = priced
		return nil
	})
	if err != nil {
		return StartCheckoutOutput{}, err
	}

	session, err := u.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		OrderID:       orderID,
		UserID:        actor.UserID,
		CustomerEmail: actor.Email,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		Currency:      u.currency,
		Items:         orderItems,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "create checkout session failed", "order_id", orderID, "err", err)

		//決済に進めない注文は failed にしておく
		if uerr := u.orders.UpdateStatus(ctx, orderID, model.OrderStatusFailed); uerr != nil {
			u.logger.ErrorContext(ctx, "mark order failed", "order_id", orderID, "err", uerr)
		}
		return StartCheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "unable to start checkout")
	}

	if err := u.orders.SetStripeSessionID(ctx, orderID, session.ID); err != nil {
		// セッションは作れているのでリダイレクトは続行する
		u.logger.ErrorContext(ctx, "store checkout session id failed", "order_id", orderID, "session_id", session.ID, "err", err)
	}

	u.logger.InfoContext(ctx, "checkout started",
		"order_id", orderID,
		"user_id", actor.UserID,
		"items", len(orderItems),
	)

	return StartCheckoutOutput{URL: session.URL}, nil
}

// 空ならFE_URL基準のデフォルト。指定があれば http(s) の絶対URLだけ許可
func (u *CheckoutUsecase) redirectURL(raw string, defaultPath string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return u.feURL + defaultPath, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", NewHTTPError(http.StatusBadRequest, "invalid redirect url")
	}
	return raw, nil
}
