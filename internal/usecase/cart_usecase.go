package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lumiere/internal/cart"
	repo "lumiere/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は Cookieセッション単位のカート（/api/cart）。
// 状態遷移は cart パッケージに任せ、ここでは商品の存在確認と保存先の選択だけをする。
type CartUsecase struct {
	productRepo repo.ProductRepository
	storage     cart.Storage
	logger      *slog.Logger
}

func NewCartUsecase(productRepo repo.ProductRepository, storage cart.Storage, logger *slog.Logger) *CartUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartUsecase{productRepo: productRepo, storage: storage, logger: logger}
}

type CartView struct {
	Items      []cart.Item     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	DrawerOpen bool            `json:"drawerOpen"`
}

func (u *CartUsecase) open(ctx context.Context, sessionID string) (*cart.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing session")
	}
	s, err := cart.Open(ctx, u.storage, cart.SessionKey(sessionID), u.logger)
	if err != nil {
		return nil, NewHTTPError(http.StatusServiceUnavailable, "cart storage unavailable")
	}
	return s, nil
}

func view(s *cart.Session) CartView {
	return CartView{
		Items:      s.Items(),
		Total:      s.Total(),
		DrawerOpen: s.DrawerOpen(),
	}
}

func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartView, error) {
	s, err := u.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return view(s), nil
}

// 商品はDBから取り直して入れる（クライアントの価格は信用しない）
func (u *CartUsecase) AddItem(ctx context.Context, sessionID string, productID string) (CartView, error) {
	s, err := u.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := s.AddItem(ctx, p); err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}
	return view(s), nil
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, sessionID string, productID string, quantity int64) (CartView, error) {
	s, err := u.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.SetQuantity(ctx, productID, quantity); err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}
	return view(s), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID string) (CartView, error) {
	s, err := u.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.RemoveItem(ctx, productID); err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}
	return view(s), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartView, error) {
	s, err := u.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Clear(ctx); err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}
	return view(s), nil
}

// チェックアウト送信用に明細を {id, quantity} にする
func LineItemsFromCart(items []cart.Item) []LineItemInput {
	out := make([]LineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, LineItemInput{ID: it.ID, Quantity: it.Quantity})
	}
	return out
}
