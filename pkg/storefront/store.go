package storefront

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"lumiere/internal/cart"
	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

// スタイリストに繋がらないときの定型文
const FallbackReasoning = "Our stylist is unavailable. Please browse the collection."

// Store はストアフロントのクライアント状態（カート・ユーザー・商品・注文）。
// グローバルは持たず、NewStore で必要なものを渡す。
type Store struct {
	client *Client
	cart   *cart.Session
	logger *slog.Logger

	mu       sync.RWMutex
	token    string
	user     *User
	products []model.Product
	orders   []model.Order
}

// NewStore は保存済みカートを読み込む（無い・壊れていれば空カート）
func NewStore(ctx context.Context, client *Client, storage cart.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if storage == nil {
		storage = cart.NewMemoryStorage()
	}
	return &Store{
		client:   client,
		cart:     cart.OpenOrEmpty(ctx, storage, cart.StorageKey, logger),
		logger:   logger,
		products: []model.Product{},
		orders:   []model.Order{},
	}
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// 商品一覧の再取得。失敗してもキャッシュはそのまま
func (s *Store) RefreshProducts(ctx context.Context) error {
	items, err := s.client.Products(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "load products failed", "err", err)
		return err
	}
	s.mu.Lock()
	s.products = items
	s.mu.Unlock()
	return nil
}

// 未ログインなら何もしない
func (s *Store) RefreshOrders(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return nil
	}
	orders, err := s.client.Orders(ctx, token)
	if err != nil {
		s.logger.ErrorContext(ctx, "load orders failed", "err", err)
		return err
	}
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.hydrate(ctx, res.Token.AccessToken)
}

// SignUp は登録してそのままログインする
func (s *Store) SignUp(ctx context.Context, email, password, name string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if _, err := s.client.Register(ctx, email, password, name); err != nil {
		return err
	}
	return s.Login(ctx, email, password)
}

// hydrate はトークンからユーザーと注文を取り直す
func (s *Store) hydrate(ctx context.Context, token string) error {
	me, err := s.client.Me(ctx, token)
	if err != nil {
		return err
	}

	// 管理者判定に失敗しても一般ユーザーとして続ける
	isAdmin, err := s.client.AdminProfile(ctx, token)
	if err != nil {
		s.logger.WarnContext(ctx, "admin profile failed", "err", err)
		isAdmin = false
	}
	me.IsAdmin = isAdmin

	s.mu.Lock()
	s.token = token
	s.user = &me
	s.mu.Unlock()

	_ = s.RefreshOrders(ctx)
	return nil
}

// Logout はユーザー・注文・カートを全部消す
func (s *Store) Logout(ctx context.Context) error {
	token := s.Token()

	var err error
	if token != "" {
		err = s.client.Logout(ctx, token)
		if err != nil {
			s.logger.WarnContext(ctx, "server logout failed", "err", err)
		}
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.orders = []model.Order{}
	s.mu.Unlock()

	if cerr := s.cart.Clear(ctx); cerr != nil {
		return cerr
	}
	return err
}

func (s *Store) Cart() []cart.Item {
	return s.cart.Items()
}

func (s *Store) CartOpen() bool {
	return s.cart.DrawerOpen()
}

func (s *Store) AddToCart(ctx context.Context, p model.Product) error {
	return s.cart.AddItem(ctx, p)
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.cart.RemoveItem(ctx, productID)
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int64) error {
	return s.cart.SetQuantity(ctx, productID, quantity)
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.cart.Clear(ctx)
}

func (s *Store) ToggleCart() bool {
	return s.cart.ToggleDrawer()
}

func (s *Store) Total() decimal.Decimal {
	return s.cart.Total()
}

func (s *Store) lineItems() []LineItem {
	items := s.cart.Items()
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{ID: it.ID, Quantity: it.Quantity})
	}
	return out
}

// Checkout は決済ページのURLを返す。カートはここでは消さない。
func (s *Store) Checkout(ctx context.Context, successURL, cancelURL string) (string, error) {
	if s.cart.Len() == 0 {
		return "", ErrEmptyCart
	}
	token := s.Token()
	if token == "" {
		return "", ErrUnauthorized
	}

	return s.client.Checkout(ctx, token, CheckoutRequest{
		Items:      s.lineItems(),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
}

// ConfirmCheckoutSuccess は決済完了ページの処理。
// 支払い状態は Webhook が決めるので、ここではカートを空にして注文を取り直すだけ。
func (s *Store) ConfirmCheckoutSuccess(ctx context.Context) error {
	if err := s.cart.Clear(ctx); err != nil {
		return err
	}
	return s.RefreshOrders(ctx)
}

// PlaceOrder は決済を通さずに pending 注文を作る
func (s *Store) PlaceOrder(ctx context.Context, stripeSessionID string) (model.Order, error) {
	if s.cart.Len() == 0 {
		return model.Order{}, ErrEmptyCart
	}
	token := s.Token()
	if token == "" {
		return model.Order{}, ErrUnauthorized
	}

	order, err := s.client.CreateOrder(ctx, token, CreateOrderRequest{
		Items:           s.lineItems(),
		Total:           s.cart.Total(),
		StripeSessionID: stripeSessionID,
	})
	if err != nil {
		return model.Order{}, err
	}

	s.mu.Lock()
	s.orders = append([]model.Order{order}, s.orders...)
	s.mu.Unlock()

	return order, s.cart.Clear(ctx)
}

// ApplyOrderStatus は Webhook 起点のステータス変更をキャッシュに反映する
func (s *Store) ApplyOrderStatus(ev model.OrderStatusChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == ev.OrderID {
			s.orders[i].Status = ev.To
			return
		}
	}
}

// WatchOrders は ctx が終わるまで注文イベントを ApplyOrderStatus に流す
func (s *Store) WatchOrders(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return ErrUnauthorized
	}
	return s.client.WatchOrderStatus(ctx, token, s.ApplyOrderStatus)
}

func (s *Store) AddProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	token := s.Token()
	if token == "" {
		return model.Product{}, ErrUnauthorized
	}
	p, err := s.client.CreateProduct(ctx, token, in)
	if err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	token := s.Token()
	if token == "" {
		return ErrUnauthorized
	}
	if err := s.client.DeleteProduct(ctx, token, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.products = slices.DeleteFunc(s.products, func(p model.Product) bool { return p.ID == id })
	s.mu.Unlock()
	return nil
}

func (s *Store) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrUnauthorized
	}
	return s.client.UploadImage(ctx, token, filename, r)
}

// Recommend は失敗してもエラーにしない（定型文で返す）
func (s *Store) Recommend(ctx context.Context, query string) Recommendation {
	rec, err := s.client.Recommend(ctx, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "stylist request failed", "err", err)
		return Recommendation{RecommendedIDs: []string{}, Reasoning: FallbackReasoning}
	}
	if rec.RecommendedIDs == nil {
		rec.RecommendedIDs = []string{}
	}
	return rec
}
