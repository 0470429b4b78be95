package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Session はカート + カートドロワーの開閉フラグ。
// 変更のたびにカート全体を Storage に同期保存する。
type Session struct {
	mu      sync.Mutex
	cart    *Cart
	drawer  bool
	storage Storage
	key     string
	logger  *slog.Logger
}

// Open は保存済みのカートを読み込む。
// 無い・壊れている場合は空カートで始める。
// 読み込み自体に失敗したときは ErrUnavailable を返す（空で上書きさせない）。
func Open(ctx context.Context, storage Storage, key string, logger *slog.Logger) (*Session, error) {
	s := newSession(storage, key, logger)

	data, err := storage.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNoData):
	case err != nil:
		s.logger.ErrorContext(ctx, "load cart failed", "key", key, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		items, err := Decode(data)
		if err != nil {
			s.logger.WarnContext(ctx, "persisted cart is corrupt, starting empty", "key", key, "err", err)
			break
		}
		s.cart = New(items...)
	}

	return s, nil
}

// OpenOrEmpty は読めなくても空カートで始める（端末ローカル保存のクライアント用）。
func OpenOrEmpty(ctx context.Context, storage Storage, key string, logger *slog.Logger) *Session {
	s, err := Open(ctx, storage, key, logger)
	if err != nil {
		return newSession(storage, key, logger)
	}
	return s
}

func newSession(storage Storage, key string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cart:    New(),
		storage: storage,
		key:     key,
		logger:  logger,
	}
}

// AddItem は数量+1（無ければ追加）してドロワーを開く。
func (s *Session) AddItem(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(p)
	s.drawer = true
	return s.persist(ctx)
}

func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	return s.persist(ctx)
}

func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(productID, quantity)
	return s.persist(ctx)
}

// Clear は注文確定後・サインアウト時に呼ぶ。
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	return s.persist(ctx)
}

// ToggleDrawer は開閉を反転する（カートの中身は変えない、保存もしない）。
func (s *Session) ToggleDrawer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawer = !s.drawer
	return s.drawer
}

func (s *Session) DrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer
}

func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len()
}

func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// 保存に失敗してもメモリ上の状態はそのまま
func (s *Session) persist(ctx context.Context) error {
	data, err := Encode(s.cart.items)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "save cart failed", "key", s.key, "err", err)
		return err
	}
	return nil
}
