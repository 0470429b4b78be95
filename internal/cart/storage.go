package cart

import (
	"context"
	"errors"
	"sync"
)

// カートを保存する固定キー
const StorageKey = "lumiere_cart"

// 保存データが無い
var ErrNoData = errors.New("cart: no persisted data")

// 保存先が読めない（一時的な障害）
var ErrUnavailable = errors.New("cart: storage unavailable")

// Storage はカートJSONの保存先。
// 見つからないときは ErrNoData を返す約束。
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// SessionKey はサーバー側セッションごとのキー
func SessionKey(sessionID string) string {
	return "session:" + sessionID + ":" + StorageKey
}

// MemoryStorage はプロセス内に保存する（テスト・Redis無し構成用）。
// ゼロ値でも使える。
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNoData
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = map[string][]byte{}
	}
	v := make([]byte, len(data))
	copy(v, data)
	m.data[key] = v
	return nil
}
