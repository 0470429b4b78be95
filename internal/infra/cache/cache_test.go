package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"lumiere/internal/cart"
	"lumiere/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// REDIS_ADDR が無ければスキップ
func newRedisFixture(t *testing.T) *redisFixture {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := NewClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &redisFixture{
		storage: NewRedisCartStorage(client, time.Minute),
		events:  NewOrderEvents(client, nil),
	}
}

type redisFixture struct {
	storage *RedisCartStorage
	events  *OrderEvents
}

func TestRedisCartStorage_RoundTrip(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()
	key := cart.SessionKey(uuid.NewString())

	_, err := f.storage.Load(ctx, key)
	assert.ErrorIs(t, err, cart.ErrNoData)

	s, err := cart.Open(ctx, f.storage, key, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, model.Product{ID: "p1", Name: "Ring", Price: decimal.NewFromInt(120)}))
	require.NoError(t, s.AddItem(ctx, model.Product{ID: "p1", Name: "Ring", Price: decimal.NewFromInt(120)}))

	reopened, err := cart.Open(ctx, f.storage, key, nil)
	require.NoError(t, err)
	assert.Equal(t, "240", reopened.Total().String())
}

func TestOrderEvents_PublishSubscribe(t *testing.T) {
	f := newRedisFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := f.events.Subscribe(ctx)
	require.NoError(t, err)

	ev := model.OrderStatusChanged{
		OrderID: uuid.NewString(),
		UserID:  uuid.NewString(),
		From:    model.OrderStatusPending,
		To:      model.OrderStatusPaid,
		At:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, f.events.PublishOrderStatusChanged(ctx, ev))

	select {
	case got := <-ch:
		assert.Equal(t, ev.OrderID, got.OrderID)
		assert.Equal(t, model.OrderStatusPaid, got.To)
	case <-ctx.Done():
		t.Fatal("order event not received")
	}
}
