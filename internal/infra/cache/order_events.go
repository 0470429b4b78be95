package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"lumiere/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// 注文ステータス変更の配信チャンネル
const OrderStatusChannel = "lumiere:order-status"

// OrderEvents は Redis pub/sub で注文イベントを配信・購読する。
type OrderEvents struct {
	client *redis.Client
	logger *slog.Logger
}

func NewOrderEvents(client *redis.Client, logger *slog.Logger) *OrderEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderEvents{client: client, logger: logger}
}

func (p *OrderEvents) PublishOrderStatusChanged(ctx context.Context, ev model.OrderStatusChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, OrderStatusChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

// Subscribe は ctx が終わるまでイベントを流す。返したチャネルは ctx 終了後に閉じる。
func (p *OrderEvents) Subscribe(ctx context.Context) (<-chan model.OrderStatusChanged, error) {
	sub := p.client.Subscribe(ctx, OrderStatusChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe order events: %w", err)
	}

	out := make(chan model.OrderStatusChanged)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.OrderStatusChanged
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					p.logger.Warn("drop malformed order event", "err", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
