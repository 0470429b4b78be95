package model

import "time"

// 決済Webhookなどで注文ステータスが変わったときに流すイベント
type OrderStatusChanged struct {
	OrderID string      `json:"orderId"`
	UserID  string      `json:"userId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	At      time.Time   `json:"at"`
}
