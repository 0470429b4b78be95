package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品情報をスナップショットとして保存する
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   string          `gorm:"type:uuid;not null;index" json:"-"`
	ProductID string          `gorm:"type:uuid;not null;index" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Category  Category        `gorm:"type:varchar(20)" json:"category"`
	Image     string          `gorm:"type:text" json:"image"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"-"`
}
