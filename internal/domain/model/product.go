package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 価格はJSONで数値として返す（"120" ではなく 120）
	decimal.MarshalJSONWithoutQuotes = true
}

// 商品カテゴリ（固定）
type Category string

const (
	CategoryRings     Category = "Rings"
	CategoryNecklaces Category = "Necklaces"
	CategoryEarrings  Category = "Earrings"
	CategoryBracelets Category = "Bracelets"
)

// Categories は管理画面で選べるカテゴリ一覧。
var Categories = []Category{
	CategoryRings,
	CategoryNecklaces,
	CategoryEarrings,
	CategoryBracelets,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Category    Category        `gorm:"type:varchar(20);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	//画像URL（アップロード済みのもの）
	Image     string    `gorm:"type:text" json:"image"`
	Stock     int64     `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
