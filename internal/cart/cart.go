// Package cart はショッパーのカート状態（追加・削除・数量変更・合計）を扱う。
// ネットワークにもDBにも依存しない純粋な状態遷移だけを持つ。
package cart

import (
	"slices"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Item はカートの明細。商品情報 + 数量（1以上）。
type Item struct {
	model.Product
	Quantity int64 `json:"quantity"`
}

// LineTotal は price × quantity
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}

// Cart は明細の順序付きリスト。
// 同じ商品IDの明細は1つだけ、数量は常に1以上。
type Cart struct {
	items []Item
}

// New は明細からカートを作る（不正な明細は取り除く）。
func New(items ...Item) *Cart {
	return &Cart{items: normalize(items)}
}

// Items は明細のコピーを返す。
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Quantity は商品IDの数量（無ければ0）
func (c *Cart) Quantity(productID string) int64 {
	if i := c.index(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Add は同じ商品があれば数量+1、無ければ数量1で末尾に追加する。
func (c *Cart) Add(p model.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// Remove は明細を削除する。無ければ何もしない。
func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.items = slices.Delete(c.items, i, i+1)
}

// SetQuantity は数量を置き換える。1未満ならRemoveと同じ。
func (c *Cart) SetQuantity(productID string, quantity int64) {
	if quantity < 1 {
		c.Remove(productID)
		return
	}
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.items[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total は毎回明細から計算する（キャッシュしない）
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) index(productID string) int {
	return slices.IndexFunc(c.items, func(it Item) bool {
		return it.ID == productID
	})
}

// normalize は数量1未満・ID無しを捨て、重複IDは数量を合算する。
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	pos := make(map[string]int, len(items))

	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
