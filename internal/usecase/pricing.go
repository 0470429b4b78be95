package usecase

import (
	"context"
	"net/http"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// クライアントから来る明細（価格は受け取らない）
type LineItemInput struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

// UUIDなら小文字の正規形にそろえる（DBが返すIDと突き合わせるため）
func normalizeID(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}

// mergeLineItems は同じIDをまとめ、数量を1以上にそろえる（順序は最初に出た順）
func mergeLineItems(items []LineItemInput) []LineItemInput {
	out := make([]LineItemInput, 0, len(items))
	pos := make(map[string]int, len(items))

	for _, it := range items {
		it.ID = normalizeID(it.ID)
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity += q
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, LineItemInput{ID: it.ID, Quantity: q})
	}
	return out
}

// priceLineItems はカタログ価格で注文明細を作る。
// 1つでもカタログに無いIDがあれば 409。
func priceLineItems(ctx context.Context, products repo.ProductRepository, items []LineItemInput) ([]model.OrderItem, decimal.Decimal, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, normalizeID(it.ID))
	}

	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		p, ok := byID[normalizeID(it.ID)]
		if !ok {
			return nil, decimal.Zero, NewHTTPError(http.StatusConflict, "product mismatch")
		}

		//スナップショット
		orderItems = append(orderItems, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
			Image:     p.Image,
			Quantity:  it.Quantity,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	return orderItems, total, nil
}
