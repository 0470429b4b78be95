package repository

import (
	"context"
	"errors"

	"lumiere/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（メール重複など）
var ErrConflict = errors.New("conflict")

// 一覧検索
type ProductListQuery struct {
	Limit    int
	Category model.Category
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	//複数IDをまとめて取得（存在しないIDは結果に含まれない）
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	//全文検索
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}
