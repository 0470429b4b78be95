package repository

import (
	"context"
	"errors"
	"strings"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// name / description / category を対象にした全文検索
const productSearchVector = "to_tsvector('english', coalesce(name, '') || ' ' || coalesce(description, '') || ' ' || coalesce(category, ''))"

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 新しい順で返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	products := []model.Product{}

	tx := r.db.WithContext(ctx).Model(&model.Product{})
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	if err := tx.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		// uuid型カラムに不正な文字列を渡すとDBエラーになるので先に弾く
		return model.Product{}, repo.ErrNotFound
	}

	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			valid = append(valid, u.String())
		}
	}
	if len(valid) == 0 {
		return []model.Product{}, nil
	}

	products := []model.Product{}
	if err := r.db.WithContext(ctx).Where("id IN ?", valid).Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// websearch_to_tsquery なので "gold ring" / "-silver" などもそのまま渡せる
func (r *ProductGormRepository) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	products := []model.Product{}

	query = strings.TrimSpace(query)
	if query == "" {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where(productSearchVector+" @@ websearch_to_tsquery('english', ?)", query).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "ts_rank(" + productSearchVector + ", websearch_to_tsquery('english', ?)) DESC, created_at DESC",
				Vars:               []interface{}{query},
				WithoutParentheses: true,
			},
		}).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, repo.ErrConflict
		}
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return repo.ErrNotFound
	}

	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image":       p.Image,
		"stock":       p.Stock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（注文明細はスナップショットなので残る）
func (r *ProductGormRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repo.ErrNotFound
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
