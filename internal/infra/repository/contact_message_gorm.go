package repository

import (
	"context"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"gorm.io/gorm"
)

type ContactMessageGormRepository struct {
	db *gorm.DB
}

func NewContactMessageGormRepository(db *gorm.DB) *ContactMessageGormRepository {
	return &ContactMessageGormRepository{db: db}
}

func (r *ContactMessageGormRepository) Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error) {
	if m.Status == "" {
		m.Status = model.ContactMessageUnread
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.ContactMessage{}, err
	}
	return m, nil
}

func (r *ContactMessageGormRepository) List(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	msgs := []model.ContactMessage{}
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&msgs).Error
	if err != nil {
		return []model.ContactMessage{}, err
	}
	return msgs, nil
}

func (r *ContactMessageGormRepository) UpdateStatus(ctx context.Context, id int64, status model.ContactMessageStatus) error {
	res := r.db.WithContext(ctx).Model(&model.ContactMessage{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ContactMessageGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
