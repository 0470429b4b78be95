package repository

import (
	"context"

	"lumiere/internal/domain/model"
)

type ContactMessageRepository interface {
	Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error)
	//新しい順
	List(ctx context.Context, limit int) ([]model.ContactMessage, error)
	// 無ければ ErrNotFound
	UpdateStatus(ctx context.Context, id int64, status model.ContactMessageStatus) error
	Delete(ctx context.Context, id int64) error
}
