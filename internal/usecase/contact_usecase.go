package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
)

type ContactUsecase struct {
	repo repo.ContactMessageRepository
}

func NewContactUsecase(r repo.ContactMessageRepository) *ContactUsecase {
	return &ContactUsecase{repo: r}
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		return NewHTTPError(http.StatusBadRequest, "all fields are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Message) > 5000 {
		return NewHTTPError(http.StatusBadRequest, "message too long")
	}

	_, err := u.repo.Create(ctx, model.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    model.ContactMessageUnread,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 管理画面用（新しい順）
func (u *ContactUsecase) List(ctx context.Context) ([]model.ContactMessage, error) {
	msgs, err := u.repo.List(ctx, 100)
	if err != nil {
		return []model.ContactMessage{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return msgs, nil
}

// MarkRead は既読にする（既読でもそのまま成功）
func (u *ContactUsecase) MarkRead(ctx context.Context, id int64) error {
	err := u.repo.UpdateStatus(ctx, id, model.ContactMessageRead)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "message not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id int64) error {
	err := u.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "message not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
