package auth

import (
	"context"
	"errors"

	"lumiere/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// ログアウト・本人情報
type SessionUsecase struct {
	userRepo repository.UserRepository
}

func NewSessionUsecase(userRepo repository.UserRepository) *SessionUsecase {
	return &SessionUsecase{userRepo: userRepo}
}

// Logout は token_version を+1して、発行済みのトークンを全部無効にする
func (u *SessionUsecase) Logout(ctx context.Context, userID string) error {
	err := u.userRepo.IncrementTokenVersion(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (u *SessionUsecase) Me(ctx context.Context, userID string) (UserDTO, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if user == nil {
		return UserDTO{}, ErrUserNotFound
	}
	return ToUserDTO(user), nil
}
