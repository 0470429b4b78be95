package auth

import (
	"context"

	"lumiere/internal/domain/model"
)

// EnsureAdmin は起動時に管理者アカウントを用意する。
// 既にいれば role だけ ADMIN にそろえる（パスワードは変えない）。
func (u *RegisterUserUsecase) EnsureAdmin(ctx context.Context, email string, password string) (created bool, err error) {
	existing, err := u.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}

	if existing != nil {
		if existing.Role == model.RoleAdmin {
			return false, nil
		}
		existing.Role = model.RoleAdmin
		existing.UpdatedAt = u.clock.Now()
		return false, u.userRepo.Update(ctx, existing)
	}

	if _, err := u.createUser(ctx, RegisterUserInput{Email: email, Password: password, Name: "Admin"}, model.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
