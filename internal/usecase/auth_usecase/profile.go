package auth

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 認証済みユーザー本人の取得。
type ProfileUsecase struct {
	userRepo repository.UserRepository
}

func NewProfileUsecase(userRepo repository.UserRepository) *ProfileUsecase {
	return &ProfileUsecase{userRepo: userRepo}
}

func (u *ProfileUsecase) Execute(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, ErrUserInactive
	}

	safeUser := *user
	safeUser.PasswordHash = ""
	return safeUser, nil
}
