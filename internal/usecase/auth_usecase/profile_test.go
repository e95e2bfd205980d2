package auth

import (
	"context"
	"testing"

	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProfile_UnknownUser(t *testing.T) {
	users := new(UserRepoMock)
	uc := NewProfileUsecase(users)

	users.On("FindByID", mock.Anything, int64(999)).
		Return(nil, repository.ErrUserNotFound)

	_, err := uc.Execute(context.Background(), 999)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	uc := NewProfileUsecase(users)

	u := activeUser()
	u.IsActive = false
	users.On("FindByID", mock.Anything, int64(1)).Return(u, nil)

	_, err := uc.Execute(context.Background(), 1)

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestProfile_HidesPasswordHash(t *testing.T) {
	users := new(UserRepoMock)
	uc := NewProfileUsecase(users)

	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(), nil)

	user, err := uc.Execute(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Taro", user.Name)
	assert.Equal(t, "", user.PasswordHash)
}
