package auth

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeUser() *model.User {
	return &model.User{
		ID:           1,
		Name:         "Taro",
		Email:        "taro@example.com",
		PasswordHash: "hashed:pw",
		Role:         model.RoleUser,
		IsActive:     true,
	}
}

func newLoginDeps(verifyOK bool) (*UserRepoMock, *RefreshTokenRepoMock, *LoginUsecase) {
	users := new(UserRepoMock)
	tokens := new(RefreshTokenRepoMock)
	uc := NewLoginUsecase(users, tokens, stubVerifier{verifyOK}, stubIssuer{},
		stubIDGen{"rt-1"}, stubClock{testNow}, 14*24*time.Hour)
	return users, tokens, uc
}

func TestLogin_UnknownEmail(t *testing.T) {
	users, _, uc := newLoginDeps(true)

	users.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "pw",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	users, _, uc := newLoginDeps(true)

	u := activeUser()
	u.IsActive = false
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(u, nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email: "taro@example.com", Password: "pw",
	})

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLogin_WrongPassword(t *testing.T) {
	users, tokens, uc := newLoginDeps(false)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(activeUser(), nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email: "taro@example.com", Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	users, tokens, uc := newLoginDeps(true)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(activeUser(), nil)

	var storedHash string
	tokens.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		storedHash = rt.TokenHash
		return rt.ID == "rt-1" &&
			rt.UserID == 1 &&
			rt.UserAgent == "test-agent" &&
			rt.UsedAt == nil &&
			rt.ExpiresAt.Equal(testNow.Add(14*24*time.Hour))
	})).Return(nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil && u.LastLoginAt.Equal(testNow)
	})).Return(nil)

	out, side, err := uc.Execute(context.Background(), LoginInput{
		Email: "taro@example.com", Password: "pw", UserAgent: "test-agent",
	})

	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)
	assert.Equal(t, "", out.User.PasswordHash)

	// Cookieに入れる平文と、DBに保存するsha256ハッシュは別物
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.NotEqual(t, side.PlainRefreshToken, storedHash)
	assert.Equal(t, hashRefreshToken(side.PlainRefreshToken), storedHash)

	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}
