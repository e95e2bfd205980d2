package auth

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 無効・期限切れ・使用済みのリフレッシュトークン
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// リフレッシュトークンのローテーション。
// 使ったトークンはその場で失効させ、新しいペアを発行する。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, plainToken string, userAgent string) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	if plainToken == "" {
		return out, side, ErrInvalidRefreshToken
	}

	stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainToken))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrInvalidRefreshToken
		}
		return out, side, err
	}

	now := u.clock.Now()

	// 使用済みの再利用は盗難の兆候。そのユーザーの全トークンを落とす。
	if stored.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, stored.UserID)
		return out, side, ErrInvalidRefreshToken
	}
	if now.After(stored.ExpiresAt) {
		return out, side, ErrInvalidRefreshToken
	}

	user, err := u.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrInvalidRefreshToken
		}
		return out, side, err
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	// 旧トークンを使用済みに
	if err := u.rtRepo.MarkUsed(ctx, stored.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// 並行リクエストに先を越された
			return out, side, ErrInvalidRefreshToken
		}
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return out, side, err
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}

	refresh := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(plainRefresh),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		UsedAt:    nil,
	}
	if err := u.rtRepo.Create(ctx, refresh); err != nil {
		return out, side, err
	}

	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}

	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}

// ログアウト。ユーザーのリフレッシュトークンを全て破棄する。
type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
}

func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo}
}

func (u *LogoutUsecase) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidRefreshToken
	}
	return u.rtRepo.DeleteAllByUserID(ctx, userID)
}
