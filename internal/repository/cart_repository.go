package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// カートと明細をまとめて物理削除する（チェックアウト成功時・明示クリア時）
	Delete(ctx context.Context, cartID int64) error
}
