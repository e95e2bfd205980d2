package model

import "time"

// カートは1ユーザーにつき1つ（最初のaddで作成）。
// チェックアウト成功時と明示クリア時は物理削除する（ソフトデリートしない）。
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
