package notification

import (
	"context"

	"github.com/labstack/gommon/log"
)

// 注文確定の通知内容。明細のサマリだけ持つ。
type OrderConfirmation struct {
	Email      string
	OrderID    int64
	TotalPrice int64
	ItemCount  int
}

// 注文確定後に通知を送る約束。
// 配送・リトライは実装側の責務で、チェックアウトを失敗させてはいけない。
type Notifier interface {
	OrderPlaced(ctx context.Context, c OrderConfirmation) error
}

// ログに書くだけの実装。メール基盤が無い環境（開発・テスト）用。
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) OrderPlaced(_ context.Context, c OrderConfirmation) error {
	log.Infof("order confirmation: to=%s order_id=%d total=%d items=%d",
		c.Email, c.OrderID, c.TotalPrice, c.ItemCount)
	return nil
}
