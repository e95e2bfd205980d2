package model

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// 支払いステータスは注文ステータスとは別軸。
// FAILEDの注文レコードは作られない（決済失敗時はOrderを残さない）。
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// 注文ステータスの遷移可否。
// PROCESSING → SHIPPED → DELIVERED、キャンセルはPROCESSINGからのみ。
// 一度PROCESSINGを抜けたら戻れない。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	switch from {
	case OrderStatusProcessing:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

// 配送先のスナップショット。注文時点の住所を注文自身に埋め込む。
type ShippingAddress struct {
	Street     string `gorm:"type:varchar(255);not null" json:"street"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	State      string `gorm:"type:varchar(255)" json:"state"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
}

// 確定済みの注文。作成後は不変（ステータス遷移を除く）。
type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index:idx_orders_user_created" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 金額内訳（すべて最小通貨単位）
	Subtotal       int64 `gorm:"not null" json:"subtotal"`
	DiscountAmount int64 `gorm:"not null" json:"discount_amount"`
	TaxAmount      int64 `gorm:"not null" json:"tax_amount"`
	ShippingCharge int64 `gorm:"not null" json:"shipping_charge"`
	TotalPrice     int64 `gorm:"not null" json:"total_price"`

	PromoCode string `gorm:"type:varchar(50)" json:"promo_code,omitempty"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`

	// 決済結果（マスク済みサマリのみ保存）
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod string        `gorm:"type:varchar(20);not null" json:"payment_method"`
	CardBrand     string        `gorm:"type:varchar(30)" json:"card_brand,omitempty"`
	PaymentLast4  string        `gorm:"type:varchar(4)" json:"payment_last4,omitempty"`
	TransactionID string        `gorm:"type:varchar(100);not null" json:"transaction_id"`

	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_orders_user_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
