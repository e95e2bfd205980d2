package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 自分の注文の参照だけを扱う。作成はCheckoutUsecase。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID             int64                 `json:"id"`
	UserID         int64                 `json:"user_id"`
	Status         string                `json:"status"`
	PaymentStatus  string                `json:"payment_status"`
	Subtotal       int64                 `json:"subtotal"`
	DiscountAmount int64                 `json:"discount_amount"`
	TaxAmount      int64                 `json:"tax_amount"`
	ShippingCharge int64                 `json:"shipping_charge"`
	TotalPrice     int64                 `json:"total_price"`
	PromoCode      string                `json:"promo_code,omitempty"`
	Address        model.ShippingAddress `json:"shipping_address"`
	PaymentMethod  string                `json:"payment_method"`
	CardBrand      string                `json:"card_brand,omitempty"`
	PaymentLast4   string                `json:"payment_last4,omitempty"`
	TransactionID  string                `json:"transaction_id"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []OrderItemOutput     `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			// 他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		ShippingCharge: o.ShippingCharge,
		TotalPrice:     o.TotalPrice,
		PromoCode:      o.PromoCode,
		Address:        o.ShippingAddress,
		PaymentMethod:  o.PaymentMethod,
		CardBrand:      o.CardBrand,
		PaymentLast4:   o.PaymentLast4,
		TransactionID:  o.TransactionID,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
