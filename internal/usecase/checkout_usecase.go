package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	"app/internal/payment"
	"app/internal/promo"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// CheckoutUsecase はカートを確定済み注文に変える精算パイプライン。
//
// 手順: カート読込 → スナップショット価格で小計 → プロモ評価 → 税・送料 →
// 決済シミュレータ → 在庫減算 → 注文保存 → カート削除。
// 在庫減算・注文保存・カート削除は1つのDBトランザクションに入れる。
// 途中で失敗したら全部ロールバックされるので、減算だけ残る/注文だけ残ることはない。
//
// 決済は在庫確認より先に走る。シミュレータの承認はオーソリ（与信）扱いで、
// 在庫切れで注文が成立しなかった場合は何も計上せず破棄する。
type CheckoutUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	promos   *promo.Evaluator
	payments *payment.Simulator
	notifier notification.Notifier

	taxRatePercent int64 // 既定5%
	shippingFee    int64 // 既定5（最小通貨単位の定額）
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	promos *promo.Evaluator,
	payments *payment.Simulator,
	notifier notification.Notifier,
	taxRatePercent int64,
	shippingFee int64,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:             tx,
		users:          users,
		promos:         promos,
		payments:       payments,
		notifier:       notifier,
		taxRatePercent: taxRatePercent,
		shippingFee:    shippingFee,
	}
}

type ShippingAddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CheckoutInput struct {
	PromoCode       string
	ShippingAddress ShippingAddressInput
	Payment         payment.Details
	IdempotencyKey  string
}

// 注文本体と金額内訳をまとめて返す。
type CheckoutOutput struct {
	Order           OrderOutput `json:"order"`
	AppliedDiscount int64       `json:"applied_discount"`
	TaxAmount       int64       `json:"tax_amount"`
	ShippingCharge  int64       `json:"shipping_charge"`
	FinalTotal      int64       `json:"final_total"`
	PromoApplied    bool        `json:"promo_applied"`
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	addr := in.ShippingAddress
	if strings.TrimSpace(addr.Street) == "" ||
		strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.PostalCode) == "" ||
		strings.TrimSpace(addr.Country) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping address")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var out CheckoutOutput
	replayed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら保存済みの注文を同じ内訳で返す（再減算・再課金しない）
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toCheckoutOutput(existing, items)
			replayed = true
			return nil
		}

		// カート取得。無い・空は入力エラー
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		// 小計はカートのスナップショット価格で計算する。
		// 途中で商品価格が変わっても、走っているチェックアウトの金額は変わらない。
		var subtotal int64 = 0
		for _, ci := range cartItems {
			subtotal += ci.UnitPriceSnapshot * ci.Quantity
		}

		// プロモ。未知のコードはエラーにせず割引0で進める
		discount, promoApplied := u.promos.Evaluate(in.PromoCode, subtotal)

		// 税は割引前の小計にかける。税・送料は割引対象にしない
		taxAmount := subtotal * u.taxRatePercent / 100
		shippingCharge := u.shippingFee
		finalTotal := subtotal - discount + taxAmount + shippingCharge

		// 決済（インプロセスのシミュレーション）。拒否なら何も書かずに理由コードを返す
		outcome := u.payments.Authorize(in.Payment, finalTotal)
		if !outcome.Approved {
			return NewHTTPError(http.StatusBadRequest, "payment declined: "+outcome.Code)
		}

		// 全明細の在庫を減算。1行でも足りなければerrorを返してtxごと巻き戻す
		// （承認済みの決済はオーソリ扱いなので破棄するだけでよい）
		now := time.Now()
		orderItems := make([]model.OrderItem, 0, len(cartItems))

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product in cart")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			// カート追加後に非公開化された商品は売らない
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product in cart")
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				// カート追加後に他の購入者が在庫を取った競合。カートの修正が必要
				return NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock: product %d", ci.ProductID))
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})
		}

		promoCode := ""
		if promoApplied {
			promoCode = strings.ToUpper(strings.TrimSpace(in.PromoCode))
		}

		order := model.Order{
			UserID:         userID,
			Status:         model.OrderStatusProcessing,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			TaxAmount:      taxAmount,
			ShippingCharge: shippingCharge,
			TotalPrice:     finalTotal,
			PromoCode:      promoCode,
			ShippingAddress: model.ShippingAddress{
				Street:     addr.Street,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
			},
			PaymentStatus:  model.PaymentStatusSuccessful,
			PaymentMethod:  string(outcome.Method),
			CardBrand:      outcome.CardBrand,
			PaymentLast4:   outcome.Last4,
			TransactionID:  outcome.TransactionID,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err == repo.ErrConflict {
			// 同時に同じキーが入った場合はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toCheckoutOutput(ex2, items2)
				replayed = true
				return nil
			}
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// カートは物理削除（再注文防止）
		if err := r.Carts().Delete(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toCheckoutOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}

	// 通知は注文成立後に非同期で送る。失敗してもチェックアウトは成功のまま
	if !replayed {
		u.notifyAsync(out.Order)
	}

	return out, nil
}

func (u *CheckoutUsecase) notifyAsync(o OrderOutput) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		user, err := u.users.FindByID(ctx, o.UserID)
		if err != nil || user == nil {
			log.Warnf("order confirmation skipped: user %d not found", o.UserID)
			return
		}

		if err := u.notifier.OrderPlaced(ctx, notification.OrderConfirmation{
			Email:      user.Email,
			OrderID:    o.ID,
			TotalPrice: o.TotalPrice,
			ItemCount:  len(o.Items),
		}); err != nil {
			log.Errorf("order confirmation failed: order %d: %v", o.ID, err)
		}
	}()
}

func toCheckoutOutput(o model.Order, items []model.OrderItem) CheckoutOutput {
	return CheckoutOutput{
		Order:           toOrderOutput(o, items),
		AppliedDiscount: o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		ShippingCharge:  o.ShippingCharge,
		FinalTotal:      o.TotalPrice,
		PromoApplied:    o.PromoCode != "",
	}
}
