package usecase

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks (Cart向け：衝突回避)
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Delete(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func newCartDeps() (*CartRepoMock, *CartItemRepoMock, *CartProductRepoMock, *CartUsecase) {
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	products := new(CartProductRepoMock)
	uc := NewCartUsecase(carts, items, products)
	return carts, items, products, uc
}

// =====================
// GetCart
// =====================

// カートはaddで初めて作られる。無ければ空レスポンス（作成しない）
func TestGetCart_NoCart_ReturnsEmpty(t *testing.T) {
	carts, _, _, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	out, err := uc.GetCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.Equal(t, int64(0), out.Total)

	carts.AssertNotCalled(t, "GetOrCreateByUserID", mock.Anything, mock.Anything)
}

// 合計はスナップショット価格×数量の再計算
func TestGetCart_TotalFromSnapshots(t *testing.T) {
	carts, items, products, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
		{ID: 2, CartID: 7, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 350},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 120, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Plate", Price: 350, IsActive: true}, nil)

	out, err := uc.GetCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Items))
	// 現在価格120ではなくスナップショット100で計算される
	assert.Equal(t, int64(550), out.Total)
	assert.Equal(t, int64(100), out.Items[0].Price)
}

// 消えた商品・非公開商品の明細は表示からも合計からも外す
func TestGetCart_SkipsMissingAndInactiveLines(t *testing.T) {
	carts, items, products, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
		{ID: 2, CartID: 7, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 350},
		{ID: 3, CartID: 7, ProductID: 300, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 100, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{}, repo.ErrNotFound)
	products.On("FindByID", mock.Anything, int64(300)).
		Return(model.Product{ID: 300, Name: "Plate", Price: 500, IsActive: false}, nil)

	out, err := uc.GetCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(200), out.Total)
}

// 商品参照の一時的なDBエラーは明細を黙って落とさず500にする
func TestGetCart_ProductLookupError(t *testing.T) {
	carts, items, products, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{}, errors.New("db down"))

	_, err := uc.GetCart(context.Background(), 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
}

// =====================
// AddToCart
// =====================

func TestAddToCart_InvalidQuantity(t *testing.T) {
	_, _, _, uc := newCartDeps()

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 100, Quantity: 0})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestAddToCart_InactiveProduct(t *testing.T) {
	carts, _, products, uc := newCartDeps()

	carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, IsActive: false}, nil)

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 100, Quantity: 1})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "invalid product")
}

// 既存数量＋追加数量が在庫を超えるなら拒否
func TestAddToCart_StockExceeded_WithExistingQuantity(t *testing.T) {
	carts, items, products, uc := newCartDeps()

	carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 100, Stock: 3, IsActive: true}, nil)
	items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
	}, nil)

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 100, Quantity: 2})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "stock exceeded")

	items.AssertNotCalled(t, "UpsertByCartAndProduct",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// スナップショット価格は追加時点の現在価格
func TestAddToCart_SnapshotsCurrentPrice(t *testing.T) {
	carts, items, products, uc := newCartDeps()

	carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 130, Stock: 10, IsActive: true}, nil)
	items.On("ListByCartID", mock.Anything, int64(7)).
		Return([]model.CartItem{}, nil).Once()
	items.On("UpsertByCartAndProduct", mock.Anything, int64(7), int64(100), int64(2), int64(130)).
		Return(nil)
	// buildCartResponse用
	items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 130},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 100, Quantity: 2})

	assert.NoError(t, err)
	assert.Equal(t, int64(260), out.Total)

	items.AssertExpectations(t)
}

// =====================
// UpdateCartItem / DeleteCartItem
// =====================

// 他人の明細は404扱い
func TestUpdateCartItem_NotOwned(t *testing.T) {
	_, items, _, uc := newCartDeps()

	items.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(false, nil)

	_, err := uc.UpdateCartItem(context.Background(), 1, 5, UpdateCartItemInput{Quantity: 2})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCartItem_StockExceeded(t *testing.T) {
	_, items, products, uc := newCartDeps()

	items.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(5)).
		Return(model.CartItem{ID: 5, CartID: 7, ProductID: 100, Quantity: 1, UnitPriceSnapshot: 100}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 100, Stock: 3, IsActive: true}, nil)

	_, err := uc.UpdateCartItem(context.Background(), 1, 5, UpdateCartItemInput{Quantity: 4})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "stock exceeded")
}

// 所有していない明細の削除は、エラーにせず現在のカートを返す（冪等）
func TestDeleteCartItem_NotOwned_Idempotent(t *testing.T) {
	carts, items, _, uc := newCartDeps()

	items.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(false, nil)
	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	out, err := uc.DeleteCartItem(context.Background(), 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

// =====================
// ClearCart
// =====================

func TestClearCart_DeletesCart(t *testing.T) {
	carts, _, _, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	carts.On("Delete", mock.Anything, int64(7)).Return(nil)

	err := uc.ClearCart(context.Background(), 1)

	assert.NoError(t, err)
	carts.AssertExpectations(t)
}

// カートが無ければ何もしないで成功
func TestClearCart_NoCart_NoOp(t *testing.T) {
	carts, _, _, uc := newCartDeps()

	carts.On("FindByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	err := uc.ClearCart(context.Background(), 1)

	assert.NoError(t, err)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
