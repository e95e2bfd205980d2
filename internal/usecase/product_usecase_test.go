package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks (Product向け)
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ProductInventoryRepoMock struct{ mock.Mock }

func (m *ProductInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *ProductInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProductInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProductInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func newProductDeps() (*ProductRepoMock, *ProductInventoryRepoMock, *ProductUsecase) {
	products := new(ProductRepoMock)
	inventory := new(ProductInventoryRepoMock)
	uc := NewProductUsecase(products, inventory)
	return products, inventory, uc
}

func int64ptr(v int64) *int64 { return &v }

// =====================
// ListPublicProducts
// =====================

func TestListPublicProducts_InvalidInputs(t *testing.T) {
	_, _, uc := newProductDeps()

	cases := []struct {
		name string
		in   ListProductsInput
	}{
		{"page zero", ListProductsInput{Page: 0, Limit: 20}},
		{"limit zero", ListProductsInput{Page: 1, Limit: 0}},
		{"limit too big", ListProductsInput{Page: 1, Limit: 101}},
		{"negative min", ListProductsInput{Page: 1, Limit: 20, MinPrice: int64ptr(-1)}},
		{"min over max", ListProductsInput{Page: 1, Limit: 20, MinPrice: int64ptr(500), MaxPrice: int64ptr(100)}},
		{"bad sort", ListProductsInput{Page: 1, Limit: 20, Sort: "cheapest"}},
	}

	for _, c := range cases {
		_, err := uc.ListPublicProducts(context.Background(), c.in)
		he, ok := AsHTTPError(err)
		assert.True(t, ok, c.name)
		assert.Equal(t, 400, he.Status, c.name)
	}
}

func TestListPublicProducts_TrimsQuery(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("ListPublic", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Q == "mug" && q.Page == 1 && q.Limit == 20 && q.Sort == "price_asc"
	})).Return([]model.Product{{ID: 100, Name: "Mug", Price: 100, IsActive: true}}, int64(1), nil)

	out, err := uc.ListPublicProducts(context.Background(), ListProductsInput{
		Page: 1, Limit: 20, Q: "  mug  ", Sort: "price_asc",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, 1, out.Page)
}

// =====================
// GetProductDetail
// =====================

func TestGetProductDetail_NotFound(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("FindByID", mock.Anything, int64(999)).
		Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.GetProductDetail(context.Background(), 999)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

// 非公開商品は404として存在ごと隠す
func TestGetProductDetail_InactiveHidden(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", IsActive: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), 100)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	assert.Equal(t, "not found", he.Message)
}

func TestGetProductDetail_Success(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Price: 120, IsActive: true}, nil)

	p, err := uc.GetProductDetail(context.Background(), 100)

	assert.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
}

// =====================
// Admin create / update / delete
// =====================

func TestAdminCreateProduct_Validation(t *testing.T) {
	_, _, uc := newProductDeps()

	cases := []struct {
		name   string
		actor  int64
		in     AdminCreateProductInput
		status int
	}{
		{"unauthorized", 0, AdminCreateProductInput{Name: "Mug", Price: 100}, 401},
		{"name required", 99, AdminCreateProductInput{Name: "  ", Price: 100}, 400},
		{"negative price", 99, AdminCreateProductInput{Name: "Mug", Price: -1}, 400},
		{"negative stock", 99, AdminCreateProductInput{Name: "Mug", Price: 100, Stock: -1}, 400},
	}

	for _, c := range cases {
		_, err := uc.AdminCreateProduct(context.Background(), c.actor, c.in)
		he, ok := AsHTTPError(err)
		assert.True(t, ok, c.name)
		assert.Equal(t, c.status, he.Status, c.name)
	}
}

func TestAdminCreateProduct_Success(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Mug" && p.Price == 100 && p.Stock == 10 && p.IsActive
	})).Return(model.Product{ID: 100, Name: "Mug", Price: 100, Stock: 10, IsActive: true}, nil)

	id, err := uc.AdminCreateProduct(context.Background(), 99, AdminCreateProductInput{
		Name: "  Mug  ", Price: 100, Stock: 10, IsActive: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100), id)
}

func TestAdminUpdateProduct_NotFound(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("Update", mock.Anything, mock.Anything).Return(repo.ErrNotFound)

	err := uc.AdminUpdateProduct(context.Background(), 99, 100, AdminCreateProductInput{
		Name: "Mug", Price: 100,
	})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestAdminDeleteProduct_SoftDeletes(t *testing.T) {
	products, _, uc := newProductDeps()

	products.On("SoftDelete", mock.Anything, int64(100)).Return(nil)

	err := uc.AdminDeleteProduct(context.Background(), 99, 100)

	assert.NoError(t, err)
	products.AssertExpectations(t)
}

// =====================
// AdminUpdateInventory
// =====================

func TestAdminUpdateInventory_ReasonRequired(t *testing.T) {
	_, _, uc := newProductDeps()

	err := uc.AdminUpdateInventory(context.Background(), 99, 100, 5, "   ")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "reason required", he.Message)
}

// 履歴のDeltaは差分（新しい値 − 変更前の値）
func TestAdminUpdateInventory_RecordsDelta(t *testing.T) {
	products, inventory, uc := newProductDeps()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Mug", Stock: 10, IsActive: true}, nil)
	inventory.On("SetStock", mock.Anything, int64(100), int64(3)).Return(nil)
	inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 100 &&
			a.ActorUserID == 99 &&
			a.Delta == -7 &&
			a.Reason == "damaged in warehouse"
	})).Return(nil)

	err := uc.AdminUpdateInventory(context.Background(), 99, 100, 3, " damaged in warehouse ")

	assert.NoError(t, err)
	inventory.AssertExpectations(t)
}

func TestAdminUpdateInventory_ProductNotFound(t *testing.T) {
	products, inventory, uc := newProductDeps()

	products.On("FindByID", mock.Anything, int64(999)).
		Return(model.Product{}, repo.ErrNotFound)

	err := uc.AdminUpdateInventory(context.Background(), 99, 999, 5, "restock")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
}
