package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// テスト用ヘルパ
// =====================

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	he, ok := AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != want {
		t.Fatalf("expected status %d, got %d (%s)", want, he.Status, he.Message)
	}
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

// =====================
// Repositoryモック
// =====================

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) GetOrCreate(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) Find(ctx context.Context, sessionID string) (model.Cart, bool, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Bool(1), args.Error(2)
}

func (m *cartRepoMock) Upsert(ctx context.Context, cart model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *cartRepoMock) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *productRepoMock) ListLowStock(ctx context.Context, threshold int64, limit int) ([]model.Product, error) {
	args := m.Called(ctx, threshold, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *orderRepoMock) SetTrackingCode(ctx context.Context, orderID int64, code string) error {
	args := m.Called(ctx, orderID, code)
	return args.Error(0)
}

func (m *orderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, since)
	total, _ := args.Get(0).(decimal.Decimal)
	return total, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) DailySalesBetween(ctx context.Context, from, to time.Time) ([]repo.DailySales, error) {
	args := m.Called(ctx, from, to)
	sales, _ := args.Get(0).([]repo.DailySales)
	return sales, args.Error(1)
}

func (m *orderRepoMock) TopSellingProducts(ctx context.Context, limit int) ([]repo.TopProduct, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]repo.TopProduct)
	return top, args.Error(1)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type orderEventRepoMock struct{ mock.Mock }

func (m *orderEventRepoMock) Create(ctx context.Context, event model.OrderStatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *orderEventRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusEvent, error) {
	args := m.Called(ctx, orderID)
	events, _ := args.Get(0).([]model.OrderStatusEvent)
	return events, args.Error(1)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *inventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *inventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type couponRepoMock struct{ mock.Mock }

func (m *couponRepoMock) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Coupon)
	return created, args.Error(1)
}

func (m *couponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *couponRepoMock) FindByID(ctx context.Context, id int64) (model.Coupon, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *couponRepoMock) List(ctx context.Context, page, limit int) ([]model.Coupon, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Coupon)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *couponRepoMock) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *couponRepoMock) IncrementUsageIfAvailable(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type promotionRepoMock struct{ mock.Mock }

func (m *promotionRepoMock) Create(ctx context.Context, p model.Promotion) (model.Promotion, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Promotion)
	return created, args.Error(1)
}

func (m *promotionRepoMock) FindByID(ctx context.Context, id int64) (model.Promotion, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Promotion)
	return p, args.Error(1)
}

func (m *promotionRepoMock) List(ctx context.Context, page, limit int) ([]model.Promotion, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Promotion)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *promotionRepoMock) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *promotionRepoMock) AssignProducts(ctx context.Context, promotionID int64, productIDs []int64) error {
	args := m.Called(ctx, promotionID, productIDs)
	return args.Error(0)
}

func (m *promotionRepoMock) ListProductIDs(ctx context.Context, promotionID int64) ([]int64, error) {
	args := m.Called(ctx, promotionID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *promotionRepoMock) ListActiveForProducts(ctx context.Context, productIDs []int64, now time.Time) ([]model.Promotion, error) {
	args := m.Called(ctx, productIDs, now)
	promos, _ := args.Get(0).([]model.Promotion)
	return promos, args.Error(1)
}

type returnRepoMock struct{ mock.Mock }

func (m *returnRepoMock) Create(ctx context.Context, ret model.Return, items []model.ReturnItem) (int64, error) {
	args := m.Called(ctx, ret, items)
	return args.Get(0).(int64), args.Error(1)
}

func (m *returnRepoMock) FindByID(ctx context.Context, id int64) (model.Return, error) {
	args := m.Called(ctx, id)
	ret, _ := args.Get(0).(model.Return)
	return ret, args.Error(1)
}

func (m *returnRepoMock) ListItems(ctx context.Context, returnID int64) ([]model.ReturnItem, error) {
	args := m.Called(ctx, returnID)
	items, _ := args.Get(0).([]model.ReturnItem)
	return items, args.Error(1)
}

func (m *returnRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Return, error) {
	args := m.Called(ctx, userID)
	rets, _ := args.Get(0).([]model.Return)
	return rets, args.Error(1)
}

func (m *returnRepoMock) ListAdmin(ctx context.Context, status string, page, limit int) ([]model.Return, int64, error) {
	args := m.Called(ctx, status, page, limit)
	rets, _ := args.Get(0).([]model.Return)
	return rets, args.Get(1).(int64), args.Error(2)
}

func (m *returnRepoMock) UpdateStatus(ctx context.Context, id int64, status model.ReturnStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type addressRepoMock struct{ mock.Mock }

func (m *addressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *addressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *addressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *addressRepoMock) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *addressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *addressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type paymentMethodRepoMock struct{ mock.Mock }

func (m *paymentMethodRepoMock) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.PaymentMethod)
	return list, args.Error(1)
}

func (m *paymentMethodRepoMock) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(model.PaymentMethod)
	return pm, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// トランザクション（テストではそのまま実行するだけ）
// =====================

type stubTxRepos struct {
	orders      *orderRepoMock
	orderItems  *orderItemRepoMock
	orderEvents *orderEventRepoMock
	products    *productRepoMock
	inventory   *inventoryRepoMock
	coupons     *couponRepoMock
	promotions  *promotionRepoMock
	returns     *returnRepoMock
}

func newStubTxRepos() *stubTxRepos {
	return &stubTxRepos{
		orders:      new(orderRepoMock),
		orderItems:  new(orderItemRepoMock),
		orderEvents: new(orderEventRepoMock),
		products:    new(productRepoMock),
		inventory:   new(inventoryRepoMock),
		coupons:     new(couponRepoMock),
		promotions:  new(promotionRepoMock),
		returns:     new(returnRepoMock),
	}
}

func (s *stubTxRepos) Orders() repo.OrderRepository           { return s.orders }
func (s *stubTxRepos) OrderItems() repo.OrderItemRepository   { return s.orderItems }
func (s *stubTxRepos) OrderEvents() repo.OrderEventRepository { return s.orderEvents }
func (s *stubTxRepos) Products() repo.ProductRepository       { return s.products }
func (s *stubTxRepos) Inventory() repo.InventoryRepository    { return s.inventory }
func (s *stubTxRepos) Coupons() repo.CouponRepository         { return s.coupons }
func (s *stubTxRepos) Promotions() repo.PromotionRepository   { return s.promotions }
func (s *stubTxRepos) Returns() repo.ReturnRepository         { return s.returns }

type stubTxManager struct {
	repos *stubTxRepos
}

func (m *stubTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}
