package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderUsecaseForTest(txRepos *stubTxRepos, cartRepo *cartRepoMock, addresses *addressRepoMock, pms *paymentMethodRepoMock, shippingRate string) *OrderUsecase {
	return NewOrderUsecase(
		&stubTxManager{repos: txRepos},
		cartRepo,
		cache.NoopCartCache{},
		addresses,
		pms,
		FlatRateShipping{Rate: dec(shippingRate)},
	)
}

func placeOrderFixtures(t *testing.T, txRepos *stubTxRepos, cartRepo *cartRepoMock, addresses *addressRepoMock, pms *paymentMethodRepoMock) {
	t.Helper()

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 7}, nil)
	pms.On("FindByID", mock.Anything, int64(3)).Return(model.PaymentMethod{ID: 3, IsActive: true}, nil)

	cart := model.NewCart("sess-1", time.Now())
	cart.Items = []model.CartItem{{ProductID: 1, Name: "Tire", UnitPrice: dec("850.00"), Quantity: 2}}
	cart.Recalculate()
	cartRepo.On("Find", mock.Anything, "sess-1").Return(cart, true, nil)

	txRepos.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").Return(model.Order{}, false, nil)
	txRepos.products.On("FindByID", mock.Anything, int64(1)).Return(activeProduct(1, "850.00", 10), nil)
	txRepos.promotions.On("ListActiveForProducts", mock.Anything, []int64{1}, mock.Anything).Return([]model.Promotion{}, nil)
}

// 確定の基本形: 850.00 × 2 = 1700.00、割引なし・送料0
func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	txRepos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	txRepos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 7 &&
			o.Status == model.OrderStatusPending &&
			o.Subtotal.Equal(dec("1700.00")) &&
			o.DiscountTotal.IsZero() &&
			o.Total.Equal(dec("1700.00")) &&
			strings.HasPrefix(o.InvoiceNumber, "INV-") &&
			o.IdempotencyKey == "key-1"
	})).Return(int64(42), nil)
	txRepos.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 &&
			items[0].ProductID == 1 &&
			items[0].ProductNameSnapshot == "Tire" &&
			items[0].UnitPriceSnapshot.Equal(dec("850.00")) &&
			items[0].Quantity == 2
	})).Return(nil)
	txRepos.orderEvents.On("Create", mock.Anything, mock.MatchedBy(func(ev model.OrderStatusEvent) bool {
		return ev.OrderID == 42 && ev.Status == model.OrderStatusPending && ev.ChangedBy == 7
	})).Return(nil)
	cartRepo.On("Clear", mock.Anything, "sess-1").Return(nil)

	out, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.True(t, out.Subtotal.Equal(dec("1700.00")), "got %s", out.Subtotal)
	assert.True(t, out.Total.Equal(dec("1700.00")), "got %s", out.Total)

	txRepos.orders.AssertExpectations(t)
	txRepos.orderItems.AssertExpectations(t)
	txRepos.orderEvents.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

// 同じキーの再送は同じ注文を返し、カートは触らない
func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 7}, nil)
	pms.On("FindByID", mock.Anything, int64(3)).Return(model.PaymentMethod{ID: 3, IsActive: true}, nil)

	cart := model.NewCart("sess-1", time.Now())
	cart.Items = []model.CartItem{{ProductID: 1, UnitPrice: dec("850.00"), Quantity: 2}}
	cartRepo.On("Find", mock.Anything, "sess-1").Return(cart, true, nil)

	existing := model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending, Total: dec("1700.00"), IdempotencyKey: "key-1"}
	txRepos.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").Return(existing, true, nil)
	txRepos.orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)

	txRepos.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	txRepos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 最後の1本を取り合ったら条件付き減算に負けた側が409。注文もカートも無傷
func TestOrderUsecase_PlaceOrder_InsufficientStock_Conflict(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	txRepos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(false, nil)

	_, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assertHTTPStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "insufficient stock")

	txRepos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 減算成功後に明細INSERTが落ちたらエラーがトランザクション外まで伝播し（＝ロールバック）、カートも残る
func TestOrderUsecase_PlaceOrder_FailureAfterDecrement_RollsBack(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	txRepos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	txRepos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(42), nil)
	txRepos.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(errors.New("connection reset"))

	_, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assertHTTPStatus(t, err, http.StatusInternalServerError)

	txRepos.inventory.AssertCalled(t, "DecreaseStockIfEnough", mock.Anything, int64(1), int64(2))
	txRepos.orderEvents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// クーポン割引つきの確定
func TestOrderUsecase_PlaceOrder_WithCoupon(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	now := time.Now()
	coupon := model.Coupon{
		ID:           9,
		Code:         "SAVE50",
		DiscountType: model.DiscountTypeAmount,
		Value:        dec("50.00"),
		StartsAt:     now.AddDate(0, 0, -1),
		ExpiresAt:    now.AddDate(0, 0, 1),
		IsActive:     true,
	}
	txRepos.coupons.On("FindByCode", mock.Anything, "SAVE50").Return(coupon, nil)
	txRepos.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(9)).Return(true, nil)

	txRepos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	txRepos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CouponID != nil && *o.CouponID == 9 &&
			o.DiscountTotal.Equal(dec("50.00")) &&
			o.Total.Equal(dec("1650.00"))
	})).Return(int64(42), nil)
	txRepos.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)
	txRepos.orderEvents.On("Create", mock.Anything, mock.Anything).Return(nil)
	cartRepo.On("Clear", mock.Anything, "sess-1").Return(nil)

	// コードは小文字でも通る
	out, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		CouponCode:      "save50",
		IdempotencyKey:  "key-1",
	})
	assert.NoError(t, err)
	assert.True(t, out.DiscountTotal.Equal(dec("50.00")))
	assert.True(t, out.Total.Equal(dec("1650.00")), "got %s", out.Total)

	txRepos.coupons.AssertExpectations(t)
}

// 使用回数の上限は条件付き加算が守る。負けたら409
func TestOrderUsecase_PlaceOrder_CouponCapReached_Conflict(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	now := time.Now()
	coupon := model.Coupon{
		ID:           9,
		Code:         "SAVE50",
		DiscountType: model.DiscountTypeAmount,
		Value:        dec("50.00"),
		StartsAt:     now.AddDate(0, 0, -1),
		ExpiresAt:    now.AddDate(0, 0, 1),
		IsActive:     true,
	}
	txRepos.coupons.On("FindByCode", mock.Anything, "SAVE50").Return(coupon, nil)
	txRepos.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(9)).Return(false, nil)

	_, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		CouponCode:      "SAVE50",
		IdempotencyKey:  "key-1",
	})
	assertHTTPStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "usage limit")

	txRepos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 割引は小計で打ち止め。totalが負になることはない
func TestOrderUsecase_PlaceOrder_DiscountClampedToSubtotal(t *testing.T) {
	ctx := context.Background()

	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "9.99")

	placeOrderFixtures(t, txRepos, cartRepo, addresses, pms)

	now := time.Now()
	coupon := model.Coupon{
		ID:           9,
		Code:         "MEGA",
		DiscountType: model.DiscountTypeAmount,
		Value:        dec("5000.00"),
		StartsAt:     now.AddDate(0, 0, -1),
		ExpiresAt:    now.AddDate(0, 0, 1),
		IsActive:     true,
	}
	txRepos.coupons.On("FindByCode", mock.Anything, "MEGA").Return(coupon, nil)
	txRepos.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(9)).Return(true, nil)

	txRepos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	txRepos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// subtotal 1700、割引は1700で止まり、total = 送料のみ
		return o.DiscountTotal.Equal(dec("1700.00")) && o.Total.Equal(dec("9.99"))
	})).Return(int64(42), nil)
	txRepos.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)
	txRepos.orderEvents.On("Create", mock.Anything, mock.Anything).Return(nil)
	cartRepo.On("Clear", mock.Anything, "sess-1").Return(nil)

	out, err := uc.PlaceOrder(ctx, 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		CouponCode:      "MEGA",
		IdempotencyKey:  "key-1",
	})
	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(dec("9.99")), "got %s", out.Total)
}

// 他人の住所では確定できない
func TestOrderUsecase_PlaceOrder_ForeignAddress_Forbidden(t *testing.T) {
	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 999}, nil)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestOrderUsecase_PlaceOrder_EmptyCart_BadRequest(t *testing.T) {
	txRepos := newStubTxRepos()
	cartRepo := new(cartRepoMock)
	addresses := new(addressRepoMock)
	pms := new(paymentMethodRepoMock)
	uc := newOrderUsecaseForTest(txRepos, cartRepo, addresses, pms, "0")

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 7}, nil)
	pms.On("FindByID", mock.Anything, int64(3)).Return(model.PaymentMethod{ID: 3, IsActive: true}, nil)
	cartRepo.On("Find", mock.Anything, "sess-1").Return(model.NewCart("sess-1", time.Now()), true, nil)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
		IdempotencyKey:  "key-1",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart empty")
}

func TestOrderUsecase_PlaceOrder_MissingIdempotencyKey(t *testing.T) {
	txRepos := newStubTxRepos()
	uc := newOrderUsecaseForTest(txRepos, new(cartRepoMock), new(addressRepoMock), new(paymentMethodRepoMock), "0")

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		SessionID:       "sess-1",
		AddressID:       5,
		PaymentMethodID: 3,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// GetMyOrderDetail
// =====================

// 他人の注文は404（存在も明かさない）
func TestOrderUsecase_GetMyOrderDetail_ForeignOrder_NotFound(t *testing.T) {
	txRepos := newStubTxRepos()
	uc := newOrderUsecaseForTest(txRepos, new(cartRepoMock), new(addressRepoMock), new(paymentMethodRepoMock), "0")

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 999}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), 7, 42)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestOrderUsecase_GetMyOrderDetail_Success(t *testing.T) {
	txRepos := newStubTxRepos()
	uc := newOrderUsecaseForTest(txRepos, new(cartRepoMock), new(addressRepoMock), new(paymentMethodRepoMock), "0")

	order := model.Order{ID: 42, UserID: 7, Status: model.OrderStatusInTransit, Total: dec("1700.00")}
	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(order, nil)
	txRepos.orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ProductID: 1, ProductNameSnapshot: "Tire", UnitPriceSnapshot: dec("850.00"), Quantity: 2},
	}, nil)
	txRepos.orderEvents.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderStatusEvent{
		{OrderID: 42, Status: model.OrderStatusPending},
		{OrderID: 42, Status: model.OrderStatusInTransit},
	}, nil)

	out, err := uc.GetMyOrderDetail(context.Background(), 7, 42)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, 2, len(out.Events))
}
