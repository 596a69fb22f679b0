package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 送料の計算方法は注入する（今は定額のみ）。
type ShippingCalculator interface {
	Cost(subtotal decimal.Decimal) decimal.Decimal
}

type FlatRateShipping struct {
	Rate decimal.Decimal
}

func (s FlatRateShipping) Cost(decimal.Decimal) decimal.Decimal {
	return s.Rate
}

type OrderUsecase struct {
	tx             repo.TransactionManager
	cartRepo       repo.CartRepository
	cartCache      cache.CartCache
	addresses      repo.AddressRepository
	paymentMethods repo.PaymentMethodRepository
	shipping       ShippingCalculator
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartCache cache.CartCache,
	addresses repo.AddressRepository,
	paymentMethods repo.PaymentMethodRepository,
	shipping ShippingCalculator,
) *OrderUsecase {
	return &OrderUsecase{
		tx:             tx,
		cartRepo:       cartRepo,
		cartCache:      cartCache,
		addresses:      addresses,
		paymentMethods: paymentMethods,
		shipping:       shipping,
	}
}

type PlaceOrderInput struct {
	SessionID       string
	AddressID       int64
	PaymentMethodID int64
	CouponCode      string
	Notes           string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
}

type OrderOutput struct {
	ID            int64              `json:"id"`
	UserID        int64              `json:"user_id"`
	Status        string             `json:"status"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	ShippingCost  decimal.Decimal    `json:"shipping_cost"`
	Total         decimal.Decimal    `json:"total"`
	InvoiceNumber string             `json:"invoice_number"`
	TrackingCode  string             `json:"tracking_code,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []OrderItemOutput  `json:"items"`
	Events        []OrderEventOutput `json:"events,omitempty"`
}

type OrderEventOutput struct {
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// 注文確定。カートのスナップショットから注文を作る。
// 在庫減算・注文作成・初回イベント・クーポン加算は1トランザクション。
// カートのクリアはコミット後（失敗時はカートも在庫も無傷のまま）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	if in.PaymentMethodID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method_id")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if len(in.Notes) > 500 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "notes too long")
	}

	//住所の存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "address not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//支払い方法は有効なもののみ
	pm, err := u.paymentMethods.FindByID(ctx, in.PaymentMethodID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "payment method not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !pm.IsActive {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment method not available")
	}

	//カート取得（ドキュメントストア側。SQLトランザクションの外）
	cart, found, err := u.cartRepo.Find(ctx, sessionID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || len(cart.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	var out OrderOutput
	replayed := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, foundKey, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if foundKey {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items, nil)
			replayed = true
			return nil
		}

		now := time.Now()

		//価格はカートのスナップショットではなく確定時点で引き直す
		lines := make([]pricedLine, 0, len(cart.Items))
		for _, ci := range cart.Items {
			if ci.Quantity <= 0 {
				return NewHTTPError(http.StatusBadRequest, "invalid quantity")
			}
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "product no longer available")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "product no longer available")
			}
			lines = append(lines, pricedLine{Product: p, Quantity: ci.Quantity})
		}

		subtotal := decimal.Zero
		for _, l := range lines {
			subtotal = subtotal.Add(l.Subtotal())
		}

		//プロモーションは最大1つ（合計割引が最大のもの）
		if err := applyBestPromotion(ctx, r.Promotions(), lines, now); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		promoDiscount := decimal.Zero
		for _, l := range lines {
			promoDiscount = promoDiscount.Add(l.PromoDiscount)
		}

		//クーポンは最大1つ。回数上限は条件付き加算で守る
		var couponID *int64
		couponDiscount := decimal.Zero
		if code := strings.ToUpper(strings.TrimSpace(in.CouponCode)); code != "" {
			c, err := r.Coupons().FindByCode(ctx, code)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid coupon")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			d, reason := evaluateCoupon(c, subtotal, now)
			if reason != "" {
				return NewHTTPError(http.StatusBadRequest, "invalid coupon: "+reason)
			}

			ok, err := r.Coupons().IncrementUsageIfAvailable(ctx, c.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "coupon usage limit reached")
			}

			couponID = &c.ID
			couponDiscount = d
		}

		//割引は合算、小計で打ち止め
		discountTotal := clampDiscount(promoDiscount.Add(couponDiscount), subtotal)
		shippingCost := u.shipping.Cost(subtotal)
		total := subtotal.Sub(discountTotal).Add(shippingCost)

		//在庫減算（足りないなら409）。同時確定は片方だけ通る
		for _, l := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.Product.ID, l.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock: "+l.Product.Name)
			}
		}

		order := model.Order{
			UserID:          userID,
			AddressID:       in.AddressID,
			PaymentMethodID: in.PaymentMethodID,
			CouponID:        couponID,
			Status:          model.OrderStatusPending,
			Subtotal:        subtotal,
			DiscountTotal:   discountTotal,
			ShippingCost:    shippingCost,
			Total:           total,
			InvoiceNumber:   newInvoiceNumber(now),
			Notes:           strings.TrimSpace(in.Notes),
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った競合はもう一度引いて同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2, nil)
				replayed = true
				return nil
			}
			return NewHTTPError(http.StatusConflict, "duplicate order")
		}

		//明細スナップショット（商品名・価格・割引）
		orderItems := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           l.Product.ID,
				ProductNameSnapshot: l.Product.Name,
				UnitPriceSnapshot:   l.Product.Price,
				Quantity:            l.Quantity,
				DiscountApplied:     l.PromoDiscount,
				CreatedAt:           now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//初回イベント（PENDING）
		if err := r.OrderEvents().Create(ctx, model.OrderStatusEvent{
			OrderID:   orderID,
			Status:    model.OrderStatusPending,
			ChangedBy: userID,
			CreatedAt: now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems, nil)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//コミット後にだけカートを消す（リプレイ時は触らない）
	if !replayed {
		if err := u.cartRepo.Clear(ctx, sessionID); err == nil {
			_ = u.cartCache.Delete(ctx, sessionID)
		}
	}

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) ([]OrderOutput, int64, error) {
	if userID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, t, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = t

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items, nil))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
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
		//他人の注文は「存在しない扱い」
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		events, err := r.OrderEvents().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items, events)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func newInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

func toOrderOutput(o model.Order, items []model.OrderItem, events []model.OrderStatusEvent) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Discount:  it.DiscountApplied,
		})
	}

	var outEvents []OrderEventOutput
	for _, ev := range events {
		outEvents = append(outEvents, OrderEventOutput{
			Status:    string(ev.Status),
			Comment:   ev.Comment,
			CreatedAt: ev.CreatedAt,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Subtotal:      o.Subtotal,
		DiscountTotal: o.DiscountTotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		InvoiceNumber: o.InvoiceNumber,
		TrackingCode:  o.TrackingCode,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
		Events:        outEvents,
	}
}
