package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 確定時の明細1行。価格は確定時点で引き直したもの。
type pricedLine struct {
	Product       model.Product
	Quantity      int64
	PromoDiscount decimal.Decimal
}

func (l pricedLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// 適用できるプロモーションが複数あっても使うのは1つだけ。
// 対象行の合計割引が最大になるものを選び、行ごとの割引を埋める。
func applyBestPromotion(ctx context.Context, promos repo.PromotionRepository, lines []pricedLine, now time.Time) error {
	productIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.Product.ID)
	}

	active, err := promos.ListActiveForProducts(ctx, productIDs, now)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}

	var best decimal.Decimal
	var bestDiscounts []decimal.Decimal

	for _, promo := range active {
		ids, err := promos.ListProductIDs(ctx, promo.ID)
		if err != nil {
			return err
		}
		covered := make(map[int64]bool, len(ids))
		for _, id := range ids {
			covered[id] = true
		}

		total := decimal.Zero
		discounts := make([]decimal.Decimal, len(lines))
		for i, l := range lines {
			if !covered[l.Product.ID] {
				discounts[i] = decimal.Zero
				continue
			}
			d := promo.UnitDiscount(l.Product.Price).Mul(decimal.NewFromInt(l.Quantity))
			discounts[i] = d
			total = total.Add(d)
		}

		if total.GreaterThan(best) {
			best = total
			bestDiscounts = discounts
		}
	}

	if bestDiscounts == nil {
		return nil
	}
	for i := range lines {
		lines[i].PromoDiscount = bestDiscounts[i]
	}
	return nil
}

// クーポンがsubtotalに適用できるか評価する。
// 使えないときは理由（ユーザー向け文言）を返す。
// 使用回数の本当のガードは確定時の条件付き加算なので、ここでは目安として見るだけ。
func evaluateCoupon(c model.Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, string) {
	if !c.IsActive {
		return decimal.Zero, "coupon is not active"
	}
	if now.Before(c.StartsAt) {
		return decimal.Zero, "coupon is not yet valid"
	}
	if !now.Before(c.ExpiresAt) {
		return decimal.Zero, "coupon has expired"
	}
	if subtotal.LessThan(c.MinPurchase) {
		return decimal.Zero, "subtotal below minimum purchase"
	}
	if c.MaxUses != nil && c.UsedUses >= *c.MaxUses {
		return decimal.Zero, "coupon usage limit reached"
	}
	return c.DiscountFor(subtotal), ""
}

// 割引は合算であって重ね掛けではない。subtotalを超えたらsubtotalで止める。
func clampDiscount(discount, subtotal decimal.Decimal) decimal.Decimal {
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
