package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoupon_WithinWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	base := Coupon{
		IsActive:  true,
		StartsAt:  now.AddDate(0, 0, -1),
		ExpiresAt: now.AddDate(0, 0, 1),
	}

	assert.True(t, base.WithinWindow(now))

	inactive := base
	inactive.IsActive = false
	assert.False(t, inactive.WithinWindow(now))

	notStarted := base
	notStarted.StartsAt = now.AddDate(0, 0, 1)
	assert.False(t, notStarted.WithinWindow(now))

	expired := base
	expired.ExpiresAt = now.AddDate(0, 0, -1)
	assert.False(t, expired.WithinWindow(now))

	// 開始ちょうどは有効、失効ちょうどは無効
	edge := base
	edge.StartsAt = now
	edge.ExpiresAt = now
	assert.False(t, edge.WithinWindow(now))
	edge.ExpiresAt = now.Add(time.Second)
	assert.True(t, edge.WithinWindow(now))
}

func TestCoupon_DiscountFor_Percent(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypePercent, Value: d("10")}

	got := c.DiscountFor(d("1700.00"))
	assert.True(t, got.Equal(d("170.00")), "got %s", got)
}

func TestCoupon_DiscountFor_Amount(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeAmount, Value: d("50.00")}

	got := c.DiscountFor(d("1700.00"))
	assert.True(t, got.Equal(d("50.00")), "got %s", got)
}

// 割引は小計を超えない
func TestCoupon_DiscountFor_NeverExceedsSubtotal(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeAmount, Value: d("5000.00")}

	got := c.DiscountFor(d("1700.00"))
	assert.True(t, got.Equal(d("1700.00")), "got %s", got)
}

func TestCoupon_DiscountFor_UnknownTypeIsZero(t *testing.T) {
	c := Coupon{DiscountType: "BOGUS", Value: d("10")}

	assert.True(t, c.DiscountFor(d("100.00")).IsZero())
}

func TestDiscountType_Known(t *testing.T) {
	assert.True(t, DiscountTypePercent.Known())
	assert.True(t, DiscountTypeAmount.Known())
	assert.False(t, DiscountType("BOGUS").Known())
}
