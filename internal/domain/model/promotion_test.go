package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromotion_UnitDiscount_Percent(t *testing.T) {
	p := Promotion{DiscountType: DiscountTypePercent, Value: d("15")}

	got := p.UnitDiscount(d("850.00"))
	assert.True(t, got.Equal(d("127.50")), "got %s", got)
}

func TestPromotion_UnitDiscount_Amount(t *testing.T) {
	p := Promotion{DiscountType: DiscountTypeAmount, Value: d("30.00")}

	got := p.UnitDiscount(d("850.00"))
	assert.True(t, got.Equal(d("30.00")), "got %s", got)
}

// 単価を超える固定額は単価で打ち止め
func TestPromotion_UnitDiscount_ClampedToUnitPrice(t *testing.T) {
	p := Promotion{DiscountType: DiscountTypeAmount, Value: d("1000.00")}

	got := p.UnitDiscount(d("850.00"))
	assert.True(t, got.Equal(d("850.00")), "got %s", got)
}

func TestPromotion_UnitDiscount_UnknownTypeIsZero(t *testing.T) {
	p := Promotion{DiscountType: "BOGUS", Value: d("10")}

	assert.True(t, p.UnitDiscount(d("850.00")).IsZero())
}
