package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 割引の種類。PERCENTは小計に対する割合、AMOUNTは固定額。
type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeAmount  DiscountType = "AMOUNT"
)

func (t DiscountType) Known() bool {
	return t == DiscountTypePercent || t == DiscountTypeAmount
}

// コード入力型クーポン。有効期間・最低購入額・使用回数上限つき。
type Coupon struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Description  string          `gorm:"type:varchar(255)" json:"description"`
	DiscountType DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	Value        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	MinPurchase  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"min_purchase"`

	//nilなら無制限
	MaxUses  *int64 `gorm:"column:max_uses" json:"max_uses,omitempty"`
	UsedUses int64  `gorm:"column:used_uses;not null;default:0" json:"used_uses"`

	StartsAt  time.Time `gorm:"not null" json:"starts_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// nowの時点で使用できる状態か（使用回数はここでは見ない。回数は確定時の条件付き加算で守る）
func (c Coupon) WithinWindow(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartsAt) && now.Before(c.ExpiresAt)
}

// subtotalに対する割引額。subtotalを超える値は返さない。
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercent:
		d = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeAmount:
		d = c.Value
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}
