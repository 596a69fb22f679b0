package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 期間限定・商品指定のセール。コード入力は不要。
type Promotion struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"type:varchar(150);not null" json:"name"`
	Description  string          `gorm:"type:varchar(500)" json:"description"`
	DiscountType DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	Value        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	StartsAt     time.Time       `gorm:"not null" json:"starts_at"`
	EndsAt       time.Time       `gorm:"not null" json:"ends_at"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 対象商品の割り当て
type PromotionProduct struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PromotionID int64     `gorm:"not null;index:idx_promo_product,unique" json:"promotion_id"`
	ProductID   int64     `gorm:"not null;index:idx_promo_product,unique" json:"product_id"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 単価1つあたりの割引額
func (p Promotion) UnitDiscount(unitPrice decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.DiscountType {
	case DiscountTypePercent:
		d = unitPrice.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeAmount:
		d = p.Value
	default:
		return decimal.Zero
	}
	if d.GreaterThan(unitPrice) {
		return unitPrice
	}
	return d
}
