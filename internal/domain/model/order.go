package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"
	OrderStatusInPreparation OrderStatus = "IN_PREPARATION"
	OrderStatusInTransit     OrderStatus = "IN_TRANSIT"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

// 既知ステータス一覧（管理画面のプルダウンにもこの順で出す）
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInPreparation,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// 終端ステータス。ここからの遷移は受け付けない。
// 終端以外の隣接関係は設定テーブル扱いで固定しない（運用が固まっていないため）。
var terminalOrderStatuses = map[OrderStatus]bool{
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

func (s OrderStatus) Known() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return terminalOrderStatuses[s]
}

// 注文。カートのスナップショットから一括で作られ、明細は以後不変。
// 不変条件: Total = Subtotal - DiscountTotal + ShippingCost、Total >= 0。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	AddressID       int64           `gorm:"not null" json:"address_id"`
	PaymentMethodID int64           `gorm:"not null" json:"payment_method_id"`
	CouponID        *int64          `gorm:"index" json:"coupon_id,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_total"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"invoice_number"`
	TrackingCode    string          `gorm:"type:varchar(100)" json:"tracking_code,omitempty"`
	Notes           string          `gorm:"type:varchar(500)" json:"notes,omitempty"`
	IdempotencyKey  string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
