package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。商品名と価格は確定時点のスナップショット（後の価格変更の影響を受けない）。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	DiscountApplied     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_applied"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
