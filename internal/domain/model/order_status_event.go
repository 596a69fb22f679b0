package model

import "time"

// 注文ステータス変更の履歴。追記のみで、1遷移につき1件。
type OrderStatusEvent struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64       `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	ChangedBy int64       `gorm:"not null" json:"changed_by"`
	Comment   string      `gorm:"type:varchar(500)" json:"comment,omitempty"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
