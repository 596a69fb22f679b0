package model

import "time"

type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "REQUESTED"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusRefunded  ReturnStatus = "REFUNDED"
)

func (s ReturnStatus) Known() bool {
	switch s {
	case ReturnStatusRequested, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusRefunded:
		return true
	}
	return false
}

// 返品申請。配達済みの注文に対してのみ作れる。
// 承認(APPROVED)の時点で対象数量ぶん在庫を戻す。
type Return struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64        `gorm:"not null;index" json:"order_id"`
	UserID    int64        `gorm:"not null;index" json:"user_id"`
	Reason    string       `gorm:"type:varchar(500);not null" json:"reason"`
	Status    ReturnStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 返品対象の明細
type ReturnItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReturnID  int64     `gorm:"not null;index" json:"return_id"`
	ProductID int64     `gorm:"not null" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
