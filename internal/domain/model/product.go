package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// タイヤ商品。価格は小数2桁の通貨額。
// 在庫(Stock)は注文確定・キャンセル・返品承認・管理者調整でのみ動く。
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Brand       string `gorm:"type:varchar(100);not null" json:"brand"`
	Description string `gorm:"type:text" json:"description"`

	//タイヤサイズ（例: 205/55R16 → Width=205, AspectRatio=55, RimDiameter=16）
	Width       int    `gorm:"not null" json:"width"`
	AspectRatio int    `gorm:"not null" json:"aspect_ratio"`
	RimDiameter int    `gorm:"not null" json:"rim_diameter"`
	LoadSpeed   string `gorm:"type:varchar(10)" json:"load_speed"`

	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock      int64           `gorm:"not null" json:"stock"`
	IsActive   bool            `gorm:"not null;default:false" json:"is_active"`
	IsFeatured bool            `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
