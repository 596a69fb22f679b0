package model

import "time"

// 車両メーカー（例: Toyota）
type VehicleBrand struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 車種
type VehicleModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BrandID   int64     `gorm:"not null;index" json:"brand_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// タイヤと車種×年式の適合
type ProductFitment struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int64     `gorm:"not null;index:idx_fitment,unique" json:"product_id"`
	VehicleModelID int64     `gorm:"not null;index:idx_fitment,unique" json:"vehicle_model_id"`
	YearFrom       int       `gorm:"not null" json:"year_from"`
	YearTo         int       `gorm:"not null" json:"year_to"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
