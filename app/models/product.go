package models

import "time"

// Product is a catalog entry. Virtual products are cosmetics granted to the
// buyer's wardrobe and carry no stock.
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null;default:0" json:"price"` // cents
	Size        string    `gorm:"type:varchar(20)" json:"size"`
	Color       string    `gorm:"type:varchar(50)" json:"color"`
	Material    string    `gorm:"type:varchar(100)" json:"material"`
	Virtual     bool      `gorm:"not null;default:false" json:"virtual"`
	Listed      bool      `gorm:"not null;default:true;index" json:"listed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Stock is the mutable quantity counter of a physical product.
type Stock struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int   `gorm:"not null;default:0" json:"quantity"`
}
