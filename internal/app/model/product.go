package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Ratings     float64 `gorm:"default:0" json:"ratings"`
	Category    string  `gorm:"type:varchar(50);index" json:"category"`
	Seller      string  `json:"seller"`
	Stock       int     `gorm:"default:0" json:"stock"`
	ImageURL    string  `json:"image_url"`

	// UserID records the admin who created the product
	UserID uint `gorm:"index" json:"user_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
