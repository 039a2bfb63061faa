package domain

import "time"

type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

// ProductCategory associates a product with a category; at most one row per pair.
type ProductCategory struct {
	ProductID  int64     `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// AvailableCategory is a category annotated with its association to one product.
type AvailableCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	IsAssociated bool   `json:"is_associated"`
}
