package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID            int64               `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string              `json:"name" gorm:"type:varchar(255);not null"`
	Description   *string             `json:"description" gorm:"type:text"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice decimal.NullDecimal `json:"original_price" gorm:"type:decimal(10,2)"`
	StockQuantity int                 `json:"stock_quantity" gorm:"not null;default:0"`
	IsActive      bool                `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time           `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
