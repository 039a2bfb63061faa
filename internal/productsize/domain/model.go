package domain

import "time"

// ProductSize is one size variant of a product. The label is unique per product.
type ProductSize struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID     int64     `json:"product_id" gorm:"not null;uniqueIndex:ux_product_sizes_product_size,priority:1"`
	Size          string    `json:"size" gorm:"type:varchar(10);not null;uniqueIndex:ux_product_sizes_product_size,priority:2"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null"`
	IsActive      bool      `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null"`
}

func (ProductSize) TableName() string { return "product_sizes" }

// Available reports whether the size can be sold.
func (s ProductSize) Available() bool {
	return s.IsActive && s.StockQuantity > 0
}

// Totals are the aggregate figures shown above a product's size list.
type Totals struct {
	TotalStock   int `json:"total_stock"`
	SizesInStock int `json:"sizes_in_stock"`
	TotalSizes   int `json:"total_sizes"`
}

func ComputeTotals(sizes []ProductSize) Totals {
	t := Totals{TotalSizes: len(sizes)}
	for _, s := range sizes {
		t.TotalStock += s.StockQuantity
		if s.StockQuantity > 0 {
			t.SizesInStock++
		}
	}
	return t
}
