package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error)
	List(ctx context.Context, db *gorm.DB, productID int64) ([]ProductSize, error)
	FindByID(ctx context.Context, db *gorm.DB, productID, id int64) (*ProductSize, error)
	FindBySize(ctx context.Context, db *gorm.DB, productID int64, size string) (*ProductSize, error)
	Create(ctx context.Context, db *gorm.DB, size *ProductSize) error
	Update(ctx context.Context, db *gorm.DB, size *ProductSize) error
	DeleteBySize(ctx context.Context, db *gorm.DB, productID int64, size string) (bool, error)
}
