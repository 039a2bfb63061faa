package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, category *Category) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Category, error)
	List(ctx context.Context, db *gorm.DB, search string) ([]Category, error)
	ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error)
	ListAssociated(ctx context.Context, db *gorm.DB, productID int64) ([]Category, error)
	AssociatedIDs(ctx context.Context, db *gorm.DB, productID int64) ([]int64, error)
	Associate(ctx context.Context, db *gorm.DB, link *ProductCategory) (bool, error)
	Dissociate(ctx context.Context, db *gorm.DB, productID, categoryID int64) (bool, error)
}
