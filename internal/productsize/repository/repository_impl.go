package repository

import (
	"context"

	"github.com/smallbiznis/pistache/internal/productsize/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `SELECT id, product_id, size, stock_quantity, is_active, created_at, updated_at FROM product_sizes`

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM products WHERE id = ?`, productID).Scan(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, productID int64) ([]domain.ProductSize, error) {
	var items []domain.ProductSize
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE product_id = ? ORDER BY created_at ASC, id ASC`,
		productID,
	).Scan(&items).Error
	return items, err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, productID, id int64) (*domain.ProductSize, error) {
	var s domain.ProductSize
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE product_id = ? AND id = ?`,
		productID,
		id,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) FindBySize(ctx context.Context, db *gorm.DB, productID int64, size string) (*domain.ProductSize, error) {
	var s domain.ProductSize
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE product_id = ? AND size = ?`,
		productID,
		size,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, size *domain.ProductSize) error {
	return db.WithContext(ctx).Create(size).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, size *domain.ProductSize) error {
	if size == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE product_sizes
		 SET size = ?, stock_quantity = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND product_id = ?`,
		size.Size,
		size.StockQuantity,
		size.IsActive,
		size.UpdatedAt,
		size.ID,
		size.ProductID,
	).Error
}

func (r *repo) DeleteBySize(ctx context.Context, db *gorm.DB, productID int64, size string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM product_sizes WHERE product_id = ? AND size = ?`,
		productID,
		size,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
