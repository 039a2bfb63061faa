package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/pistache/internal/category/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, created_at FROM categories WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	return items, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, search string) ([]domain.Category, error) {
	var items []domain.Category
	stmt := db.WithContext(ctx).Model(&domain.Category{})
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		pattern := "%" + term + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
	}
	if err := stmt.Order("name asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM products WHERE id = ?`, productID).Scan(&count).Error
	return count > 0, err
}

// ListAssociated returns the product's categories in association order.
func (r *repo) ListAssociated(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Category, error) {
	var items []domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT c.id, c.name, c.slug, c.created_at
		 FROM categories c
		 JOIN product_categories pc ON pc.category_id = c.id
		 WHERE pc.product_id = ?
		 ORDER BY pc.created_at ASC, c.id ASC`,
		productID,
	).Scan(&items).Error
	return items, err
}

func (r *repo) AssociatedIDs(ctx context.Context, db *gorm.DB, productID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT category_id FROM product_categories WHERE product_id = ? ORDER BY created_at ASC, category_id ASC`,
		productID,
	).Scan(&ids).Error
	return ids, err
}

// Associate inserts the link unless it exists; the bool reports whether a row was added.
func (r *repo) Associate(ctx context.Context, db *gorm.DB, link *domain.ProductCategory) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Dissociate(ctx context.Context, db *gorm.DB, productID, categoryID int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM product_categories WHERE product_id = ? AND category_id = ?`,
		productID,
		categoryID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
