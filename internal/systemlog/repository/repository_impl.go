package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/pistache/internal/systemlog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO system_logs (
			id, level, message, context, user_id, user_name, ip, user_agent, created_at, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Level,
		entry.Message,
		entry.Context,
		entry.UserID,
		entry.UserName,
		entry.IP,
		entry.UserAgent,
		entry.CreatedAt,
		entry.Metadata,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Entry, error) {
	var items []domain.Entry
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Entry{}), filter, true).
		Order("created_at desc, id desc")

	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Entry{}), filter, true).
		Count(&total).Error
	return total, err
}

// CountByLevel groups the window by level; filter.Level is ignored.
func (r *repo) CountByLevel(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (map[domain.Level]int64, error) {
	var rows []struct {
		Level string
		Total int64
	}
	err := applyFilter(db.WithContext(ctx).Model(&domain.Entry{}), filter, false).
		Select("level, COUNT(*) AS total").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Level]int64, len(rows))
	for _, row := range rows {
		counts[domain.Level(row.Level)] += row.Total
	}
	return counts, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter, includeLevel bool) *gorm.DB {
	if includeLevel && filter.Level != "" {
		stmt = stmt.Where("level = ?", filter.Level)
	}
	if filter.Since != nil {
		stmt = stmt.Where("created_at >= ?", filter.Since.UTC())
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		stmt = stmt.Where(
			`(LOWER(message) LIKE ? ESCAPE '!' OR LOWER(COALESCE(context, '')) LIKE ? ESCAPE '!' OR LOWER(COALESCE(user_name, '')) LIKE ? ESCAPE '!')`,
			pattern, pattern, pattern,
		)
	}
	return stmt
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(value)
}
