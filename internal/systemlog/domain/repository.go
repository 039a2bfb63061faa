package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Level  Level
	Since  *time.Time
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Entry, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	CountByLevel(ctx context.Context, db *gorm.DB, filter ListFilter) (map[Level]int64, error)
}
