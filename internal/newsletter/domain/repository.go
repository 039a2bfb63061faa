package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Subscription, error)
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
}
