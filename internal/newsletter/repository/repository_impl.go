package repository

import (
	"context"

	"github.com/smallbiznis/pistache/internal/newsletter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, source, created_at FROM newsletter_subscriptions WHERE email = ?`,
		email,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO newsletter_subscriptions (id, email, source, created_at) VALUES (?, ?, ?, ?)`,
		sub.ID,
		sub.Email,
		sub.Source,
		sub.CreatedAt,
	).Error
}
