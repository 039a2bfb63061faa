package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Subscription struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email     string       `json:"email" gorm:"type:varchar(320);not null;uniqueIndex"`
	Source    string       `json:"source" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Subscription) TableName() string { return "newsletter_subscriptions" }
