package domain

import (
	"context"
	"errors"
)

const DefaultSource = "footer"

type Service interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error)
}

type SubscribeRequest struct {
	Email  string `json:"email" validate:"required,email,max=320"`
	Source string `json:"source" validate:"omitempty,max=64"`
}

// SubscribeResult reports the stored subscription; Created is false when the email was already subscribed.
type SubscribeResult struct {
	Subscription *Subscription `json:"subscription"`
	Created      bool          `json:"created"`
}

var (
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidSource = errors.New("invalid_source")
)
