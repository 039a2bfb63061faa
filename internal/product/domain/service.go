package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Product, error)
}

type ListRequest struct {
	Name   string `form:"name"`
	Active *bool  `form:"active"`
}

type CreateRequest struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	StockQuantity int              `json:"stock_quantity"`
	IsActive      *bool            `json:"is_active"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
// OriginalPrice may be explicitly set to null to clear it.
type UpdateRequest struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice OptionalDecimal  `json:"original_price"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidStock = errors.New("invalid_stock")
	ErrNotFound     = errors.New("not_found")
)
