package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, productID string) ([]ProductSize, error)
	Create(ctx context.Context, productID string, req CreateRequest) (*ProductSize, error)
	Update(ctx context.Context, productID string, req UpdateRequest) (*ProductSize, error)
	Delete(ctx context.Context, productID string, size string) error
}

type CreateRequest struct {
	Size          string `json:"size"`
	StockQuantity int    `json:"stock_quantity"`
}

// UpdateRequest locates the row by ID, then OriginalSize, then Size.
// A nil IsActive keeps the stored flag; zero stock always clears it.
type UpdateRequest struct {
	ID            int64  `json:"id,omitempty"`
	OriginalSize  string `json:"original_size,omitempty"`
	Size          string `json:"size"`
	StockQuantity int    `json:"stock_quantity"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidSize     = errors.New("invalid_size")
	ErrSizeTooLong     = errors.New("size_too_long")
	ErrInvalidStock    = errors.New("invalid_stock")
	ErrDuplicateSize   = errors.New("duplicate_size")
	ErrNotFound        = errors.New("not_found")
	ErrProductNotFound = errors.New("product_not_found")
)

// DuplicateSizeError carries the conflicting label. Its message is shown to admins unchanged.
type DuplicateSizeError struct {
	Label string
}

func (e *DuplicateSizeError) Error() string {
	return "Tamanho \"" + e.Label + "\" já existe para este produto"
}

func (e *DuplicateSizeError) Unwrap() error { return ErrDuplicateSize }
