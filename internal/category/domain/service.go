package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, req CreateRequest) (*Category, error)
	ListForProduct(ctx context.Context, productID string) ([]Category, error)
	ListAvailable(ctx context.Context, productID, search string) ([]AvailableCategory, error)
	Associate(ctx context.Context, productID string, categoryID int64) (*Category, error)
	Dissociate(ctx context.Context, productID string, categoryID int64) error
	Replace(ctx context.Context, productID string, categoryIDs []int64) (*ReplaceResult, error)
}

type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type AssociateRequest struct {
	CategoryID int64 `json:"categoryId"`
}

type ReplaceRequest struct {
	CategoryIDs []int64 `json:"categoryIds"`
}

// ReplaceResult reports what a replace changed and the final association list.
type ReplaceResult struct {
	Added      []int64    `json:"added"`
	Removed    []int64    `json:"removed"`
	Categories []Category `json:"categories"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidCategoryID = errors.New("invalid_category_id")
	ErrDuplicateSlug     = errors.New("duplicate_slug")
	ErrNotFound          = errors.New("not_found")
	ErrProductNotFound   = errors.New("product_not_found")
)
