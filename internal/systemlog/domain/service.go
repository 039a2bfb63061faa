package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/pistache/pkg/db/pagination"
)

// DateRange names a trailing window over createdAt.
type DateRange string

const (
	DateRangeAll   DateRange = "all"
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
)

type ListRequest struct {
	pagination.Page
	Level  string `form:"level"`
	Date   string `form:"date"`
	Search string `form:"search"`
}

type ListResponse struct {
	Logs       []Entry             `json:"logs"`
	Pagination pagination.PageInfo `json:"pagination"`
	Stats      Stats               `json:"stats"`
}

type RecordRequest struct {
	Level    Level
	Message  string
	Context  string
	UserID   string
	UserName string
	Metadata map[string]any
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidLevel     = errors.New("invalid_level")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrInvalidMessage   = errors.New("invalid_message")
)
