package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pistache/internal/clock"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"github.com/smallbiznis/pistache/internal/product/domain"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	SystemLog systemlogdomain.Service
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	systemLog systemlogdomain.Service
	metrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("product.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		systemLog: p.SystemLog,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if req.OriginalPrice != nil && req.OriginalPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if req.StockQuantity < 0 {
		return nil, domain.ErrInvalidStock
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now().UTC()
	p := &domain.Product{
		Name:          name,
		Description:   normalizeDescription(req.Description),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = decimal.NewNullDecimal(*req.OriginalPrice)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.record(ctx, systemlogdomain.LevelSuccess, "Produto criado: "+p.Name, p.ID, nil)
	return p, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Product, error) {
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Product, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = normalizeDescription(req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.OriginalPrice.Set {
		if req.OriginalPrice.Value.Valid && req.OriginalPrice.Value.Decimal.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		item.OriginalPrice = req.OriginalPrice.Value
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.metrics.RecordProductUpdate(ctx)
	s.record(ctx, systemlogdomain.LevelInfo, "Produto atualizado: "+item.Name, item.ID, map[string]any{
		"price":          item.Price.String(),
		"stock_quantity": item.StockQuantity,
		"is_active":      item.IsActive,
	})
	return item, nil
}

// ParseID parses a positive decimal product id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func (s *Service) record(ctx context.Context, level systemlogdomain.Level, message string, productID int64, metadata map[string]any) {
	if s.systemLog == nil {
		return
	}
	payload := map[string]any{"product_id": productID}
	for k, v := range metadata {
		payload[k] = v
	}
	if err := s.systemLog.Record(ctx, systemlogdomain.RecordRequest{
		Level:    level,
		Message:  message,
		Context:  "products",
		Metadata: payload,
	}); err != nil {
		s.log.Warn("system log write failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}

func normalizeDescription(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
