package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"github.com/smallbiznis/pistache/internal/productsize/domain"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       domain.Repository
	Storefront *config.StorefrontConfigHolder
	SystemLog  systemlogdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       domain.Repository
	storefront *config.StorefrontConfigHolder
	systemLog  systemlogdomain.Service
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("productsize.service"),
		clock:      p.Clock,
		repo:       p.Repo,
		storefront: p.Storefront,
		systemLog:  p.SystemLog,
		metrics:    p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, productID string) ([]domain.ProductSize, error) {
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ProductSize{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, productID string, req domain.CreateRequest) (*domain.ProductSize, error) {
	label, err := s.validate(req.Size, req.StockQuantity)
	if err != nil {
		return nil, err
	}
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindBySize(ctx, s.db, id, label)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateSizeError{Label: label}
	}

	now := s.clock.Now().UTC()
	item := &domain.ProductSize{
		ProductID:     id,
		Size:          label,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, &domain.DuplicateSizeError{Label: label}
		}
		return nil, err
	}

	s.metrics.RecordSizeWrite(ctx, "create")
	s.record(ctx, systemlogdomain.LevelSuccess, "Tamanho adicionado: "+label, item, nil)
	return item, nil
}

func (s *Service) Update(ctx context.Context, productID string, req domain.UpdateRequest) (*domain.ProductSize, error) {
	label, err := s.validate(req.Size, req.StockQuantity)
	if err != nil {
		return nil, err
	}
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}

	var (
		item     *domain.ProductSize
		previous string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.resolveProduct(ctx, tx, productID); err != nil {
			return err
		}

		current, err := s.locate(ctx, tx, id, req, label)
		if err != nil {
			return err
		}
		previous = current.Size

		if label != current.Size {
			clash, err := s.repo.FindBySize(ctx, tx, id, label)
			if err != nil {
				return err
			}
			if clash != nil {
				return &domain.DuplicateSizeError{Label: label}
			}
		}

		current.Size = label
		current.StockQuantity = req.StockQuantity
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}
		if current.StockQuantity == 0 {
			current.IsActive = false
		}
		current.UpdatedAt = s.clock.Now().UTC()

		if err := s.repo.Update(ctx, tx, current); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return &domain.DuplicateSizeError{Label: label}
			}
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSizeWrite(ctx, "update")
	metadata := map[string]any{}
	if previous != item.Size {
		metadata["original_size"] = previous
	}
	s.record(ctx, systemlogdomain.LevelInfo, "Tamanho atualizado: "+item.Size, item, metadata)
	return item, nil
}

// Delete removes the size with the given label.
func (s *Service) Delete(ctx context.Context, productID string, size string) error {
	label := strings.TrimSpace(size)
	if label == "" {
		return domain.ErrInvalidSize
	}
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return err
	}

	removed, err := s.repo.DeleteBySize(ctx, s.db, id, label)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}

	s.metrics.RecordSizeWrite(ctx, "delete")
	s.record(ctx, systemlogdomain.LevelWarning, "Tamanho removido: "+label, &domain.ProductSize{ProductID: id, Size: label}, nil)
	return nil
}

func (s *Service) locate(ctx context.Context, tx *gorm.DB, productID int64, req domain.UpdateRequest, label string) (*domain.ProductSize, error) {
	var (
		item *domain.ProductSize
		err  error
	)
	switch {
	case req.ID > 0:
		item, err = s.repo.FindByID(ctx, tx, productID, req.ID)
	case strings.TrimSpace(req.OriginalSize) != "":
		item, err = s.repo.FindBySize(ctx, tx, productID, strings.TrimSpace(req.OriginalSize))
	default:
		item, err = s.repo.FindBySize(ctx, tx, productID, label)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) validate(size string, stock int) (string, error) {
	label := strings.TrimSpace(size)
	if label == "" {
		return "", domain.ErrInvalidSize
	}
	if utf8.RuneCountInString(label) > s.storefront.Get().Sizes.MaxLabelLength {
		return "", domain.ErrSizeTooLong
	}
	if stock < 0 {
		return "", domain.ErrInvalidStock
	}
	return label, nil
}

func (s *Service) resolveProduct(ctx context.Context, conn *gorm.DB, raw string) (int64, error) {
	id, err := parseID(raw)
	if err != nil {
		return 0, err
	}
	ok, err := s.repo.ProductExists(ctx, conn, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	return id, nil
}

func (s *Service) record(ctx context.Context, level systemlogdomain.Level, message string, item *domain.ProductSize, metadata map[string]any) {
	if s.systemLog == nil {
		return
	}
	payload := map[string]any{
		"product_id": item.ProductID,
		"size":       item.Size,
	}
	if item.ID != 0 {
		payload["size_id"] = item.ID
		payload["stock_quantity"] = item.StockQuantity
		payload["is_active"] = item.IsActive
	}
	for k, v := range metadata {
		payload[k] = v
	}
	if err := s.systemLog.Record(ctx, systemlogdomain.RecordRequest{
		Level:    level,
		Message:  message,
		Context:  "product_sizes",
		Metadata: payload,
	}); err != nil {
		s.log.Warn("system log write failed", zap.Int64("product_id", item.ProductID), zap.Error(err))
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
