package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/clock"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"github.com/smallbiznis/pistache/internal/ratelimit"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const keyProductCategoriesLock = "lock:product:%d:categories"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Guard     ratelimit.Guard
	SystemLog systemlogdomain.Service
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	guard     ratelimit.Guard
	systemLog systemlogdomain.Service
	metrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("category.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		guard:     p.Guard,
		systemLog: p.SystemLog,
		metrics:   p.Metrics,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	items, err := s.repo.List(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	categorySlug := slug.Make(strings.TrimSpace(req.Slug))
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	}
	if categorySlug == "" {
		return nil, domain.ErrInvalidName
	}

	c := &domain.Category{
		Name:      name,
		Slug:      categorySlug,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}

	s.record(ctx, systemlogdomain.LevelSuccess, "Categoria criada: "+c.Name, map[string]any{"category_id": c.ID, "slug": c.Slug})
	return c, nil
}

func (s *Service) ListForProduct(ctx context.Context, productID string) ([]domain.Category, error) {
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListAssociated(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (s *Service) ListAvailable(ctx context.Context, productID, search string) ([]domain.AvailableCategory, error) {
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.List(ctx, s.db, search)
	if err != nil {
		return nil, err
	}
	associated, err := s.repo.AssociatedIDs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	linked := make(map[int64]struct{}, len(associated))
	for _, categoryID := range associated {
		linked[categoryID] = struct{}{}
	}

	out := make([]domain.AvailableCategory, 0, len(categories))
	for _, c := range categories {
		_, ok := linked[c.ID]
		out = append(out, domain.AvailableCategory{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			IsAssociated: ok,
		})
	}
	return out, nil
}

// Associate links categoryID to the product; linking twice is a no-op.
func (s *Service) Associate(ctx context.Context, productID string, categoryID int64) (*domain.Category, error) {
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if categoryID <= 0 {
		return nil, domain.ErrInvalidCategoryID
	}
	category, err := s.repo.FindByID(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}

	added, err := s.repo.Associate(ctx, s.db, &domain.ProductCategory{
		ProductID:  id,
		CategoryID: categoryID,
		CreatedAt:  s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if added {
		s.metrics.RecordCategoryChange(ctx, "add", 1)
		s.record(ctx, systemlogdomain.LevelInfo, "Categoria associada: "+category.Name, map[string]any{"product_id": id, "category_id": categoryID})
	}
	return category, nil
}

// Dissociate unlinks categoryID from the product; unlinking an absent pair is a no-op.
func (s *Service) Dissociate(ctx context.Context, productID string, categoryID int64) error {
	id, err := s.resolveProduct(ctx, s.db, productID)
	if err != nil {
		return err
	}
	if categoryID <= 0 {
		return domain.ErrInvalidCategoryID
	}

	removed, err := s.repo.Dissociate(ctx, s.db, id, categoryID)
	if err != nil {
		return err
	}
	if removed {
		s.metrics.RecordCategoryChange(ctx, "remove", 1)
		s.record(ctx, systemlogdomain.LevelInfo, "Categoria removida do produto", map[string]any{"product_id": id, "category_id": categoryID})
	}
	return nil
}

// Replace makes the product's associations equal categoryIDs in one transaction.
// Concurrent replaces of the same product are serialized through the guard.
func (s *Service) Replace(ctx context.Context, productID string, categoryIDs []int64) (*domain.ReplaceResult, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	wanted, err := dedupe(categoryIDs)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, fmt.Sprintf(keyProductCategoriesLock, id))
	if err != nil {
		return nil, err
	}
	defer release()

	result := &domain.ReplaceResult{Added: []int64{}, Removed: []int64{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.resolveProduct(ctx, tx, productID); err != nil {
			return err
		}

		found, err := s.repo.FindByIDs(ctx, tx, wanted)
		if err != nil {
			return err
		}
		if len(found) != len(wanted) {
			return domain.ErrNotFound
		}

		current, err := s.repo.AssociatedIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		plan := domain.Reconcile(current, wanted)

		now := s.clock.Now().UTC()
		for i, categoryID := range plan.ToAdd {
			if _, err := s.repo.Associate(ctx, tx, &domain.ProductCategory{
				ProductID:  id,
				CategoryID: categoryID,
				CreatedAt:  now.Add(time.Duration(i) * time.Microsecond),
			}); err != nil {
				return err
			}
		}
		for _, categoryID := range plan.ToRemove {
			if _, err := s.repo.Dissociate(ctx, tx, id, categoryID); err != nil {
				return err
			}
		}

		result.Added = append(result.Added, plan.ToAdd...)
		result.Removed = append(result.Removed, plan.ToRemove...)
		categories, err := s.repo.ListAssociated(ctx, tx, id)
		if err != nil {
			return err
		}
		result.Categories = nonNil(categories)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCategoryChange(ctx, "add", len(result.Added))
	s.metrics.RecordCategoryChange(ctx, "remove", len(result.Removed))
	if len(result.Added)+len(result.Removed) > 0 {
		s.record(ctx, systemlogdomain.LevelInfo, "Categorias do produto atualizadas", map[string]any{
			"product_id": id,
			"added":      result.Added,
			"removed":    result.Removed,
		})
	}
	return result, nil
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

func (s *Service) record(ctx context.Context, level systemlogdomain.Level, message string, metadata map[string]any) {
	if s.systemLog == nil {
		return
	}
	if err := s.systemLog.Record(ctx, systemlogdomain.RecordRequest{
		Level:    level,
		Message:  message,
		Context:  "categories",
		Metadata: metadata,
	}); err != nil {
		s.log.Warn("system log write failed", zap.Error(err))
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func dedupe(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, domain.ErrInvalidCategoryID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func nonNil(items []domain.Category) []domain.Category {
	if items == nil {
		return []domain.Category{}
	}
	return items
}

