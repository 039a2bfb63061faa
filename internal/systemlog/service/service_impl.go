package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	obscontext "github.com/smallbiznis/pistache/internal/observability/context"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/internal/systemlog/masking"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Storefront *config.StorefrontConfigHolder
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	storefront *config.StorefrontConfigHolder
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("systemlog.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		storefront: p.Storefront,
		metrics:    p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) error {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.ErrInvalidMessage
	}

	level := req.Level
	if level == "" {
		level = domain.LevelInfo
	}
	if !level.Valid() {
		return domain.ErrInvalidLevel
	}

	payload := masking.MaskMetadata(req.Metadata)
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		if payload == nil {
			payload = map[string]any{}
		}
		payload["request_id"] = requestID
	}

	entry := domain.Entry{
		ID:        s.genID.Generate(),
		Level:     level,
		Message:   message,
		Context:   optionalString(req.Context),
		UserID:    optionalString(req.UserID),
		UserName:  optionalString(req.UserName),
		IP:        obscontext.ClientIPFromContext(ctx),
		UserAgent: obscontext.UserAgentFromContext(ctx),
		CreatedAt: s.clock.Now().UTC(),
	}
	if len(payload) > 0 {
		entry.Metadata = datatypes.JSONMap(payload)
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write system log", zap.String("level", string(level)), zap.Error(err))
		return err
	}
	s.metrics.RecordSystemLogEntry(ctx, string(level))
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	level, err := parseLevel(req.Level)
	if err != nil {
		return domain.ListResponse{}, err
	}
	since, err := s.windowStart(req.Date)
	if err != nil {
		return domain.ListResponse{}, err
	}

	logsCfg := s.storefront.Get().Logs
	page := req.Page.Normalize(logsCfg.PageSize, logsCfg.MaxPageSize)

	filter := domain.ListFilter{
		Level:  level,
		Since:  since,
		Search: strings.TrimSpace(req.Search),
		Limit:  page.Limit,
		Offset: page.Offset(),
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, err
	}
	counts, err := s.repo.CountByLevel(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, err
	}

	var stats domain.Stats
	for _, lvl := range domain.Levels {
		stats.Add(lvl, counts[lvl])
	}

	if items == nil {
		items = []domain.Entry{}
	}
	return domain.ListResponse{
		Logs:       items,
		Pagination: page.Info(total),
		Stats:      stats,
	}, nil
}

// windowStart resolves a date range against the service clock in UTC.
func (s *Service) windowStart(raw string) (*time.Time, error) {
	now := s.clock.Now().UTC()
	var since time.Time
	switch domain.DateRange(strings.ToLower(strings.TrimSpace(raw))) {
	case "", domain.DateRangeAll:
		return nil, nil
	case domain.DateRangeToday:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case domain.DateRangeWeek:
		since = now.AddDate(0, 0, -7)
	case domain.DateRangeMonth:
		since = now.AddDate(0, 0, -30)
	default:
		return nil, domain.ErrInvalidDateRange
	}
	return &since, nil
}

func parseLevel(raw string) (domain.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == "all" {
		return "", nil
	}
	level := domain.Level(value)
	if !level.Valid() {
		return "", domain.ErrInvalidLevel
	}
	return level, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
