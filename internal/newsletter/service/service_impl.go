package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/newsletter/domain"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	SystemLog systemlogdomain.Service
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	systemLog systemlogdomain.Service
	metrics   *obsmetrics.Metrics
	validate  *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("newsletter.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		systemLog: p.SystemLog,
		metrics:   p.Metrics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Subscribe stores the email once. Subscribing an address twice succeeds without a new row.
func (s *Service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.SubscribeResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Source = strings.ToLower(strings.TrimSpace(req.Source))
	if err := s.validate.Struct(req); err != nil {
		return nil, mapValidationErr(err)
	}
	source := req.Source
	if source == "" {
		source = domain.DefaultSource
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.RecordNewsletterSignup(ctx, source, false)
		return &domain.SubscribeResult{Subscription: existing}, nil
	}

	sub := &domain.Subscription{
		ID:        s.genID.Generate(),
		Email:     req.Email,
		Source:    source,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, sub); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		// Lost a race with a concurrent signup for the same address.
		existing, err := s.repo.FindByEmail(ctx, s.db, req.Email)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordNewsletterSignup(ctx, source, false)
		return &domain.SubscribeResult{Subscription: existing}, nil
	}

	s.metrics.RecordNewsletterSignup(ctx, source, true)
	if s.systemLog != nil {
		if err := s.systemLog.Record(ctx, systemlogdomain.RecordRequest{
			Level:   systemlogdomain.LevelSuccess,
			Message: "Nova inscrição na newsletter",
			Context: "newsletter",
			Metadata: map[string]any{
				"email":  sub.Email,
				"source": source,
			},
		}); err != nil {
			s.log.Warn("system log write failed", zap.Error(err))
		}
	}
	return &domain.SubscribeResult{Subscription: sub, Created: true}, nil
}

func mapValidationErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if verrs[0].Field() == "Source" {
		return domain.ErrInvalidSource
	}
	return domain.ErrInvalidEmail
}
