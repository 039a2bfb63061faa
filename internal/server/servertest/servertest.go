// Package servertest builds the real HTTP engine over an in-memory database
// for handler and console tests.
package servertest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	categoryrepo "github.com/smallbiznis/pistache/internal/category/repository"
	categorysvc "github.com/smallbiznis/pistache/internal/category/service"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	"github.com/smallbiznis/pistache/internal/migration"
	newsletterrepo "github.com/smallbiznis/pistache/internal/newsletter/repository"
	newslettersvc "github.com/smallbiznis/pistache/internal/newsletter/service"
	"github.com/smallbiznis/pistache/internal/observability"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	productrepo "github.com/smallbiznis/pistache/internal/product/repository"
	productsvc "github.com/smallbiznis/pistache/internal/product/service"
	productsizerepo "github.com/smallbiznis/pistache/internal/productsize/repository"
	productsizesvc "github.com/smallbiznis/pistache/internal/productsize/service"
	"github.com/smallbiznis/pistache/internal/ratelimit"
	"github.com/smallbiznis/pistache/internal/server"
	"github.com/smallbiznis/pistache/internal/storage"
	systemlogrepo "github.com/smallbiznis/pistache/internal/systemlog/repository"
	systemlogsvc "github.com/smallbiznis/pistache/internal/systemlog/service"
	"github.com/smallbiznis/pistache/pkg/db/dbtest"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gorm.io/gorm"
)

// Now is the instant the fake clock starts at.
var Now = time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)

type Env struct {
	Engine     *gin.Engine
	Server     *httptest.Server
	DB         *gorm.DB
	Clock      *clock.FakeClock
	Storage    *storage.Storage
	Storefront *config.StorefrontConfigHolder
}

type Option func(*config.StorefrontConfig)

// WithStorefront adjusts the storefront tunables before the engine is built.
func WithStorefront(fn func(*config.StorefrontConfig)) Option {
	return Option(fn)
}

// New wires every service against a fresh in-memory database and starts an
// httptest server, closed when the test ends.
func New(t testing.TB, opts ...Option) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t, migration.Models()...)
	fc := clock.NewFakeClock(Now)
	log := zap.NewNop()

	sfCfg := config.DefaultStorefrontConfig()
	for _, opt := range opts {
		opt(&sfCfg)
	}
	storefront := config.NewStaticStorefrontConfigHolder(sfCfg)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { _ = bucket.Close() })
	store := storage.NewWithBucket(bucket, "http://media.test/uploads", log, fc)

	systemLog := systemlogsvc.New(systemlogsvc.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fc,
		Repo:       systemlogrepo.Provide(),
		Storefront: storefront,
	})

	engine := server.NewEngine(observability.Config{}, nil, nil)
	server.NewServer(server.ServerParams{
		Gin:        engine,
		Cfg:        config.Config{Environment: "test"},
		Storefront: storefront,
		ProductSvc: productsvc.New(productsvc.Params{
			DB:        db,
			Log:       log,
			Clock:     fc,
			Repo:      productrepo.Provide(),
			SystemLog: systemLog,
		}),
		CategorySvc: categorysvc.New(categorysvc.Params{
			DB:        db,
			Log:       log,
			Clock:     fc,
			Repo:      categoryrepo.Provide(),
			Guard:     ratelimit.NewLocalGuard(time.Second),
			SystemLog: systemLog,
		}),
		SizeSvc: productsizesvc.New(productsizesvc.Params{
			DB:         db,
			Log:        log,
			Clock:      fc,
			Repo:       productsizerepo.Provide(),
			Storefront: storefront,
			SystemLog:  systemLog,
		}),
		SystemLogSvc: systemLog,
		NewsletterSvc: newslettersvc.New(newslettersvc.Params{
			DB:        db,
			Log:       log,
			GenID:     node,
			Clock:     fc,
			Repo:      newsletterrepo.Provide(),
			SystemLog: systemLog,
		}),
		Storage: store,
		Limiter: ratelimit.NewLimiter(ratelimit.LimiterParams{Log: log}),
	})

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	return &Env{
		Engine:     engine,
		Server:     ts,
		DB:         db,
		Clock:      fc,
		Storage:    store,
		Storefront: storefront,
	}
}

// SeedProduct inserts an active product and returns it.
func (e *Env) SeedProduct(t testing.TB, name string, price string) *productdomain.Product {
	t.Helper()
	p := &productdomain.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 10,
		IsActive:      true,
		CreatedAt:     e.Clock.Now(),
		UpdatedAt:     e.Clock.Now(),
	}
	if err := e.DB.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}
