package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pistache/internal/category"
	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/config"
	"github.com/smallbiznis/pistache/internal/newsletter"
	newsletterdomain "github.com/smallbiznis/pistache/internal/newsletter/domain"
	"github.com/smallbiznis/pistache/internal/observability"
	obsmiddleware "github.com/smallbiznis/pistache/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pistache/internal/observability/tracing"
	"github.com/smallbiznis/pistache/internal/product"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	"github.com/smallbiznis/pistache/internal/productsize"
	productsizedomain "github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/ratelimit"
	"github.com/smallbiznis/pistache/internal/storage"
	"github.com/smallbiznis/pistache/internal/systemlog"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	systemlog.Module,
	product.Module,
	category.Module,
	productsize.Module,
	newsletter.Module,
	storage.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(obsmetrics.GinMiddleware(httpMetrics))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	storefront    *config.StorefrontConfigHolder
	productSvc    productdomain.Service
	categorySvc   categorydomain.Service
	sizeSvc       productsizedomain.Service
	systemLogSvc  systemlogdomain.Service
	newsletterSvc newsletterdomain.Service
	storage       *storage.Storage
	limiter       *ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Storefront    *config.StorefrontConfigHolder
	ProductSvc    productdomain.Service
	CategorySvc   categorydomain.Service
	SizeSvc       productsizedomain.Service
	SystemLogSvc  systemlogdomain.Service
	NewsletterSvc newsletterdomain.Service
	Storage       *storage.Storage
	Limiter       *ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		storefront:    p.Storefront,
		productSvc:    p.ProductSvc,
		categorySvc:   p.CategorySvc,
		sizeSvc:       p.SizeSvc,
		systemLogSvc:  p.SystemLogSvc,
		newsletterSvc: p.NewsletterSvc,
		storage:       p.Storage,
		limiter:       p.Limiter,
	}

	svc.registerAdminRoutes()
	svc.registerPublicRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")

	// -------- Logs --------
	admin.GET("/logs", s.ListSystemLogs)

	// -------- Products --------
	admin.GET("/products", s.ListProducts)
	admin.POST("/products", s.CreateProduct)
	admin.GET("/products/:id", s.GetProduct)
	admin.PATCH("/products/:id", s.UpdateProduct)

	// -------- Product categories --------
	admin.GET("/products/:id/categories", s.ListProductCategories)
	admin.POST("/products/:id/categories", s.AddProductCategory)
	admin.DELETE("/products/:id/categories", s.RemoveProductCategory)
	admin.PUT("/products/:id/categories", s.ReplaceProductCategories)
	admin.GET("/products/:id/available-categories", s.ListAvailableCategories)

	// -------- Product sizes --------
	admin.GET("/products/:id/sizes", s.ListProductSizes)
	admin.POST("/products/:id/sizes", s.CreateProductSize)
	admin.PUT("/products/:id/sizes", s.UpdateProductSize)
	admin.DELETE("/products/:id/sizes", s.DeleteProductSize)

	// -------- Categories --------
	admin.GET("/categories", s.ListCategories)
	admin.POST("/categories", s.CreateCategory)

	// -------- Media --------
	admin.POST("/media", s.RateLimit(mediaRule), s.UploadMedia)
	admin.DELETE("/media", s.DeleteMedia)
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/api/newsletter", s.RateLimit(newsletterRule), s.SubscribeNewsletter)
	s.engine.GET("/uploads/*pathname", s.ServeMedia)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
