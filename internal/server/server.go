package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quotahub/quotad/internal/config"
	"github.com/quotahub/quotad/internal/consumable"
	"github.com/quotahub/quotad/internal/feature"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/internal/metrics"
	"github.com/quotahub/quotad/internal/quota"
	quotadomain "github.com/quotahub/quotad/internal/quota/domain"
	"github.com/quotahub/quotad/internal/slot"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	feature.Module,
	consumable.Module,
	slot.Module,
	quota.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	featureSvc featuredomain.Service
	quotaSvc   quotadomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	FeatureSvc featuredomain.Service
	QuotaSvc   quotadomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		featureSvc: p.FeatureSvc,
		quotaSvc:   p.QuotaSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Features --------
	api.POST("/features", s.CreateFeature)
	api.GET("/features", s.ListFeatures)
	api.PUT("/features/:featureKey", s.UpdateFeature)

	// -------- Usage --------
	api.POST("/usage/check", s.CheckUsage)
	api.POST("/usage/record", s.RecordUsage)
	api.POST("/usage/allocate-slot", s.AllocateSlot)
	api.POST("/usage/deallocate-slot", s.DeallocateSlot)
	api.GET("/usage/:userId", s.GetUserUsage)
	api.GET("/usage/:userId/all", s.GetAllUserUsage)
}
