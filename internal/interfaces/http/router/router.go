package router

import (
	"net/http"

	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the handlers the router mounts
type Handlers struct {
	Receiving *handler.ReceivingHandler
	Returns   *handler.ReturnsHandler
	Stock     *handler.StockHandler
}

// New builds the gin engine with middleware and routes
func New(cfg *config.Config, log *zap.Logger, db *persistence.Database, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", healthHandler(db))

	api := engine.Group("/api/v1")
	api.Use(middleware.ActorContext())
	{
		receipts := api.Group("/goods-receipts")
		{
			receipts.POST("/:id/approve", h.Receiving.Approve)
			receipts.POST("/:id/reject", h.Receiving.Reject)
		}

		rets := api.Group("/customer-returns")
		{
			rets.POST("/:id/approve", h.Returns.Approve)
			rets.POST("/:id/reject", h.Returns.Reject)
			rets.POST("/:id/replacement", h.Returns.IssueReplacement)
		}

		stock := api.Group("/stock")
		{
			stock.GET("/history", h.Stock.History)
			stock.GET("/balance", h.Stock.Balance)
			stock.GET("/audit", h.Stock.Audit)
		}

		api.GET("/serials/:number", h.Stock.LookupSerial)
	}

	return engine
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
