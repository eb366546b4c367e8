package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/application/impact"
	"github.com/retailops/backend/internal/application/query"
	receivingapp "github.com/retailops/backend/internal/application/receiving"
	returnsapp "github.com/retailops/backend/internal/application/returns"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/infrastructure/collaborators"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting RetailOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories used outside transactions. In-transaction repositories
	// are built per-transaction by the transaction scope.
	balanceRepo := persistence.NewGormLocationBalanceRepository(db.DB)
	stockTxRepo := persistence.NewGormStockTransactionRepository(db.DB)
	costBasisRepo := persistence.NewGormCostBasisRepository(db.DB)
	serialUnitRepo := persistence.NewGormSerialUnitRepository(db.DB)
	serialMoveRepo := persistence.NewGormSerialMovementRepository(db.DB)
	idemRecordRepo := persistence.NewGormIdempotencyRecordRepository(db.DB)

	scope := persistence.NewGormTransactionScope(db.DB, cfg.Transaction.ApprovalTimeout)

	// Request lock for in-flight idempotency keys. Redis when available,
	// in-process fallback keeps single-instance deployments working.
	var requestLock idempotency.RequestLock
	redisLock, err := cache.NewRedisRequestLock(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory request lock", zap.Error(err))
		requestLock = cache.NewInMemoryRequestLock()
	} else {
		requestLock = redisLock
		defer func() {
			if err := redisLock.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	guard := idempotency.NewGuard(idemRecordRepo, requestLock, log).WithLockTTL(cfg.Idempotency.LockTTL)

	costReader := costing.NewCalculator(costBasisRepo, balanceRepo)
	impactTracker := impact.NewTracker(balanceRepo, costReader, log)

	accountingGateway := collaborators.NewDBAccountingGateway(db.DB, log)
	auditLog := collaborators.NewDBAuditLog(db.DB, log)
	reportingGateway, err := collaborators.NewMaterializedViewReporting(
		db.DB, cfg.Reporting.ViewNames, cfg.Reporting.RefreshEnabled, log)
	if err != nil {
		log.Fatal("Invalid reporting configuration", zap.Error(err))
	}

	receivingService := receivingapp.NewService(scope, guard, impactTracker, accountingGateway, auditLog, reportingGateway, log)
	returnsService := returnsapp.NewService(scope, guard, impactTracker, auditLog, log)
	queryService := query.NewService(stockTxRepo, balanceRepo, costBasisRepo, serialUnitRepo, serialMoveRepo)

	engine := router.New(cfg, log, db, router.Handlers{
		Receiving: handler.NewReceivingHandler(receivingService),
		Returns:   handler.NewReturnsHandler(returnsService),
		Stock:     handler.NewStockHandler(queryService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
