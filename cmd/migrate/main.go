package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/infrastructure/collaborators"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Running schema migration",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := db.DB.AutoMigrate(
		&ledger.StockTransaction{},
		&ledger.LocationBalance{},
		&ledger.ProductHistory{},
		&costing.CostBasis{},
		&serial.SerialUnit{},
		&serial.SerialMovement{},
		&purchasing.PurchaseOrder{},
		&purchasing.PurchaseOrderItem{},
		&purchasing.GoodsReceipt{},
		&purchasing.GoodsReceiptLine{},
		&returns.CustomerReturn{},
		&returns.ReturnLine{},
		&returns.Replacement{},
		&returns.ReplacementLine{},
		&finance.AccountPayable{},
		&idempotency.Record{},
		&collaborators.JournalEntry{},
		&collaborators.AuditRecord{},
	); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migration completed successfully")
}
