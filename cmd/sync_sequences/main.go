package main

import (
	"context"

	"go.uber.org/zap"

	"leadgen-dashboard/internal/config"
	"leadgen-dashboard/internal/database"
	"leadgen-dashboard/internal/logger"
)

func main() {
	zapLog, err := logger.New("info", "console")
	if err != nil {
		panic(err)
	}
	defer zapLog.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	pgCfg := cfg.Database
	pgCfg.Backend = config.BackendPostgres
	db, err := database.Open(pgCfg, false)
	if err != nil {
		zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("Failed to access PostgreSQL handle", zap.Error(err))
	}
	defer sqlDB.Close()

	zapLog.Info("Syncing PostgreSQL sequences...")

	failed, err := database.SyncSequences(context.Background(), sqlDB, database.SequenceTables)
	for _, table := range database.SequenceTables {
		if ferr, ok := failed[table]; ok {
			zapLog.Error("Error syncing sequence", zap.String("table", table), zap.Error(ferr))
			continue
		}
		zapLog.Info("Successfully synced sequence", zap.String("table", table))
	}
	if err != nil {
		zapLog.Fatal("Sequence sync incomplete", zap.Error(err))
	}

	zapLog.Info("DONE!")
}
