package main

import (
	"context"

	"go.uber.org/zap"

	"leadgen-dashboard/internal/config"
	"leadgen-dashboard/internal/database"
	"leadgen-dashboard/internal/logger"
)

// migrate_data copies a local SQLite database (database.path) into the
// PostgreSQL database described by the database.* settings, then moves the
// id sequences past the copied rows. Run it with DB_BACKEND=postgres.
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

	sqliteCfg := cfg.Database
	sqliteCfg.Backend = config.BackendSQLite
	sqliteDB, err := database.Open(sqliteCfg, false)
	if err != nil {
		zapLog.Fatal("Failed to connect to SQLite", zap.Error(err))
	}
	zapLog.Info("Connected to SQLite", zap.String("path", sqliteCfg.Path))

	pgCfg := cfg.Database
	pgCfg.Backend = config.BackendPostgres
	pgDB, err := database.Open(pgCfg, false)
	if err != nil {
		zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := database.Migrate(pgDB); err != nil {
		zapLog.Fatal("Failed to migrate PostgreSQL schema", zap.Error(err))
	}

	zapLog.Info("Starting data migration...")
	counts, err := database.CopyAll(sqliteDB, pgDB)
	for _, c := range counts {
		zapLog.Info("Migrated table", zap.String("table", c.Table), zap.Int("rows", c.Rows))
	}
	if err != nil {
		zapLog.Fatal("Data migration failed", zap.Error(err))
	}

	sqlDB, err := pgDB.DB()
	if err != nil {
		zapLog.Fatal("Failed to access PostgreSQL handle", zap.Error(err))
	}
	failed, err := database.SyncSequences(context.Background(), sqlDB, database.SequenceTables)
	for table, ferr := range failed {
		zapLog.Error("Error syncing sequence", zap.String("table", table), zap.Error(ferr))
	}
	if err != nil {
		zapLog.Fatal("Sequence sync incomplete", zap.Error(err))
	}

	zapLog.Info("Migration completed!")
}
