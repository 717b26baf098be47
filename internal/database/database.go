package database

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/logger"
)

var DB *gorm.DB

// Initialize sets up the database connection from the loaded configuration.
// Schema migration is owned by the modules, not by this package.
func Initialize() error {
	cfg := config.Get().Database

	var err error
	switch cfg.Type {
	case "postgres":
		DB, err = connectPostgres(&cfg)
	case "sqlite":
		DB, err = connectSQLite(&cfg)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("Database initialized with %s", cfg.Type)
	return nil
}

func gormConfig(cfg *config.DatabaseConfig) *gorm.Config {
	logMode := gormlogger.Warn
	if cfg.LogQueries {
		logMode = gormlogger.Info
	}
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	}
}

func connectPostgres(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port)

	return gorm.Open(postgres.Open(dsn), gormConfig(cfg))
}

func connectSQLite(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	return gorm.Open(sqlite.Open(cfg.DatabasePath), gormConfig(cfg))
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
