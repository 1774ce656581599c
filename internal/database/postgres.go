package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/gema-assign/internal/models"
)

// PoolOptions sizes the postgres connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// Debug logs every SQL statement.
	Debug bool
}

// ConnectPostgres opens the assignment database, sizes its pool and verifies
// the connection within ctx.
func ConnectPostgres(ctx context.Context, dsn string, opts PoolOptions) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unable to reach postgres: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table owned by the assignment module.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
