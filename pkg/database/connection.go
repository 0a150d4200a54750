package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle holding build history
type DB struct {
	*gorm.DB
}

// PoolOptions sizes the connection pool and the gorm log level
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	PrepareStmt     bool
}

// DefaultPoolOptions suits a single optimizer instance; history writes are one row per build
func DefaultPoolOptions(isDevelopment bool) PoolOptions {
	opts := PoolOptions{
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		LogLevel:        logger.Error,
		PrepareStmt:     true,
	}
	if isDevelopment {
		opts.LogLevel = logger.Info
	}
	return opts
}

// NewConnection opens the Postgres history store
func NewConnection(databaseURL string, isDevelopment bool) (*DB, error) {
	db, err := Open(postgres.Open(databaseURL), DefaultPoolOptions(isDevelopment))
	if err != nil {
		return nil, err
	}
	logrus.WithField("max_open_conns", DefaultPoolOptions(isDevelopment).MaxOpenConns).
		Info("Database connection established successfully")
	return db, nil
}

// Open connects through any gorm dialector and verifies the connection.
// Tests pass a sqlite dialector with MaxOpenConns 1 so ":memory:" stays one database.
func Open(dialector gorm.Dialector, opts PoolOptions) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: opts.PrepareStmt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{db}, nil
}

// HealthCheck pings the underlying connection within ctx
func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
