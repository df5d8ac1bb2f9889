// Package database manages the relational connection pool backing the SQL
// path (§4.8, §4.9). Modeled on the teacher's internal/database/pool.go.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolManager owns the gorm/sql.DB pool and its lifecycle.
type PoolManager struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	config PoolConfig
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// PoolConfig sizes the pool per §6's poolMin/poolMax/poolAcquireTimeout.
type PoolConfig struct {
	MinConns            int
	MaxConns            int
	AcquireTimeout      time.Duration
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	HealthCheckInterval time.Duration
}

// DefaultPoolConfig mirrors config.DefaultPoolConfig's values.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinConns:            2,
		MaxConns:            10,
		AcquireTimeout:      5 * time.Second,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     10 * time.Minute,
		HealthCheckInterval: 30 * time.Second,
	}
}

// Connect opens the PostgreSQL connection identified by dsn through gorm's
// postgres driver (over jackc/pgx) and wraps it in a PoolManager.
func Connect(dsn string, config PoolConfig, logger *zap.Logger) (*PoolManager, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewPoolManager(db, config, logger)
}

// NewPoolManager wraps an already-open gorm.DB with pool sizing and a
// background health check loop.
func NewPoolManager(db *gorm.DB, config PoolConfig, logger *zap.Logger) (*PoolManager, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MinConns)
	sqlDB.SetMaxOpenConns(config.MaxConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	pm := &PoolManager{
		db:     db,
		sqlDB:  sqlDB,
		config: config,
		logger: logger.With(zap.String("component", "db_pool")),
	}

	if config.HealthCheckInterval > 0 {
		go pm.healthCheckLoop()
	}

	logger.Info("database pool initialized",
		zap.Int("min_conns", config.MinConns),
		zap.Int("max_conns", config.MaxConns),
	)
	return pm, nil
}

// DB returns the gorm handle, bound by AcquireTimeout via ctx when the
// caller derives its own context (pool acquisition backpressure, §5).
func (pm *PoolManager) DB() *gorm.DB {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.db
}

// WithTimeout returns a gorm session bound to a context that times out
// after the pool's configured acquire timeout — the bounded wait that
// enforces backpressure on the SQL path (§5).
func (pm *PoolManager) WithTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	timeoutCtx, cancel := context.WithTimeout(ctx, pm.config.AcquireTimeout)
	return pm.DB().WithContext(timeoutCtx), cancel
}

// Ping checks the pool's connectivity.
func (pm *PoolManager) Ping(ctx context.Context) error {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	if pm.closed {
		return fmt.Errorf("pool is closed")
	}
	return pm.sqlDB.PingContext(ctx)
}

// Stats returns the pool's raw connection statistics.
func (pm *PoolManager) Stats() sql.DBStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.sqlDB.Stats()
}

// Close shuts the pool down; safe to call more than once.
func (pm *PoolManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.closed {
		return nil
	}
	pm.closed = true
	pm.logger.Info("closing database pool")
	return pm.sqlDB.Close()
}

func (pm *PoolManager) healthCheckLoop() {
	ticker := time.NewTicker(pm.config.HealthCheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		pm.mu.RLock()
		closed := pm.closed
		pm.mu.RUnlock()
		if closed {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := pm.Ping(ctx); err != nil {
			pm.logger.Error("database health check failed", zap.Error(err))
		}
		cancel()
	}
}
