package config

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrDatabaseNotConfigured = errors.New("DATABASE_URL is not configured")

// DatabaseFactory hands out one shared *gorm.DB, opened on first use.
type DatabaseFactory struct {
	cfg *Config

	mu sync.Mutex
	db *gorm.DB

	// dialector is swapped in tests.
	dialector func(dsn string) gorm.Dialector
}

func NewDatabaseFactory(cfg *Config) *DatabaseFactory {
	return &DatabaseFactory{
		cfg:       cfg,
		dialector: postgres.Open,
	}
}

// DB returns the shared handle, connecting if this is the first call.
func (f *DatabaseFactory) DB() (*gorm.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.db != nil {
		return f.db, nil
	}
	if f.cfg == nil || f.cfg.DatabaseURL == "" {
		return nil, ErrDatabaseNotConfigured
	}

	dsn, err := withServiceKey(f.cfg.DatabaseURL, f.cfg.DatabaseServiceKey)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if !f.cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(f.dialector(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	if f.cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(f.cfg.DBMaxIdleConns)
	}
	if f.cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(f.cfg.DBMaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	f.db = db
	return f.db, nil
}

func (f *DatabaseFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.db == nil {
		return nil
	}
	sqlDB, err := f.db.DB()
	if err != nil {
		return err
	}
	f.db = nil
	return sqlDB.Close()
}

// withServiceKey puts the service credential in place of the URL password.
func withServiceKey(rawURL, serviceKey string) (string, error) {
	if serviceKey == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid DATABASE_URL: expected postgres://user@host/db")
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, serviceKey)
	return u.String(), nil
}

func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "xxxxx"
	}
	return u.Redacted()
}
