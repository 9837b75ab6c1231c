// Package postgres implements store.Store on the managed Postgres database.
// Every operation issues a single query and maps the result rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamdesk/store"
)

// Connector hands out the shared database handle. *config.DatabaseFactory
// satisfies it.
type Connector interface {
	DB() (*gorm.DB, error)
}

type Store struct {
	conn Connector
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(conn Connector) *Store {
	return &Store{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the tables. The production schema is owned
// elsewhere; this exists for local development and tests.
func Migrate(ctx context.Context, conn Connector) error {
	db, err := conn.DB()
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(allRows()...); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if c, ok := s.conn.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) db(ctx context.Context) (*gorm.DB, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

func wrap(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func newest(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}
}

func oldest(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}}
}

func limitOr(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
