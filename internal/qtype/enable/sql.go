package enable

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLSource keeps flags in the qtype_flags table. The statements are valid
// for both sqlite and postgres.
type SQLSource struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db, now: time.Now} }

func (s *SQLSource) Lookup(ctx context.Context, key string) (bool, bool, error) {
	var on bool
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled FROM qtype_flags WHERE type=$1`, key).Scan(&on)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return on, true, nil
}

func (s *SQLSource) Set(ctx context.Context, key string, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO qtype_flags (type, enabled, updated_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT(type) DO UPDATE SET enabled=excluded.enabled, updated_at=excluded.updated_at`,
		key, enabled, s.now().Unix())
	return err
}
