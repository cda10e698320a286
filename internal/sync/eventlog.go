package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types recorded for handler administration.
const (
	TypeQtypeEnabled  = "QtypeEnabled"
	TypeQtypeDisabled = "QtypeDisabled"
)

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, now: time.Now} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, r.now().Unix())
	return err
}

// AppendToggle records an enablement change for a question type.
func (r *EventRepo) AppendToggle(ctx context.Context, qtype string, enabled bool, actor string) error {
	typ := TypeQtypeDisabled
	if enabled {
		typ = TypeQtypeEnabled
	}
	data, err := json.Marshal(map[string]any{"type": qtype, "enabled": enabled, "actor": actor})
	if err != nil {
		return err
	}
	if err := r.Append(ctx, Event{Type: typ, Key: qtype, DataJSON: string(data)}); err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	return nil
}

// Since returns events with offset greater than after, oldest first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at
		 FROM event_log WHERE "offset" > $1 ORDER BY "offset" LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
