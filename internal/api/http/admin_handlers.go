package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/mindengage-qtype/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
	syncx "github.com/mind-engage/mindengage-qtype/internal/sync"
)

type setEnabledReq struct {
	Enabled *bool `json:"enabled"`
}

// PUT /admin/qtypes/{type}/enabled
func SetEnabledHandler(d *qtype.Dispatcher, flags enable.Writer, events *syncx.EventRepo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ := strings.TrimSpace(chi.URLParam(r, "type"))
		if _, ok := d.Registry().Lookup(typ); !ok {
			http.Error(w, "unknown question type", http.StatusNotFound)
			return
		}
		var req setEnabledReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			http.Error(w, "body must be {\"enabled\": true|false}", http.StatusBadRequest)
			return
		}
		if err := flags.Set(r.Context(), typ, *req.Enabled); err != nil {
			http.Error(w, "set flag: "+err.Error(), http.StatusInternalServerError)
			return
		}
		actor := authmw.Actor(r.Context())
		if events != nil {
			if err := events.AppendToggle(r.Context(), typ, *req.Enabled, actor); err != nil {
				// the flag is already written; losing the audit entry is not fatal
				log.Warn("append toggle event", zap.String("type", typ), zap.Error(err))
			}
		}
		log.Info("qtype flag changed", zap.String("type", typ), zap.Bool("enabled", *req.Enabled), zap.String("actor", actor))

		on, err := d.IsEnabled(r.Context(), typ)
		if err != nil {
			http.Error(w, "enabled: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{"type": typ, "flag": *req.Enabled, "enabled": on})
	}
}

// maxEvents caps one page of the event log.
const maxEvents = 500

// GET /admin/events?after=<offset>&limit=<n>
func ListEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var after int64
		if v := q.Get("after"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				http.Error(w, "after must be a non-negative offset", http.StatusBadRequest)
				return
			}
			after = n
		}
		limit := 100
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be positive", http.StatusBadRequest)
				return
			}
			limit = min(n, maxEvents)
		}
		list, err := events.Since(r.Context(), after, limit)
		if err != nil {
			http.Error(w, "events: "+err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]eventView, 0, len(list))
		for _, e := range list {
			var data json.RawMessage
			if e.DataJSON != "" {
				data = json.RawMessage(e.DataJSON)
			}
			out = append(out, eventView{
				Offset:    e.Offset,
				SiteID:    e.SiteID,
				Type:      e.Type,
				Key:       e.Key,
				Data:      data,
				CreatedAt: e.CreatedAt,
			})
		}
		writeJSON(w, out)
	}
}

type eventView struct {
	Offset    int64           `json:"offset"`
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}
