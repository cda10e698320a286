package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// maxBatch bounds a single batch evaluation request.
const maxBatch = 500

type qtypeInfo struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Component qtype.Component `json:"component,omitempty"`
	Enabled   bool            `json:"enabled"`
	Error     string          `json:"error,omitempty"`
}

// GET /qtypes[?enabled=true]
func ListQtypesHandler(d *qtype.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types := d.Registry().Types()
		if r.URL.Query().Get("enabled") == "true" {
			var err error
			if types, err = d.EnabledTypes(r.Context()); err != nil {
				http.Error(w, "enabled: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		out := make([]qtypeInfo, 0, len(types))
		for _, t := range types {
			h, ok := d.Registry().Lookup(t)
			if !ok {
				continue
			}
			info := qtypeInfo{Type: t, Name: h.Name()}
			if c, found, err := h.ResolveComponent(r.Context(), question.Question{Type: t}); err == nil && found {
				info.Component = c
			}
			on, err := h.IsEnabled(r.Context())
			if err != nil {
				info.Error = err.Error()
			}
			info.Enabled = on
			out = append(out, info)
		}
		writeJSON(w, out)
	}
}

// evalReq is a qtype.Request whose answers may instead arrive as the raw
// form fields of the attempt, named <prefix><field>.
type evalReq struct {
	qtype.Request
	Prefix     string                    `json:"prefix,omitempty"`
	RawAnswers map[string]question.Value `json:"raw_answers,omitempty"`
}

func (e evalReq) resolve() qtype.Request {
	req := e.Request
	if e.Prefix != "" {
		req.Answers = question.ExtractPrefixed(e.RawAnswers, e.Prefix)
	}
	return req
}

// POST /questions/evaluate
func EvaluateHandler(d *qtype.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body evalReq
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		req := body.resolve()
		if req.Question.Type == "" {
			http.Error(w, "question.type required", http.StatusBadRequest)
			return
		}
		ev, err := d.Evaluate(r.Context(), req)
		switch {
		case errors.Is(err, qtype.ErrUnknownType):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "evaluate: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, ev)
	}
}

type batchReq struct {
	Requests []evalReq `json:"requests"`
}

type batchResp struct {
	Results []qtype.Evaluation `json:"results"`
}

// POST /questions/evaluate/batch
func EvaluateBatchHandler(d *qtype.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Requests) > maxBatch {
			http.Error(w, "too many requests in batch", http.StatusBadRequest)
			return
		}
		reqs := make([]qtype.Request, len(req.Requests))
		for i, e := range req.Requests {
			reqs[i] = e.resolve()
		}
		res, err := d.EvaluateBatch(r.Context(), reqs)
		if err != nil {
			http.Error(w, "evaluate: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, batchResp{Results: res})
	}
}

type sameReq struct {
	Question    question.Question    `json:"question"`
	PrevAnswers question.Answers     `json:"prev_answers"`
	NewAnswers  question.Answers     `json:"new_answers"`
	Component   string               `json:"component,omitempty"`
	ComponentID question.ComponentID `json:"component_id,omitempty"`
}

// POST /questions/same
func SameResponseHandler(d *qtype.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sameReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		same := d.IsSameResponse(req.Question, req.PrevAnswers, req.NewAnswers, req.Component, req.ComponentID)
		writeJSON(w, map[string]any{"type": req.Question.Type, "same": same})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
