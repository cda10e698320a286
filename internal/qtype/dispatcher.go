package qtype

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// Request is one evaluation asked of the dispatcher.
type Request struct {
	Question    question.Question    `json:"question"`
	Answers     question.Answers     `json:"answers"`
	Component   string               `json:"component,omitempty"`
	ComponentID question.ComponentID `json:"component_id,omitempty"`
}

// Evaluation is the dispatcher's answer for a Request.
type Evaluation struct {
	QuestionID string                `json:"question_id,omitempty"`
	Type       string                `json:"type"`
	Enabled    bool                  `json:"enabled"`
	Complete   question.Completeness `json:"complete"`
	Gradable   question.Gradability  `json:"gradable"`
	Component  Component             `json:"component,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	Logger      *zap.Logger
	Concurrency int // max evaluations in flight for a batch
}

func WithLogger(l *zap.Logger) Option { return func(c *config) { c.Logger = l } }
func WithConcurrency(n int) Option    { return func(c *config) { c.Concurrency = n } }

// Dispatcher routes contract calls to the handler registered for the
// question's type. Unknown types get the Indeterminate results.
type Dispatcher struct {
	reg *Registry
	log *zap.Logger
	cfg config
}

func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	cfg := config{Concurrency: 8}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Dispatcher{reg: reg, log: cfg.Logger, cfg: cfg}
}

func (d *Dispatcher) Registry() *Registry { return d.reg }

func (d *Dispatcher) IsCompleteResponse(q question.Question, a question.Answers, component string, id question.ComponentID) question.Completeness {
	h, ok := d.reg.Lookup(q.Type)
	if !ok {
		return question.CompletenessIndeterminate
	}
	return h.IsCompleteResponse(q, a, component, id).Normalize()
}

func (d *Dispatcher) IsGradableResponse(q question.Question, a question.Answers, component string, id question.ComponentID) question.Gradability {
	h, ok := d.reg.Lookup(q.Type)
	if !ok {
		return question.GradabilityIndeterminate
	}
	return h.IsGradableResponse(q, a, component, id).Normalize()
}

// IsSameResponse falls back to comparing every field of both snapshots when
// no handler knows the type.
func (d *Dispatcher) IsSameResponse(q question.Question, prev, next question.Answers, component string, id question.ComponentID) bool {
	h, ok := d.reg.Lookup(q.Type)
	if !ok {
		return SameSnapshot(prev, next)
	}
	return h.IsSameResponse(q, prev, next, component, id)
}

func (d *Dispatcher) ResolveComponent(ctx context.Context, q question.Question) (Component, bool, error) {
	h, ok := d.reg.Lookup(q.Type)
	if !ok {
		return "", false, nil
	}
	return h.ResolveComponent(ctx, q)
}

// IsEnabled asks the handler for typ. ErrUnknownType when nothing is registered.
func (d *Dispatcher) IsEnabled(ctx context.Context, typ string) (bool, error) {
	h, ok := d.reg.Lookup(typ)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	return h.IsEnabled(ctx)
}

// EnabledTypes lists the registered types whose handler is currently enabled.
func (d *Dispatcher) EnabledTypes(ctx context.Context) ([]string, error) {
	var out []string
	for _, t := range d.reg.Types() {
		on, err := d.IsEnabled(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("enabled %s: %w", t, err)
		}
		if on {
			out = append(out, t)
		}
	}
	return out, nil
}

// Evaluate runs the full contract for one request. A disabled handler is
// treated like a missing one: both predicates come back Indeterminate.
func (d *Dispatcher) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	ev := Evaluation{
		QuestionID: req.Question.ID,
		Type:       req.Question.Type,
		Complete:   question.CompletenessIndeterminate,
		Gradable:   question.GradabilityIndeterminate,
	}
	h, ok := d.reg.Lookup(req.Question.Type)
	if !ok {
		return ev, fmt.Errorf("%w: %s", ErrUnknownType, req.Question.Type)
	}
	on, err := h.IsEnabled(ctx)
	if err != nil {
		return ev, fmt.Errorf("enabled %s: %w", h.Type(), err)
	}
	if !on {
		d.log.Debug("handler disabled", zap.String("type", h.Type()), zap.String("question", req.Question.ID))
		return ev, nil
	}
	ev.Enabled = true
	ev.Complete = h.IsCompleteResponse(req.Question, req.Answers, req.Component, req.ComponentID).Normalize()
	ev.Gradable = h.IsGradableResponse(req.Question, req.Answers, req.Component, req.ComponentID).Normalize()

	c, found, err := h.ResolveComponent(ctx, req.Question)
	if err != nil {
		return ev, fmt.Errorf("component %s: %w", h.Type(), err)
	}
	if found {
		ev.Component = c
	}
	return ev, nil
}

// EvaluateBatch evaluates reqs concurrently. Per-request failures are
// reported in Evaluation.Error; the returned error is only set when ctx ends.
// Results keep the order of reqs.
func (d *Dispatcher) EvaluateBatch(ctx context.Context, reqs []Request) ([]Evaluation, error) {
	out := make([]Evaluation, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ev, err := d.Evaluate(gctx, reqs[i])
			if err != nil {
				d.log.Warn("evaluate failed",
					zap.Int("index", i),
					zap.String("type", reqs[i].Question.Type),
					zap.Error(err))
				ev.Error = err.Error()
			}
			out[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SameSnapshot compares every key present in either snapshot, treating a
// missing key as blank.
func SameSnapshot(prev, next question.Answers) bool {
	return SameAtKeys(prev, next, unionKeys(prev, next))
}

// SameAtKeys compares the text of each key, treating a missing key as blank.
func SameAtKeys(prev, next question.Answers, keys []string) bool {
	for _, k := range keys {
		if prev.Text(k) != next.Text(k) {
			return false
		}
	}
	return true
}

func unionKeys(a, b question.Answers) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, k := range append(a.Keys(), b.Keys()...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
