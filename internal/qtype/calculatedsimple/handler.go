// Package calculatedsimple handles calculated simple questions. They are
// evaluated exactly like calculated questions and rendered with the same
// component; only enablement is decided separately.
package calculatedsimple

import (
	"context"

	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/calculated"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
	"github.com/mind-engage/mindengage-qtype/internal/question"
)

const (
	Type = "qtype_calculatedsimple"
	Name = "QtypeCalculatedSimple"
)

// Handler forwards every evaluation to the calculated family handler it was
// built with.
type Handler struct {
	delegate qtype.Evaluator
	gate     enable.Gate
}

// New wraps calculatedHandler. gate decides enablement; nil means always enabled.
func New(calculatedHandler qtype.Evaluator, gate enable.Gate) *Handler {
	if gate == nil {
		gate = enable.Always(true)
	}
	return &Handler{delegate: calculatedHandler, gate: gate}
}

var _ qtype.Handler = (*Handler)(nil)

func (h *Handler) Name() string { return Name }
func (h *Handler) Type() string { return Type }

// ResolveComponent returns the calculated component: calculated simple
// renders the same way.
func (h *Handler) ResolveComponent(context.Context, question.Question) (qtype.Component, bool, error) {
	return calculated.Component, true, nil
}

func (h *Handler) IsCompleteResponse(q question.Question, answers question.Answers, component string, componentID question.ComponentID) question.Completeness {
	return h.delegate.IsCompleteResponse(q, answers, component, componentID)
}

func (h *Handler) IsGradableResponse(q question.Question, answers question.Answers, component string, componentID question.ComponentID) question.Gradability {
	return h.delegate.IsGradableResponse(q, answers, component, componentID)
}

func (h *Handler) IsSameResponse(q question.Question, prev, next question.Answers, component string, componentID question.ComponentID) bool {
	return h.delegate.IsSameResponse(q, prev, next, component, componentID)
}

func (h *Handler) IsEnabled(ctx context.Context) (bool, error) { return h.gate.Enabled(ctx) }
