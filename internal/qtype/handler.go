package qtype

import (
	"context"

	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// Component names the renderable unit for a question. Two handlers that
// render the same way return the same Component.
type Component string

// Evaluator holds the three response predicates. A handler that reuses
// another family's evaluation keeps a reference to that family's Evaluator.
type Evaluator interface {
	// IsCompleteResponse reports whether every required field is present and
	// well-formed. Indeterminate means the caller must apply its own default.
	IsCompleteResponse(q question.Question, answers question.Answers, component string, componentID question.ComponentID) question.Completeness
	// IsGradableResponse reports whether enough was supplied to attempt
	// automatic grading, independently of completeness.
	IsGradableResponse(q question.Question, answers question.Answers, component string, componentID question.ComponentID) question.Gradability
	// IsSameResponse compares the family's relevant fields of two snapshots.
	// It must be symmetric and reflexive.
	IsSameResponse(q question.Question, prev, next question.Answers, component string, componentID question.ComponentID) bool
}

// Handler is the contract every question type handler implements.
type Handler interface {
	Evaluator

	// Name is a human readable handler name, Type the question type it serves.
	Name() string
	Type() string

	// ResolveComponent returns the component that renders q. ok is false when
	// the handler has no renderer for q; err is only set when an asynchronous
	// lookup failed.
	ResolveComponent(ctx context.Context, q question.Question) (c Component, ok bool, err error)

	// IsEnabled reports whether the handler is active for the site. It is
	// never forwarded implicitly to another handler.
	IsEnabled(ctx context.Context) (bool, error)
}
