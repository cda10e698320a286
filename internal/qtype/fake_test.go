package qtype_test

import (
	"context"
	"sync/atomic"

	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// fakeHandler returns canned results and counts calls.
type fakeHandler struct {
	typ       string
	complete  question.Completeness
	gradable  question.Gradability
	same      bool
	component qtype.Component
	enabled   bool
	enableErr error

	calls atomic.Int32
}

func (f *fakeHandler) Name() string { return "fake:" + f.typ }
func (f *fakeHandler) Type() string { return f.typ }

func (f *fakeHandler) ResolveComponent(context.Context, question.Question) (qtype.Component, bool, error) {
	return f.component, f.component != "", nil
}

func (f *fakeHandler) IsCompleteResponse(question.Question, question.Answers, string, question.ComponentID) question.Completeness {
	f.calls.Add(1)
	return f.complete
}

func (f *fakeHandler) IsGradableResponse(question.Question, question.Answers, string, question.ComponentID) question.Gradability {
	f.calls.Add(1)
	return f.gradable
}

func (f *fakeHandler) IsSameResponse(question.Question, question.Answers, question.Answers, string, question.ComponentID) bool {
	f.calls.Add(1)
	return f.same
}

func (f *fakeHandler) IsEnabled(context.Context) (bool, error) { return f.enabled, f.enableErr }
