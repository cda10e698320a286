// Package calculated handles calculated questions: numeric answers,
// optionally with units, computed from a question dataset.
package calculated

import (
	"context"

	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
	"github.com/mind-engage/mindengage-qtype/internal/question"
)

const (
	Type = "qtype_calculated"
	Name = "QtypeCalculated"

	Component qtype.Component = "qtype-calculated"
)

// Handler implements qtype.Handler for the calculated family.
type Handler struct {
	gate enable.Gate
}

// New returns a calculated handler enabled according to gate (always
// enabled when gate is nil).
func New(gate enable.Gate) *Handler {
	if gate == nil {
		gate = enable.Always(true)
	}
	return &Handler{gate: gate}
}

var _ qtype.Handler = (*Handler)(nil)

func (h *Handler) Name() string { return Name }
func (h *Handler) Type() string { return Type }

func (h *Handler) ResolveComponent(context.Context, question.Question) (qtype.Component, bool, error) {
	return Component, true, nil
}

func (h *Handler) IsEnabled(ctx context.Context) (bool, error) { return h.gate.Enabled(ctx) }

// IsGradableResponse: gradable as soon as one answer field is non-blank.
func (h *Handler) IsGradableResponse(q question.Question, answers question.Answers, _ string, _ question.ComponentID) question.Gradability {
	s, state := decodeSettings(q)
	if state == settingsMalformed {
		return question.GradabilityIndeterminate
	}
	for _, f := range s.answerFields() {
		if v, _ := answers.Get(f); !v.IsBlank() {
			return question.Gradable
		}
	}
	return question.NotGradable
}

// IsCompleteResponse: every answer field holds a number and the unit rules
// of the question are met. Without settings a trailing unit cannot be
// judged, so the result is Indeterminate.
func (h *Handler) IsCompleteResponse(q question.Question, answers question.Answers, component string, componentID question.ComponentID) question.Completeness {
	s, state := decodeSettings(q)
	if state == settingsMalformed {
		return question.CompletenessIndeterminate
	}
	if h.IsGradableResponse(q, answers, component, componentID) != question.Gradable {
		return question.Incomplete
	}

	undecided := false
	for _, f := range s.answerFields() {
		v, _ := answers.Get(f)
		if v.IsBlank() {
			return question.Incomplete
		}
		_, unit, ok := splitAnswer(v, s.UnitsLeft)
		if !ok {
			return question.Incomplete
		}
		if state == settingsAbsent {
			if unit != "" {
				undecided = true
			}
			continue
		}
		switch s.UnitDisplay {
		case UnitsInput:
			if unit == "" {
				if s.unitRequired() {
					return question.Incomplete
				}
				continue
			}
			if !s.knowsUnit(unit) {
				return question.Incomplete
			}
		default:
			if unit != "" {
				return question.Incomplete
			}
		}
	}
	if undecided {
		return question.CompletenessIndeterminate
	}

	if state == settingsOK && s.UnitDisplay == UnitsSelect {
		u, _ := answers.Get(UnitField)
		if u.IsBlank() {
			if s.unitRequired() {
				return question.Incomplete
			}
		} else if !s.knowsUnit(u.Text()) {
			return question.Incomplete
		}
	}
	return question.Complete
}

// IsSameResponse compares the answer fields and the unit field. Without
// settings every key of either snapshot is compared. A missing field counts
// as blank.
func (h *Handler) IsSameResponse(q question.Question, prev, next question.Answers, _ string, _ question.ComponentID) bool {
	for _, k := range compareKeys(q, prev, next) {
		a, _ := prev.Get(k)
		b, _ := next.Get(k)
		if !sameValue(a, b) {
			return false
		}
	}
	return true
}

func compareKeys(q question.Question, prev, next question.Answers) []string {
	s, state := decodeSettings(q)
	if state == settingsOK {
		return append(append([]string{}, s.answerFields()...), UnitField)
	}
	seen := map[string]struct{}{}
	var keys []string
	for _, k := range append(prev.Keys(), next.Keys()...) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}
