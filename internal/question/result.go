package question

import (
	"encoding/json"
	"fmt"
)

// Completeness answers "has the student finished answering".
type Completeness int8

const (
	CompletenessIndeterminate Completeness = -1
	Incomplete                Completeness = 0
	Complete                  Completeness = 1
)

// Normalize maps anything outside the three defined values to Indeterminate.
func (c Completeness) Normalize() Completeness {
	switch c {
	case Complete, Incomplete:
		return c
	default:
		return CompletenessIndeterminate
	}
}

func (c Completeness) Int() int { return int(c.Normalize()) }

func (c Completeness) String() string {
	switch c.Normalize() {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	default:
		return "indeterminate"
	}
}

func (c Completeness) MarshalJSON() ([]byte, error) { return json.Marshal(c.Int()) }

func (c *Completeness) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("completeness: %w", err)
	}
	*c = Completeness(n).Normalize()
	return nil
}

// Gradability answers "is there enough to attempt automatic grading".
// It is independent of Completeness: an incomplete response may be gradable.
type Gradability int8

const (
	GradabilityIndeterminate Gradability = -1
	NotGradable              Gradability = 0
	Gradable                 Gradability = 1
)

func (g Gradability) Normalize() Gradability {
	switch g {
	case Gradable, NotGradable:
		return g
	default:
		return GradabilityIndeterminate
	}
}

func (g Gradability) Int() int { return int(g.Normalize()) }

func (g Gradability) String() string {
	switch g.Normalize() {
	case Gradable:
		return "gradable"
	case NotGradable:
		return "not_gradable"
	default:
		return "indeterminate"
	}
}

func (g Gradability) MarshalJSON() ([]byte, error) { return json.Marshal(g.Int()) }

func (g *Gradability) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("gradability: %w", err)
	}
	*g = Gradability(n).Normalize()
	return nil
}
