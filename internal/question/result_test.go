package question

import (
	"encoding/json"
	"testing"
)

func TestCompleteness_Normalize(t *testing.T) {
	for _, c := range []Completeness{Complete, Incomplete, CompletenessIndeterminate} {
		if c.Normalize() != c {
			t.Fatalf("%v should normalise to itself", c)
		}
	}
	for _, c := range []Completeness{2, -2, 7} {
		if c.Normalize() != CompletenessIndeterminate {
			t.Fatalf("%d should normalise to indeterminate", int(c))
		}
	}
}

func TestGradability_Normalize(t *testing.T) {
	for _, g := range []Gradability{Gradable, NotGradable, GradabilityIndeterminate} {
		if g.Normalize() != g {
			t.Fatalf("%v should normalise to itself", g)
		}
	}
	if Gradability(5).Normalize() != GradabilityIndeterminate {
		t.Fatalf("5 should normalise to indeterminate")
	}
}

func TestTriState_JSONUsesConventionalInts(t *testing.T) {
	b, err := json.Marshal(struct {
		C Completeness `json:"c"`
		G Gradability  `json:"g"`
	}{Complete, GradabilityIndeterminate})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"c":1,"g":-1}` {
		t.Fatalf("got %s", b)
	}

	var c Completeness
	if err := json.Unmarshal([]byte(`9`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c != CompletenessIndeterminate {
		t.Fatalf("out of range value decoded as %v", c)
	}
}

func TestTriState_String(t *testing.T) {
	if Incomplete.String() != "incomplete" || NotGradable.String() != "not_gradable" {
		t.Fatalf("unexpected names: %s %s", Incomplete, NotGradable)
	}
}
