package question

import (
	"encoding/json"
	"sort"
	"strings"
)

// Answers is an immutable response snapshot keyed by unprefixed field name.
// The zero value is an empty snapshot.
type Answers struct {
	m map[string]Value
}

// NewAnswers copies m; later changes to m do not affect the snapshot.
func NewAnswers(m map[string]Value) Answers {
	if len(m) == 0 {
		return Answers{}
	}
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Answers{m: cp}
}

// FromStrings builds a snapshot of string values.
func FromStrings(m map[string]string) Answers {
	vals := make(map[string]Value, len(m))
	for k, s := range m {
		vals[k] = String(s)
	}
	return Answers{m: vals}
}

// ExtractPrefixed keeps the entries of raw whose key starts with prefix and
// strips it, e.g. "q17:3_answer" with prefix "q17:3_" becomes "answer".
func ExtractPrefixed(raw map[string]Value, prefix string) Answers {
	out := map[string]Value{}
	for k, v := range raw {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		name := strings.TrimPrefix(k, prefix)
		if name == "" {
			continue
		}
		out[name] = v
	}
	return Answers{m: out}
}

func (a Answers) Get(key string) (Value, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Text returns the text of key, "" when missing.
func (a Answers) Text(key string) string { return a.m[key].Text() }

func (a Answers) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

func (a Answers) Len() int { return len(a.m) }

// Keys returns the field names in sorted order.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var m map[string]Value
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	a.m = m
	return nil
}

func (a Answers) MarshalJSON() ([]byte, error) {
	if a.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.m)
}
