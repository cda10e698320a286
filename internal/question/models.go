package question

import (
	"encoding/json"
	"strconv"
)

// Question is the read-only view a handler gets of a question instance.
// Settings carries the family-specific metadata; the contract never looks
// inside it, each family decodes its own typed struct.
type Question struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"` // qtype_calculated, qtype_calculatedsimple, ...
	Name     string          `json:"name,omitempty"`
	Slot     int             `json:"slot,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// HasSettings reports whether the question carries any family metadata.
func (q Question) HasSettings() bool {
	s := string(q.Settings)
	return s != "" && s != "null"
}

// ComponentID identifies the UI binding context a question instance is shown in.
type ComponentID string

func ComponentIDFromInt(id int64) ComponentID { return ComponentID(strconv.FormatInt(id, 10)) }

func (id ComponentID) String() string { return string(id) }
