package calculated

import (
	"encoding/json"
	"strings"

	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// UnitDisplay says where the student gives the unit, if anywhere.
type UnitDisplay int

const (
	UnitsNone   UnitDisplay = 0 // bare number
	UnitsInput  UnitDisplay = 1 // typed in the answer field next to the number
	UnitsSelect UnitDisplay = 2 // separate field named "unit"
)

// Unit grading types. Anything but UnitOptional makes the unit required.
const (
	UnitOptional         = 0
	UnitPenaliseAnswer   = 1
	UnitPenaliseQuestion = 2
)

// UnitField is the answer field holding the unit when UnitDisplay is UnitsSelect.
const UnitField = "unit"

// DefaultField is the answer field used when the question declares none.
const DefaultField = "answer"

type Unit struct {
	Unit       string  `json:"unit"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// Settings is the calculated family's view of question.Question.Settings.
type Settings struct {
	Fields          []string    `json:"fields,omitempty"`
	UnitDisplay     UnitDisplay `json:"unitdisplay"`
	UnitGradingType int         `json:"unitgradingtype"`
	UnitsLeft       bool        `json:"unitsleft"`
	Units           []Unit      `json:"units,omitempty"`
}

type settingsState int

const (
	settingsAbsent settingsState = iota
	settingsOK
	settingsMalformed
)

func decodeSettings(q question.Question) (Settings, settingsState) {
	if !q.HasSettings() {
		return Settings{}, settingsAbsent
	}
	var s Settings
	if err := json.Unmarshal(q.Settings, &s); err != nil {
		return Settings{}, settingsMalformed
	}
	for _, f := range s.Fields {
		if strings.TrimSpace(f) == "" {
			return Settings{}, settingsMalformed
		}
	}
	switch s.UnitDisplay {
	case UnitsNone, UnitsInput, UnitsSelect:
	default:
		return Settings{}, settingsMalformed
	}
	return s, settingsOK
}

// answerFields are the fields that must hold a number.
func (s Settings) answerFields() []string {
	if len(s.Fields) == 0 {
		return []string{DefaultField}
	}
	return s.Fields
}

func (s Settings) unitRequired() bool { return s.UnitGradingType != UnitOptional }

func (s Settings) knowsUnit(u string) bool {
	u = strings.TrimSpace(u)
	for _, k := range s.Units {
		if strings.TrimSpace(k.Unit) == u {
			return true
		}
	}
	return false
}
