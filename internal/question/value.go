package question

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindBlank Kind = iota
	KindString
	KindNumber
	KindBool
	KindInvalid // object/array payloads; kept so evaluation can classify them
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a single submitted answer field. The zero Value is blank.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

func Blank() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, text: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Invalid(raw string) Value { return Value{kind: KindInvalid, text: raw} }

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

func (v Value) Kind() Kind { return v.kind }

// Text is the canonical textual form of the value. Blank and invalid
// values have no text.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// IsBlank reports whether the field holds nothing usable. "0" is not blank.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.text) == ""
	case KindNumber, KindBool:
		return false
	default:
		return true
	}
}

// Float returns the numeric reading of the value, if it has one.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Blank()
		return nil
	}
	switch data[0] {
	case 'n':
		*v = Blank()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		*v = Invalid(string(data))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		// keep the literal so "5.0" round-trips as typed
		*v = Value{kind: KindNumber, num: f, text: string(data)}
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.text), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}
