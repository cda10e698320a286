package calculated

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-qtype/internal/question"
)

// A number as students type it: optional sign, "." or "," decimal mark,
// optional exponent.
const numberPattern = `[+-]?(?:\d+(?:[.,]\d*)?|[.,]\d+)(?:[eE][+-]?\d+)?`

var (
	unitRightRe = regexp.MustCompile(`^(` + numberPattern + `)\s*(.*)$`)
	unitLeftRe  = regexp.MustCompile(`^(.*?)\s*(` + numberPattern + `)$`)
)

// splitAnswer separates the number from whatever text follows it (or
// precedes it when unitsLeft). ok is false when no number can be found.
func splitAnswer(v question.Value, unitsLeft bool) (num float64, unit string, ok bool) {
	if v.Kind() == question.KindNumber {
		f, _ := v.Float()
		return f, "", true
	}
	if v.Kind() != question.KindString {
		return 0, "", false
	}
	s := strings.TrimSpace(v.Text())
	var numText string
	if unitsLeft {
		m := unitLeftRe.FindStringSubmatch(s)
		if m == nil {
			return 0, "", false
		}
		unit, numText = m[1], m[2]
	} else {
		m := unitRightRe.FindStringSubmatch(s)
		if m == nil {
			return 0, "", false
		}
		numText, unit = m[1], m[2]
	}
	f, ok := parseNumber(numText)
	if !ok {
		return 0, "", false
	}
	return f, strings.TrimSpace(unit), true
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// sameValue compares two submitted values by their trimmed text. Rewriting a
// number ("5" to "5.0") is a change of response.
func sameValue(a, b question.Value) bool {
	return strings.TrimSpace(a.Text()) == strings.TrimSpace(b.Text())
}
