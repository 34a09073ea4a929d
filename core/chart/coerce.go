package chart

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/avaliacao/core"
)

// DisplayDateLayout is how dates are shown on chart labels (DD/MM/YYYY).
const DisplayDateLayout = "02/01/2006"

func parseNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseDate(raw string) (time.Time, bool) {
	t, err := time.Parse(core.ISODateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Label returns the display text of a raw answer.
// Dates are reformatted when they parse, anything else is shown verbatim.
func Label(raw string, qt QuestionType) string {
	switch qt {
	case TypeDate:
		if t, ok := parseDate(raw); ok {
			return t.Format(DisplayDateLayout)
		}
		return raw
	case TypeNumber, TypeEmail, TypeText, TypeBoolean, TypeEntity:
		return raw
	default:
		panic(fmt.Sprintf("chart: unhandled question type %q", string(qt)))
	}
}

// Number parses a numeric answer. ok is false when the row must be skipped.
func Number(raw string, qt QuestionType) (val float64, ok bool) {
	switch qt {
	case TypeNumber:
		return parseNumber(raw)
	case TypeDate, TypeEmail, TypeText, TypeBoolean, TypeEntity:
		return 0, false
	default:
		panic(fmt.Sprintf("chart: unhandled question type %q", string(qt)))
	}
}

// Position maps a raw answer to a y coordinate for scatter charts.
// Categorical answers get hash(raw) mod 1000, which only spreads points visually.
func Position(raw string, qt QuestionType) (float64, bool) {
	switch qt {
	case TypeNumber:
		return parseNumber(raw)
	case TypeDate:
		t, ok := parseDate(raw)
		if !ok {
			return 0, false
		}
		return float64(t.Unix()), true
	case TypeEmail, TypeText, TypeBoolean, TypeEntity:
		h := fnv.New32a()
		_, _ = h.Write([]byte(raw))
		return float64(h.Sum32() % 1000), true
	default:
		panic(fmt.Sprintf("chart: unhandled question type %q", string(qt)))
	}
}
