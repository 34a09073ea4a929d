package chart

import (
	"fmt"
	"math"
	"sort"
)

// Slice is one pie segment.
type Slice struct {
	Label string
	Count int
}

// Grouped is the output of a two-axis aggregation; Values[i] belongs to Categories[i].
type Grouped struct {
	Categories []string
	Values     []float64
	Skipped    int // y values excluded from a numeric sum
}

// Point is a scatter [index, y] pair.
type Point [2]float64

// Pie counts answers per display label, most common first.
// Ties keep the order in which the labels were first seen.
func Pie(values []string, qt QuestionType) []Slice {
	idx := make(map[string]int)
	slices := make([]Slice, 0)
	for _, raw := range values {
		label := Label(raw, qt)
		i, ok := idx[label]
		if !ok {
			i = len(slices)
			idx[label] = i
			slices = append(slices, Slice{Label: label})
		}
		slices[i].Count++
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Count > slices[j].Count })
	return slices
}

type group struct {
	key   string // raw X answer
	label string
	count int
	sum   float64
}

// Group groups the Y values of rows by their raw X answer and reduces every group with agg.
// Summing a non-numeric Y axis counts its values instead.
func Group(rows []Row, xType, yType QuestionType, agg Aggregation) Grouped {
	sumNumbers := agg == AggSum && yType.IsNumeric()

	var out Grouped
	idx := make(map[string]int)
	groups := make([]*group, 0)
	for _, row := range rows {
		i, ok := idx[row.X]
		if !ok {
			i = len(groups)
			idx[row.X] = i
			groups = append(groups, &group{key: row.X, label: Label(row.X, xType)})
		}
		g := groups[i]
		g.count++
		if sumNumbers {
			if y, ok := Number(row.Y, yType); ok {
				g.sum += y
			} else {
				out.Skipped++
			}
		}
	}

	sortGroups(groups, xType)

	// distinct raw answers may share a label (e.g. "05/01/2024" typed as is and "2024-01-05")
	byLabel := make(map[string]int, len(groups))
	out.Categories = make([]string, 0, len(groups))
	out.Values = make([]float64, 0, len(groups))
	for _, g := range groups {
		val := float64(g.count)
		if sumNumbers {
			val = g.sum
		}
		if i, ok := byLabel[g.label]; ok {
			out.Values[i] += val
			continue
		}
		byLabel[g.label] = len(out.Categories)
		out.Categories = append(out.Categories, g.label)
		out.Values = append(out.Values, val)
	}

	// sums of finite numbers may still overflow
	for i, v := range out.Values {
		switch {
		case math.IsInf(v, 1):
			out.Values[i] = math.MaxFloat64
		case math.IsInf(v, -1):
			out.Values[i] = -math.MaxFloat64
		}
	}
	return out
}

// sortGroups orders dates chronologically and numbers ascending.
// Keys that fail to parse go last, in lexicographic order. Other types keep first-seen order.
func sortGroups(groups []*group, xType QuestionType) {
	switch xType {
	case TypeDate:
		sort.SliceStable(groups, func(i, j int) bool {
			ti, iok := parseDate(groups[i].key)
			tj, jok := parseDate(groups[j].key)
			switch {
			case iok && jok:
				return ti.Before(tj)
			case iok != jok:
				return iok
			default:
				return groups[i].key < groups[j].key
			}
		})
	case TypeNumber:
		sort.SliceStable(groups, func(i, j int) bool {
			fi, iok := parseNumber(groups[i].key)
			fj, jok := parseNumber(groups[j].key)
			switch {
			case iok && jok:
				return fi < fj
			case iok != jok:
				return iok
			default:
				return groups[i].key < groups[j].key
			}
		})
	case TypeEmail, TypeText, TypeBoolean, TypeEntity:
	default:
		panic(fmt.Sprintf("chart: unhandled question type %q", string(xType)))
	}
}

// Scatter projects answers (in insertion order) to [index, y] points.
// Answers that cannot be positioned are skipped and do not consume an index.
func Scatter(values []string, qt QuestionType) (points []Point, skipped int) {
	points = make([]Point, 0, len(values))
	for _, raw := range values {
		y, ok := Position(raw, qt)
		if !ok {
			skipped++
			continue
		}
		points = append(points, Point{float64(len(points) + 1), y})
	}
	return points, skipped
}
