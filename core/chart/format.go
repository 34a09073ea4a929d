package chart

import "fmt"

const (
	modeLine    = "lines+markers"
	modeScatter = "markers"
)

// Labels carries the question texts shown in titles and series names.
type Labels struct {
	X string
	Y string
}

func aggLabel(agg Aggregation, y string) string {
	return fmt.Sprintf("%s of %s", agg.Label(), y)
}

// FormatPie shapes a pie chart with one series per slice.
func FormatPie(slices []Slice, lbl Labels) Document {
	series := make([]Series, 0, len(slices))
	for _, s := range slices {
		series = append(series, Series{Name: s.Label, Data: s.Count})
	}
	return Document{
		Type:   KindPie,
		Title:  "Distribution: " + lbl.X,
		Series: series,
	}
}

// FormatGrouped shapes a bar or line chart; categories and data stay positionally aligned.
func FormatGrouped(kind Kind, g Grouped, lbl Labels, agg Aggregation) Document {
	name := aggLabel(agg, lbl.Y)
	doc := Document{
		Type:       kind,
		Categories: g.Categories,
		Series:     []Series{{Name: name, Data: g.Values}},
	}
	if kind == KindLine {
		doc.Title = fmt.Sprintf("%s over %s", name, lbl.X)
		doc.Series[0].Mode = modeLine
	} else {
		doc.Title = fmt.Sprintf("%s by %s", name, lbl.X)
	}
	return doc
}

// FormatScatter shapes a single-series scatter chart.
func FormatScatter(points []Point, lbl Labels, marker Marker) Document {
	return Document{
		Type:  KindScatter,
		Title: "Scatter: " + lbl.X,
		Series: []Series{{
			Name:   lbl.X,
			Data:   points,
			Mode:   modeScatter,
			Marker: &marker,
		}},
	}
}
