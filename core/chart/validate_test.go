package chart

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
)

func TestValidate(t *testing.T) {
	num := &Axis{QuestionID: 1, Text: "Age", Type: TypeNumber}
	txt := &Axis{QuestionID: 2, Text: "Color", Type: TypeText}
	txt2 := &Axis{QuestionID: 3, Text: "Name", Type: TypeText}
	date := &Axis{QuestionID: 4, Text: "Day", Type: TypeDate}

	tests := []struct {
		name       string
		kind       Kind
		x, y       *Axis
		yRequested bool
		opts       ValidateOptions
		wantErr    string
	}{
		{name: "pie ok", kind: KindPie, x: txt},
		{name: "pie with y", kind: KindPie, x: txt, y: num, yRequested: true, wantErr: "pie chart accepts only one axis"},
		{name: "pie unresolved y still rejected", kind: KindPie, x: txt, yRequested: true, wantErr: "pie chart accepts only one axis"},
		{name: "pie missing x", kind: KindPie, wantErr: "axis not found"},
		{name: "scatter ok", kind: KindScatter, x: date},
		{name: "scatter with y", kind: KindScatter, x: num, y: num, yRequested: true, wantErr: "scatter chart accepts only one axis"},
		{name: "bar ok", kind: KindBar, x: txt, y: num, yRequested: true},
		{name: "bar without y", kind: KindBar, x: txt, wantErr: "bar chart requires two axes (X and Y)"},
		{name: "bar unresolved y", kind: KindBar, x: txt, yRequested: true, wantErr: "axis not found"},
		{name: "bar unresolved x", kind: KindBar, y: num, yRequested: true, wantErr: "axis not found"},
		{name: "bar same categorical types relaxed", kind: KindBar, x: txt, y: txt2, yRequested: true},
		{
			name: "bar same categorical types strict",
			kind: KindBar, x: txt, y: txt2, yRequested: true,
			opts:    ValidateOptions{StrictBarAxes: true},
			wantErr: "bar chart with two non-numeric axes requires different question types",
		},
		{
			name: "bar strict numeric y",
			kind: KindBar, x: txt, y: num, yRequested: true,
			opts: ValidateOptions{StrictBarAxes: true},
		},
		{name: "line ok", kind: KindLine, x: date, y: num, yRequested: true},
		{name: "line without y", kind: KindLine, x: date, wantErr: "line chart requires two axes (X and Y)"},
		{name: "unknown kind", kind: "radar", x: txt, wantErr: "unsupported chart type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.kind, tt.x, tt.y, tt.yRequested, tt.opts)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !core.IsValidationError(err) {
				t.Errorf("Validate() error %T is not a validation error", errors.Cause(err))
			}
		})
	}
}

func TestValidateAggregation(t *testing.T) {
	tests := []struct {
		in      Aggregation
		want    Aggregation
		wantErr bool
	}{
		{in: "", want: AggSum},
		{in: AggSum, want: AggSum},
		{in: AggCount, want: AggCount},
		{in: "avg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := ValidateAggregation(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ValidateAggregation() = (%v, %v), want %v", got, err, tt.want)
			}
		})
	}
}
