package chart

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
)

var (
	ErrAxisNotFound           = errors.New("axis not found")
	ErrUnsupportedKind        = errors.New("unsupported chart type")
	ErrUnsupportedAggregation = errors.New("unsupported aggregation mode")
)

// ValidateOptions toggles optional compatibility rules.
type ValidateOptions struct {
	StrictBarAxes bool
}

func invalid(err error) error { return core.NewValidationError(err) }

// Validate checks that the resolved axes can produce the requested chart.
// A nil axis means the question was not found in the project; yRequested tells whether
// the caller asked for a Y axis at all. Rules are evaluated in order, the first failure wins.
func Validate(kind Kind, x, y *Axis, yRequested bool, opts ValidateOptions) error {
	switch kind {
	case KindPie, KindScatter:
		if yRequested {
			return invalid(fmt.Errorf("%s chart accepts only one axis", kind))
		}
		if x == nil {
			return invalid(ErrAxisNotFound)
		}
		return nil

	case KindBar, KindLine:
		if !yRequested {
			return invalid(fmt.Errorf("%s chart requires two axes (X and Y)", kind))
		}
		if x == nil || y == nil {
			return invalid(ErrAxisNotFound)
		}
		if kind == KindBar && opts.StrictBarAxes && !y.Type.IsNumeric() && x.Type == y.Type {
			return invalid(errors.New("bar chart with two non-numeric axes requires different question types"))
		}
		return nil
	}
	return invalid(ErrUnsupportedKind)
}

// ValidateAggregation defaults an empty mode to sum.
func ValidateAggregation(agg Aggregation) (Aggregation, error) {
	switch agg {
	case "":
		return AggSum, nil
	case AggSum, AggCount:
		return agg, nil
	}
	return "", invalid(ErrUnsupportedAggregation)
}
