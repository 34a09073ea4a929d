package chart

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// QuestionType is the declared answer format of a question.
type QuestionType string

const (
	TypeNumber  QuestionType = "numero"
	TypeDate    QuestionType = "data"
	TypeEmail   QuestionType = "email"
	TypeText    QuestionType = "texto"
	TypeBoolean QuestionType = "booleano"
	TypeEntity  QuestionType = "entidade"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{TypeNumber, TypeDate, TypeEmail, TypeText, TypeBoolean, TypeEntity}

var ErrUnknownQuestionType = errors.New("unknown question type")

// ParseQuestionType returns the QuestionType named s, or ErrUnknownQuestionType.
func ParseQuestionType(s string) (QuestionType, error) {
	for _, qt := range QuestionTypes {
		if string(qt) == s {
			return qt, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownQuestionType, "%q", s)
}

// Scan implements sql.Scanner so that stored types are checked when read.
func (qt *QuestionType) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("chart.QuestionType: cannot scan %T", src)
	}
	parsed, err := ParseQuestionType(s)
	if err != nil {
		return err
	}
	*qt = parsed
	return nil
}

// IsNumeric reports whether answers of this type aggregate as numbers.
func (qt QuestionType) IsNumeric() bool {
	switch qt {
	case TypeNumber:
		return true
	case TypeDate, TypeEmail, TypeText, TypeBoolean, TypeEntity:
		return false
	default:
		panic(fmt.Sprintf("chart: unhandled question type %q", string(qt)))
	}
}

// Kind is the requested chart kind.
type Kind string

const (
	KindPie     Kind = "pie"
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
)

// Aggregation is how the Y values of a group are reduced.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggCount Aggregation = "count"
)

// Label is the aggregation name shown in series names and titles.
func (agg Aggregation) Label() string {
	if agg == AggCount {
		return "Count"
	}
	return "Sum"
}

// Axis is a question selected as the X or Y dimension of a chart.
type Axis struct {
	QuestionID int64        `json:"question_id" db:"id"`
	Text       string       `json:"text" db:"text"`
	Type       QuestionType `json:"type" db:"type"`
}

// Request is what a caller sends to generate a chart.
type Request struct {
	Kind        Kind        `json:"chart_kind"`
	XQuestionID int64       `json:"x_question_id"`
	YQuestionID int64       `json:"y_question_id"`
	Aggregation Aggregation `json:"aggregation_mode"`
}

// HasY reports whether a Y question was selected.
func (r Request) HasY() bool { return r.YQuestionID != 0 }

// Row is one answer pair of the same submission; Y is empty for single-axis charts.
type Row struct {
	X string `db:"x_value"`
	Y string `db:"y_value"`
}

// Marker styles the points of a scatter series.
type Marker struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// Series is one named data sequence. Data holds a count (pie),
// a list of numbers (bar/line) or a list of [x, y] points (scatter).
type Series struct {
	Name   string      `json:"name"`
	Data   interface{} `json:"data"`
	Mode   string      `json:"mode,omitempty"`
	Marker *Marker     `json:"marker,omitempty"`
}

// Document is the generic chart-series payload consumed by the charting front end.
type Document struct {
	Type       Kind     `json:"type"`
	Title      string   `json:"title"`
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series"`
}

// MarshalJSON always emits categories for bar and line charts, even when empty.
func (d Document) MarshalJSON() ([]byte, error) {
	type document Document
	if d.Type != KindBar && d.Type != KindLine {
		return json.Marshal(document(d))
	}
	cats := d.Categories
	if cats == nil {
		cats = []string{}
	}
	return json.Marshal(struct {
		document
		Categories []string `json:"categories"`
	}{document(d), cats})
}
