package chart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/avaliacao/core"
)

type answer struct {
	submission int
	question   int64
	value      string
}

// fakeRepo keeps questions of project 1 and answers in insertion order.
type fakeRepo struct {
	axes    map[int64]Axis
	answers []answer
	err     error
	queries int
}

func (r *fakeRepo) GetAxis(_ context.Context, projectID, questionID int64, _ ...core.DBExecutor) (Axis, error) {
	if r.err != nil {
		return Axis{}, r.err
	}
	axis, ok := r.axes[questionID]
	if !ok || projectID != 1 {
		return Axis{}, ErrQuestionNotFound
	}
	return axis, nil
}

func (r *fakeRepo) QueryAnswers(_ context.Context, _, questionID int64, _ ...core.DBExecutor) ([]string, error) {
	r.queries++
	values := make([]string, 0)
	for _, a := range r.answers {
		if a.question == questionID && a.value != "" {
			values = append(values, a.value)
		}
	}
	return values, nil
}

func (r *fakeRepo) QueryAnswerPairs(_ context.Context, _, xID, yID int64, _ ...core.DBExecutor) ([]Row, error) {
	r.queries++
	xs := make(map[int]string)
	for _, a := range r.answers {
		if a.question == xID && a.value != "" {
			xs[a.submission] = a.value
		}
	}
	rows := make([]Row, 0)
	for _, a := range r.answers {
		if x, ok := xs[a.submission]; ok && a.question == yID && a.value != "" {
			rows = append(rows, Row{X: x, Y: a.value})
		}
	}
	return rows, nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		axes: map[int64]Axis{
			1: {QuestionID: 1, Text: "Amount", Type: TypeNumber},
			2: {QuestionID: 2, Text: "Color", Type: TypeText},
			3: {QuestionID: 3, Text: "Day", Type: TypeDate},
		},
		answers: []answer{
			{1, 1, "10"}, {1, 2, "red"}, {1, 3, "2024-01-06"},
			{2, 1, "20"}, {2, 2, "red"}, {2, 3, "2024-01-05"},
			{3, 1, "30"}, {3, 2, "blue"}, {3, 3, "2024-01-06"},
		},
	}
}

var testOpts = Options{Marker: Marker{Size: 8, Color: "blue"}}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantJSON string
		wantErr  string
	}{
		{
			name:     "bar sum",
			req:      Request{Kind: KindBar, XQuestionID: 2, YQuestionID: 1, Aggregation: AggSum},
			wantJSON: `{"type":"bar","title":"Sum of Amount by Color","categories":["red","blue"],"series":[{"name":"Sum of Amount","data":[30,30]}]}`,
		},
		{
			name:     "bar default aggregation",
			req:      Request{Kind: KindBar, XQuestionID: 2, YQuestionID: 1},
			wantJSON: `{"type":"bar","title":"Sum of Amount by Color","categories":["red","blue"],"series":[{"name":"Sum of Amount","data":[30,30]}]}`,
		},
		{
			name:     "bar count",
			req:      Request{Kind: KindBar, XQuestionID: 2, YQuestionID: 1, Aggregation: AggCount},
			wantJSON: `{"type":"bar","title":"Count of Amount by Color","categories":["red","blue"],"series":[{"name":"Count of Amount","data":[2,1]}]}`,
		},
		{
			name:     "pie",
			req:      Request{Kind: KindPie, XQuestionID: 2},
			wantJSON: `{"type":"pie","title":"Distribution: Color","series":[{"name":"red","data":2},{"name":"blue","data":1}]}`,
		},
		{
			name:     "line over dates",
			req:      Request{Kind: KindLine, XQuestionID: 3, YQuestionID: 1},
			wantJSON: `{"type":"line","title":"Sum of Amount over Day","categories":["05/01/2024","06/01/2024"],"series":[{"name":"Sum of Amount","data":[20,40],"mode":"lines+markers"}]}`,
		},
		{
			name:     "scatter",
			req:      Request{Kind: KindScatter, XQuestionID: 1},
			wantJSON: `{"type":"scatter","title":"Scatter: Amount","series":[{"name":"Amount","data":[[1,10],[2,20],[3,30]],"mode":"markers","marker":{"size":8,"color":"blue"}}]}`,
		},
		{
			name:    "pie with y",
			req:     Request{Kind: KindPie, XQuestionID: 2, YQuestionID: 1},
			wantErr: "pie chart accepts only one axis",
		},
		{
			name:    "bar without y",
			req:     Request{Kind: KindBar, XQuestionID: 2},
			wantErr: "bar chart requires two axes (X and Y)",
		},
		{
			name:    "unknown question",
			req:     Request{Kind: KindPie, XQuestionID: 99},
			wantErr: "axis not found",
		},
		{
			name:    "unknown kind",
			req:     Request{Kind: "radar", XQuestionID: 2},
			wantErr: "unsupported chart type",
		},
		{
			name:    "unknown aggregation",
			req:     Request{Kind: KindBar, XQuestionID: 2, YQuestionID: 1, Aggregation: "avg"},
			wantErr: "unsupported aggregation mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo, nil, testOpts)

			doc, err := svc.Generate(context.Background(), 1, tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.True(t, core.IsValidationError(err))
				assert.Zero(t, repo.queries, "validation must fail before querying answers")
				return
			}
			require.NoError(t, err)
			data, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(data))
			assert.Equal(t, 1, repo.queries)
		})
	}
}

func TestGenerateOtherProject(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testOpts)
	_, err := svc.Generate(context.Background(), 2, Request{Kind: KindPie, XQuestionID: 2})
	require.Error(t, err)
	assert.Equal(t, "axis not found", err.Error())
}

func TestGenerateEmptyBar(t *testing.T) {
	repo := newFakeRepo()
	repo.answers = nil
	svc := NewService(repo, nil, testOpts)

	doc, err := svc.Generate(context.Background(), 1, Request{Kind: KindBar, XQuestionID: 2, YQuestionID: 1})
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bar","title":"Sum of Amount by Color","categories":[],"series":[{"name":"Sum of Amount","data":[]}]}`, string(data))
}

func TestGenerateIdempotent(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testOpts)
	req := Request{Kind: KindLine, XQuestionID: 3, YQuestionID: 1}

	var prev []byte
	for i := 0; i < 3; i++ {
		doc, err := svc.Generate(context.Background(), 1, req)
		require.NoError(t, err)
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		if prev != nil {
			assert.Equal(t, string(prev), string(data))
		}
		prev = data
	}
}

func TestGenerateRepoError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, nil, testOpts)

	_, err := svc.Generate(context.Background(), 1, Request{Kind: KindPie, XQuestionID: 2})
	require.Error(t, err)
	assert.False(t, core.IsValidationError(err))
	assert.Equal(t, "connection refused", errors.Cause(err).Error())
}
