package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/tests"
)

func Test_projectApi_generateChart(t *testing.T) {
	server, db := setup(t)
	f := setupSurvey(t, db)

	foreign := testutil.CreateProject(t, db, "Audit", f.outsider)
	foreignQ := testutil.CreateQuestion(t, db, foreign.ID, "Score", chart.TypeNumber)

	path := fmt.Sprintf("/v1/projects/%d/charts", f.project.ID)
	token := getToken(t, f.member)

	body := func(kind string, x, y int64, agg string) []byte {
		return marchallObj(t, map[string]interface{}{
			"chart_kind":       kind,
			"x_question_id":    x,
			"y_question_id":    y,
			"aggregation_mode": agg,
		})
	}
	errBody := func(msg string) []byte { return marchallObj(t, httpErr{Error: msg}) }

	tests := []httpTest{
		{
			name:     "missing token",
			body:     body("pie", f.color.ID, 0, ""),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "not a member",
			body:     body("pie", f.color.ID, 0, ""),
			token:    getToken(t, f.outsider),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errAccessDenied),
		},
		{
			name:     "pie",
			body:     body("pie", f.color.ID, 0, ""),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"type": "pie",
				"title": "Distribution: Color",
				"series": [{"name": "red", "data": 2}, {"name": "blue", "data": 1}]
			}`),
		},
		{
			name:     "bar count",
			body:     body("bar", f.color.ID, f.amount.ID, "count"),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"type": "bar",
				"title": "Count of Amount by Color",
				"categories": ["red", "blue"],
				"series": [{"name": "Count of Amount", "data": [2, 1]}]
			}`),
		},
		{
			name:     "kind and aggregation are normalized",
			body:     body(" BAR ", f.color.ID, f.amount.ID, "Sum"),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"type": "bar",
				"title": "Sum of Amount by Color",
				"categories": ["red", "blue"],
				"series": [{"name": "Sum of Amount", "data": [30, 30]}]
			}`),
		},
		{
			name:     "line over dates",
			body:     body("line", f.day.ID, f.amount.ID, ""),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"type": "line",
				"title": "Sum of Amount over Day",
				"categories": ["05/01/2024", "06/01/2024"],
				"series": [{"name": "Sum of Amount", "data": [20, 40], "mode": "lines+markers"}]
			}`),
		},
		{
			name:     "scatter",
			body:     body("scatter", f.amount.ID, 0, ""),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"type": "scatter",
				"title": "Scatter: Amount",
				"series": [{
					"name": "Amount",
					"data": [[1, 10], [2, 20], [3, 30]],
					"mode": "markers",
					"marker": {"size": 8, "color": "blue"}
				}]
			}`),
		},
		{
			name:     "line without Y",
			body:     body("line", f.day.ID, 0, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("line chart requires two axes (X and Y)"),
		},
		{
			name:     "pie with Y",
			body:     body("pie", f.color.ID, f.amount.ID, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("pie chart accepts only one axis"),
		},
		{
			name:     "unsupported kind",
			body:     body("radar", f.color.ID, 0, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("unsupported chart type"),
		},
		{
			name:     "missing kind",
			body:     []byte(fmt.Sprintf(`{"x_question_id": %d}`, f.color.ID)),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("unsupported chart type"),
		},
		{
			name:     "unsupported aggregation",
			body:     body("bar", f.color.ID, f.amount.ID, "avg"),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("unsupported aggregation mode"),
		},
		{
			name:     "question of another project",
			body:     body("pie", foreignQ.ID, 0, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("axis not found"),
		},
		{
			name:     "unknown question",
			body:     body("bar", f.color.ID, 999, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: errBody("axis not found"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_projectApi_generateChart_noAnswers(t *testing.T) {
	server, db := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Ana", "ana@test.com", pwd, true)
	prj := testutil.CreateProject(t, db, "Empty", usr)
	x := testutil.CreateQuestion(t, db, prj.ID, "Color", chart.TypeText)
	y := testutil.CreateQuestion(t, db, prj.ID, "Amount", chart.TypeNumber)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{
			"type": "bar",
			"title": "Sum of Amount by Color",
			"categories": [],
			"series": [{"name": "Sum of Amount", "data": []}]
		}`),
	}
	body := []byte(fmt.Sprintf(`{"chart_kind": "bar", "x_question_id": %d, "y_question_id": %d}`, x.ID, y.ID))
	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/charts", prj.ID), getToken(t, usr), body)
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
