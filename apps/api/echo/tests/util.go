package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	. "github.com/trezcool/avaliacao/apps/api/echo"
	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/core/project"
	"github.com/trezcool/avaliacao/core/submission"
	"github.com/trezcool/avaliacao/core/user"
	logsvc "github.com/trezcool/avaliacao/services/logger"
	boiledrepos "github.com/trezcool/avaliacao/storage/database/sqlboiler"
	"github.com/trezcool/avaliacao/storage/database/sqlxrepos"
	"github.com/trezcool/avaliacao/tests"
)

const pwd = "Pa$$w0rd!"

var (
	conf    *core.Config
	usrRepo user.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errAccessDenied = httpErr{Error: "access denied"}
)

func setup(t *testing.T) (*Server, *sqlx.DB) {
	t.Helper()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = boiledrepos.NewUserRepository(db)
	projectRepo := sqlxrepos.NewProjectRepository(db)

	conf = testutil.NewConfig(t.TempDir())
	conf.Debug = false
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)

	// set up server
	server := NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       user.NewService(usrRepo),
			ProjectSvc:    project.NewService(projectRepo),
			ChartSvc:      chart.NewService(sqlxrepos.NewChartRepository(db), logger, chart.NewOptions(conf)),
			SubmissionSvc: submission.NewService(db, sqlxrepos.NewSubmissionRepository(db), projectRepo, logger),
		},
	)
	t.Cleanup(func() { _ = server.Close() })
	return server, db
}

// surveyFixture is a project with three questions answered by three submissions.
type surveyFixture struct {
	member   user.User
	outsider user.User
	project  project.Project
	amount   project.Question
	color    project.Question
	day      project.Question
}

func setupSurvey(t *testing.T, db *sqlx.DB) surveyFixture {
	t.Helper()

	var f surveyFixture
	f.member = testutil.CreateUser(t, usrRepo, "Ana", "ana@test.com", pwd, true)
	f.outsider = testutil.CreateUser(t, usrRepo, "Bob", "bob@test.com", pwd, true)
	f.project = testutil.CreateProject(t, db, "Census", f.member)
	f.amount = testutil.CreateQuestion(t, db, f.project.ID, "Amount", chart.TypeNumber)
	f.color = testutil.CreateQuestion(t, db, f.project.ID, "Color", chart.TypeText)
	f.day = testutil.CreateQuestion(t, db, f.project.ID, "Day", chart.TypeDate)

	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	answers := []map[int64]string{
		{f.amount.ID: "10", f.color.ID: "red", f.day.ID: "2024-01-06"},
		{f.amount.ID: "20", f.color.ID: "red", f.day.ID: "2024-01-05"},
		{f.amount.ID: "30", f.color.ID: "blue", f.day.ID: "2024-01-06"},
	}
	for i, a := range answers {
		testutil.CreateSubmission(t, db, f.project.ID, f.member.ID, start.Add(time.Duration(i)*time.Minute), a)
	}
	return f
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User, origIat ...int64) string {
	token, err := GenerateToken(NewClaims(usr, conf, origIat...), conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func unmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal(%s): %v", string(data), err)
	}
}
