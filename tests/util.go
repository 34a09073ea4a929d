package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/core/project"
	"github.com/trezcool/avaliacao/core/user"
	"github.com/trezcool/avaliacao/storage/database"
)

// NewConfig returns a test configuration backed by a sqlite file in dir.
func NewConfig(dir string) *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = filepath.Join(dir, "test.db")
	return conf
}

// PrepareDB opens a fresh, migrated sqlite database that lives for the duration of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := NewConfig(t.TempDir())
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db.DB, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func exec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		t.Fatalf("exec(%q) failed: %v", query, err)
	}
}

func insert(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	if err := db.Get(&id, db.Rebind(query+" RETURNING id"), args...); err != nil {
		t.Fatalf("insert(%q) failed: %v", query, err)
	}
	return id
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateProject creates a project whose members are the given users.
func CreateProject(t *testing.T, db *sqlx.DB, name string, members ...user.User) project.Project {
	t.Helper()
	prj := project.Project{Name: name, CreatedAt: time.Now().UTC()}
	prj.ID = insert(t, db, `INSERT INTO project (name, created_at) VALUES (?, ?)`, prj.Name, prj.CreatedAt)
	for _, usr := range members {
		exec(t, db, `INSERT INTO project_member (user_id, project_id) VALUES (?, ?)`, usr.ID, prj.ID)
	}
	return prj
}

func CreateQuestion(t *testing.T, db *sqlx.DB, projectID int64, text string, qt chart.QuestionType, options ...string) project.Question {
	t.Helper()
	q := project.Question{ProjectID: projectID, Text: text, Type: qt, Source: project.SourceFree}
	if len(options) > 0 {
		q.Source = project.SourcePredefined
	}
	q.ID = insert(t, db,
		`INSERT INTO question (project_id, text, type, source) VALUES (?, ?, ?, ?)`,
		q.ProjectID, q.Text, string(q.Type), string(q.Source),
	)
	for _, opt := range options {
		exec(t, db, `INSERT INTO question_option (question_id, value) VALUES (?, ?)`, q.ID, opt)
	}
	return q
}

// CreateEntityType creates an entity type with the given attribute labels (seq 1, 2, ...).
// Attributes listed in hidden are not shown in entity display texts.
func CreateEntityType(t *testing.T, db *sqlx.DB, projectID int64, name string, labels []string, hidden ...string) int64 {
	t.Helper()
	typeID := insert(t, db, `INSERT INTO entity_type (project_id, name) VALUES (?, ?)`, projectID, name)
	isHidden := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		isHidden[h] = true
	}
	for i, label := range labels {
		exec(t, db,
			`INSERT INTO attribute_def (entity_type_id, seq, label, visible) VALUES (?, ?, ?, ?)`,
			typeID, i+1, label, !isHidden[label],
		)
	}
	return typeID
}

// CreateEntity creates entity seq of typeID with attribute values in attribute order.
func CreateEntity(t *testing.T, db *sqlx.DB, typeID, seq int64, values ...string) {
	t.Helper()
	exec(t, db, `INSERT INTO entity (entity_type_id, seq) VALUES (?, ?)`, typeID, seq)
	for i, v := range values {
		exec(t, db,
			`INSERT INTO entity_attribute (entity_type_id, entity_seq, attribute_seq, value) VALUES (?, ?, ?, ?)`,
			typeID, seq, i+1, v,
		)
	}
}

func CreateEntityQuestion(t *testing.T, db *sqlx.DB, projectID int64, text string, typeID int64) project.Question {
	t.Helper()
	q := project.Question{ProjectID: projectID, Text: text, Type: chart.TypeEntity, Source: project.SourceEntity, EntityTypeID: &typeID}
	q.ID = insert(t, db,
		`INSERT INTO question (project_id, text, type, source, entity_type_id) VALUES (?, ?, ?, ?, ?)`,
		q.ProjectID, q.Text, string(q.Type), string(q.Source), typeID,
	)
	return q
}

// CreateSubmission stores raw answers as is, bypassing validation.
func CreateSubmission(t *testing.T, db *sqlx.DB, projectID int64, userID string, createdAt time.Time, answers map[int64]string) int64 {
	t.Helper()
	id := insert(t, db,
		`INSERT INTO submission (project_id, user_id, created_at) VALUES (?, ?, ?)`,
		projectID, userID, createdAt.UTC(),
	)
	for qid, v := range answers {
		exec(t, db, `INSERT INTO answer (submission_id, question_id, value) VALUES (?, ?, ?)`, id, qid, v)
	}
	return id
}
