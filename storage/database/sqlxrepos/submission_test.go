package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/core/project"
	"github.com/trezcool/avaliacao/core/submission"
	boiledrepos "github.com/trezcool/avaliacao/storage/database/sqlboiler"
	"github.com/trezcool/avaliacao/storage/database/sqlxrepos"
	"github.com/trezcool/avaliacao/tests"
)

func TestSubmissionService(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usr := testutil.CreateUser(t, boiledrepos.NewUserRepository(db), "Ana", "ana@test.com", "Tr0ub4dor&3x", true)
	prj := testutil.CreateProject(t, db, "Survey", usr)
	other := testutil.CreateProject(t, db, "Other", usr)

	age := testutil.CreateQuestion(t, db, prj.ID, "Age", chart.TypeNumber)
	mail := testutil.CreateQuestion(t, db, prj.ID, "Email", chart.TypeEmail)
	day := testutil.CreateQuestion(t, db, prj.ID, "Day", chart.TypeDate)
	color := testutil.CreateQuestion(t, db, prj.ID, "Color", chart.TypeText, "red", "blue")
	typeID := testutil.CreateEntityType(t, db, prj.ID, "School", []string{"Name"})
	testutil.CreateEntity(t, db, typeID, 1, "Escola A")
	school := testutil.CreateEntityQuestion(t, db, prj.ID, "School", typeID)
	foreign := testutil.CreateQuestion(t, db, other.ID, "Foreign", chart.TypeText)

	svc := submission.NewService(
		db,
		sqlxrepos.NewSubmissionRepository(db),
		sqlxrepos.NewProjectRepository(db),
		nil,
	)

	tests := []struct {
		name       string
		answers    map[int64]string
		wantFields map[string]string
		wantErr    error
	}{
		{
			name: "invalid values",
			answers: map[int64]string{
				age.ID:    "abc",
				mail.ID:   "not-an-email",
				day.ID:    "31/12/2024",
				color.ID:  "green",
				school.ID: project.EntityID(typeID, 9),
			},
			wantFields: map[string]string{
				idStr(age.ID):    "must be a number",
				idStr(mail.ID):   "must be a valid email address",
				idStr(day.ID):    "must be a valid date (YYYY-MM-DD)",
				idStr(color.ID):  "must be one of the predefined options",
				idStr(school.ID): "entity does not exist",
			},
		},
		{
			name:       "wrong entity type",
			answers:    map[int64]string{school.ID: project.EntityID(typeID+1, 1)},
			wantFields: map[string]string{idStr(school.ID): "must reference an entity of this question"},
		},
		{
			name:       "question of another project",
			answers:    map[int64]string{foreign.ID: "x"},
			wantFields: map[string]string{idStr(foreign.ID): "question not found"},
		},
		{
			name:    "only empty answers",
			answers: map[int64]string{age.ID: "  ", mail.ID: ""},
			wantErr: submission.ErrNoAnswers,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, prj.ID, usr.ID, submission.NewSubmission{Answers: tt.answers})
			require.Error(t, err)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want *core.ValidationError, got %T", err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, vErr.Err)
				return
			}
			fields := make(map[string]string, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields[f.Field] = f.Error
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}

	t.Run("submit and history", func(t *testing.T) {
		t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		submission.NowFunc = func() time.Time { return t0 }
		first, err := svc.Submit(ctx, prj.ID, usr.ID, submission.NewSubmission{Answers: map[int64]string{
			age.ID:    " 42 ",
			mail.ID:   "ana@test.com",
			day.ID:    "2024-05-01",
			color.ID:  "red",
			school.ID: project.EntityID(typeID, 1),
		}})
		require.NoError(t, err)
		assert.Equal(t, "42", first.Answers[age.ID])

		submission.NowFunc = func() time.Time { return t0.Add(time.Hour) }
		second, err := svc.Submit(ctx, prj.ID, usr.ID, submission.NewSubmission{Answers: map[int64]string{age.ID: "7", mail.ID: ""}})
		require.NoError(t, err)
		submission.NowFunc = time.Now

		history, err := svc.History(ctx, prj.ID, usr.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, second.ID, history[0].ID)
		assert.Equal(t, map[int64]string{age.ID: "7"}, history[0].Answers)
		assert.Equal(t, first.ID, history[1].ID)
		assert.Len(t, history[1].Answers, 5)
		assert.True(t, t0.Equal(history[1].CreatedAt))

		var entityRefs int
		require.NoError(t, db.Get(&entityRefs,
			`SELECT COUNT(*) FROM answer WHERE submission_id = ? AND entity_type_id = ? AND entity_seq = 1`,
			first.ID, typeID,
		))
		assert.Equal(t, 1, entityRefs)

		history, err = svc.History(ctx, other.ID, usr.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
