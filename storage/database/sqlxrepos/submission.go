package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/submission"
)

type submissionRepository struct {
	repo
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{repo: newRepo(db)}
}

func (r *submissionRepository) EntityExists(ctx context.Context, typeID, seq int64, exec ...core.DBExecutor) (bool, error) {
	var n int
	err := r.getContext(ctx, exec, &n,
		`SELECT COUNT(*) FROM entity WHERE entity_type_id = ? AND seq = ?`,
		typeID, seq,
	)
	if err != nil {
		return false, errors.Wrap(err, "selecting entity")
	}
	return n > 0, nil
}

// CreateSubmission inserts the submission and its answers. Pass a transaction to make it atomic.
func (r *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission, answers []submission.Answer, exec ...core.DBExecutor) (submission.Submission, error) {
	err := r.getContext(ctx, exec, &sub.ID,
		`INSERT INTO submission (project_id, user_id, created_at) VALUES (?, ?, ?) RETURNING id`,
		sub.ProjectID, sub.UserID, sub.CreatedAt,
	)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}

	q := sqlx.Rebind(r.bindType, `
		INSERT INTO answer (submission_id, question_id, value, entity_type_id, entity_seq)
		VALUES (?, ?, ?, ?, ?)`,
	)
	sub.Answers = make(map[int64]string, len(answers))
	for _, a := range answers {
		if _, err = r.getExec(exec).ExecContext(ctx, q, sub.ID, a.QuestionID, a.Value, a.EntityTypeID, a.EntitySeq); err != nil {
			return submission.Submission{}, errors.Wrap(err, "inserting answer")
		}
		sub.Answers[a.QuestionID] = a.Value
	}
	return sub, nil
}

func (r *submissionRepository) QueryUserSubmissions(ctx context.Context, projectID int64, userID string, exec ...core.DBExecutor) ([]submission.Submission, error) {
	subs := make([]submission.Submission, 0)
	err := r.selectContext(ctx, exec, &subs, `
		SELECT id, project_id, user_id, created_at
		FROM submission
		WHERE project_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC`,
		projectID, userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}

	answers := make([]submission.Answer, 0)
	err = r.selectContext(ctx, exec, &answers, `
		SELECT a.submission_id, a.question_id, COALESCE(a.value, '') AS value, a.entity_type_id, a.entity_seq
		FROM answer a
		JOIN submission s ON s.id = a.submission_id
		WHERE s.project_id = ? AND s.user_id = ?`,
		projectID, userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting answers")
	}

	idx := make(map[int64]int, len(subs))
	for i := range subs {
		subs[i].Answers = make(map[int64]string)
		idx[subs[i].ID] = i
	}
	for _, a := range answers {
		if i, ok := idx[a.SubmissionID]; ok {
			subs[i].Answers[a.QuestionID] = a.Value
		}
	}
	return subs, nil
}
