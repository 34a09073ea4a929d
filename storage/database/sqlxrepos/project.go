package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/project"
)

type projectRepository struct {
	repo
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) project.Repository {
	return &projectRepository{repo: newRepo(db)}
}

func (r *projectRepository) IsMember(ctx context.Context, userID string, projectID int64, exec ...core.DBExecutor) (bool, error) {
	var n int
	err := r.getContext(ctx, exec, &n,
		`SELECT COUNT(*) FROM project_member WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	)
	if err != nil {
		return false, errors.Wrap(err, "selecting project member")
	}
	return n > 0, nil
}

func (r *projectRepository) QueryProjectsForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]project.Summary, error) {
	projects := make([]project.Summary, 0)
	err := r.selectContext(ctx, exec, &projects, `
		SELECT p.id, p.name, COUNT(s.id) AS submissions
		FROM project p
		JOIN project_member m ON m.project_id = p.id
		LEFT JOIN submission s ON s.project_id = p.id
		WHERE m.user_id = ?
		GROUP BY p.id, p.name
		ORDER BY p.name`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting projects")
	}
	return projects, nil
}

func (r *projectRepository) CountSubmissions(ctx context.Context, projectID int64, exec ...core.DBExecutor) (int, error) {
	var n int
	if err := r.getContext(ctx, exec, &n, `SELECT COUNT(*) FROM submission WHERE project_id = ?`, projectID); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return n, nil
}

func (r *projectRepository) QueryQuestionSummaries(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]project.QuestionSummary, error) {
	questions := make([]project.QuestionSummary, 0)
	err := r.selectContext(ctx, exec, &questions, `
		SELECT q.id, q.text, q.type, COUNT(a.id) AS answers
		FROM question q
		JOIN answer a ON a.question_id = q.id AND a.value IS NOT NULL AND a.value <> ''
		WHERE q.project_id = ?
		GROUP BY q.id, q.text, q.type
		ORDER BY q.id`,
		projectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting question summaries")
	}
	return questions, nil
}

func (r *projectRepository) QueryQuestions(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]project.Question, error) {
	questions := make([]project.Question, 0)
	err := r.selectContext(ctx, exec, &questions, `
		SELECT id, project_id, text, type, source, entity_type_id
		FROM question
		WHERE project_id = ?
		ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}
	return questions, nil
}

func (r *projectRepository) QueryOptions(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]project.Option, error) {
	opts := make([]project.Option, 0)
	err := r.selectContext(ctx, exec, &opts, `
		SELECT o.question_id, o.value
		FROM question_option o
		JOIN question q ON q.id = o.question_id
		WHERE q.project_id = ?
		ORDER BY o.question_id, o.id`,
		projectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting question options")
	}
	return opts, nil
}

func (r *projectRepository) QueryEntityAttributes(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]project.Attribute, error) {
	attrs := make([]project.Attribute, 0)
	err := r.selectContext(ctx, exec, &attrs, `
		SELECT e.entity_type_id, e.seq AS entity_seq,
		       COALESCE(ad.seq, 0) AS attribute_seq,
		       COALESCE(ad.label, '') AS label,
		       CASE WHEN ad.visible THEN 1 ELSE 0 END AS visible,
		       COALESCE(ea.value, '') AS value
		FROM entity e
		JOIN entity_type et ON et.id = e.entity_type_id
		LEFT JOIN entity_attribute ea ON ea.entity_type_id = e.entity_type_id AND ea.entity_seq = e.seq
		LEFT JOIN attribute_def ad ON ad.entity_type_id = ea.entity_type_id AND ad.seq = ea.attribute_seq
		WHERE et.project_id = ?
		ORDER BY e.entity_type_id, e.seq, attribute_seq`,
		projectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting entity attributes")
	}
	return attrs, nil
}
