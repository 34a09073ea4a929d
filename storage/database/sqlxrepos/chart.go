package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
)

type chartRepository struct {
	repo
}

var _ chart.Repository = (*chartRepository)(nil) // interface compliance check

func NewChartRepository(db *sqlx.DB) chart.Repository {
	return &chartRepository{repo: newRepo(db)}
}

func (r *chartRepository) GetAxis(ctx context.Context, projectID, questionID int64, exec ...core.DBExecutor) (chart.Axis, error) {
	axes := make([]chart.Axis, 0, 1)
	err := r.selectContext(ctx, exec, &axes,
		`SELECT id, text, type FROM question WHERE id = ? AND project_id = ?`,
		questionID, projectID,
	)
	if err != nil {
		return chart.Axis{}, errors.Wrap(err, "selecting question")
	}
	if len(axes) == 0 {
		return chart.Axis{}, chart.ErrQuestionNotFound
	}
	return axes[0], nil
}

func (r *chartRepository) QueryAnswers(ctx context.Context, projectID, questionID int64, exec ...core.DBExecutor) ([]string, error) {
	answers := make([]struct {
		Value string `db:"value"`
	}, 0)
	err := r.selectContext(ctx, exec, &answers, `
		SELECT a.value AS value
		FROM answer a
		JOIN submission s ON s.id = a.submission_id
		WHERE s.project_id = ? AND a.question_id = ? AND a.value IS NOT NULL AND a.value <> ''
		ORDER BY s.created_at, s.id`,
		projectID, questionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting answers")
	}

	values := make([]string, len(answers))
	for i, a := range answers {
		values[i] = a.Value
	}
	return values, nil
}

func (r *chartRepository) QueryAnswerPairs(ctx context.Context, projectID, xQuestionID, yQuestionID int64, exec ...core.DBExecutor) ([]chart.Row, error) {
	rows := make([]chart.Row, 0)
	err := r.selectContext(ctx, exec, &rows, `
		SELECT ax.value AS x_value, ay.value AS y_value
		FROM submission s
		JOIN answer ax ON ax.submission_id = s.id AND ax.question_id = ?
		JOIN answer ay ON ay.submission_id = s.id AND ay.question_id = ?
		WHERE s.project_id = ?
		  AND ax.value IS NOT NULL AND ax.value <> ''
		  AND ay.value IS NOT NULL AND ay.value <> ''
		ORDER BY s.created_at, s.id`,
		xQuestionID, yQuestionID, projectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting answer pairs")
	}
	return rows, nil
}
