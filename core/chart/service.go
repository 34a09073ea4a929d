package chart

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
)

var ErrQuestionNotFound = errors.New("question not found")

type (
	// Repository reads the answer store. Answers are never empty and come in insertion order
	// (submission creation time, then submission ID).
	Repository interface {
		GetAxis(ctx context.Context, projectID, questionID int64, exec ...core.DBExecutor) (Axis, error)
		QueryAnswers(ctx context.Context, projectID, questionID int64, exec ...core.DBExecutor) ([]string, error)
		QueryAnswerPairs(ctx context.Context, projectID, xQuestionID, yQuestionID int64, exec ...core.DBExecutor) ([]Row, error)
	}

	Service interface {
		// Generate builds the chart document of a project. Project access must already be checked.
		Generate(ctx context.Context, projectID int64, req Request) (Document, error)
	}

	Options struct {
		Validate ValidateOptions
		Marker   Marker
	}

	service struct {
		repo   Repository
		logger core.Logger
		opts   Options
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewOptions(conf *core.Config) Options {
	return Options{
		Validate: ValidateOptions{StrictBarAxes: conf.Charts.StrictBarAxes},
		Marker:   Marker{Size: conf.Charts.ScatterMarkerSize, Color: conf.Charts.ScatterMarkerColor},
	}
}

func NewService(repo Repository, logger core.Logger, opts Options) Service {
	return &service{repo: repo, logger: logger, opts: opts}
}

// resolveAxis returns nil when the question does not belong to the project.
func (svc *service) resolveAxis(ctx context.Context, projectID, questionID int64) (*Axis, error) {
	axis, err := svc.repo.GetAxis(ctx, projectID, questionID)
	if err != nil {
		if errors.Cause(err) == ErrQuestionNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "resolving axis")
	}
	return &axis, nil
}

func (svc *service) Generate(ctx context.Context, projectID int64, req Request) (Document, error) {
	x, err := svc.resolveAxis(ctx, projectID, req.XQuestionID)
	if err != nil {
		return Document{}, err
	}
	var y *Axis
	if req.HasY() {
		if y, err = svc.resolveAxis(ctx, projectID, req.YQuestionID); err != nil {
			return Document{}, err
		}
	}

	if err = Validate(req.Kind, x, y, req.HasY(), svc.opts.Validate); err != nil {
		return Document{}, err
	}
	agg, err := ValidateAggregation(req.Aggregation)
	if err != nil {
		return Document{}, err
	}

	switch req.Kind {
	case KindPie, KindScatter:
		values, err := svc.repo.QueryAnswers(ctx, projectID, x.QuestionID)
		if err != nil {
			return Document{}, errors.Wrap(err, "querying answers")
		}
		lbl := Labels{X: x.Text}
		if req.Kind == KindPie {
			return FormatPie(Pie(values, x.Type), lbl), nil
		}
		points, skipped := Scatter(values, x.Type)
		svc.logSkipped(skipped, projectID, x)
		return FormatScatter(points, lbl, svc.opts.Marker), nil

	case KindBar, KindLine:
		rows, err := svc.repo.QueryAnswerPairs(ctx, projectID, x.QuestionID, y.QuestionID)
		if err != nil {
			return Document{}, errors.Wrap(err, "querying answer pairs")
		}
		g := Group(rows, x.Type, y.Type, agg)
		svc.logSkipped(g.Skipped, projectID, y)
		return FormatGrouped(req.Kind, g, Labels{X: x.Text, Y: y.Text}, agg), nil
	}
	return Document{}, invalid(ErrUnsupportedKind)
}

func (svc *service) logSkipped(skipped int, projectID int64, axis *Axis) {
	if skipped == 0 || svc.logger == nil {
		return
	}
	svc.logger.Debug(
		fmt.Sprintf("chart: skipped %d answer(s) that could not be read as %s", skipped, axis.Type),
		map[string]interface{}{"project_id": projectID, "question_id": axis.QuestionID},
	)
}
