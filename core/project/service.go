package project

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
)

var (
	// errors
	ErrAccessDenied = errors.New("access denied")
)

type (
	Repository interface {
		IsMember(ctx context.Context, userID string, projectID int64, exec ...core.DBExecutor) (bool, error)
		QueryProjectsForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Summary, error)
		CountSubmissions(ctx context.Context, projectID int64, exec ...core.DBExecutor) (int, error)
		// QueryQuestionSummaries returns the questions having at least one non-empty answer.
		QueryQuestionSummaries(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]QuestionSummary, error)
		QueryQuestions(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]Question, error)
		QueryOptions(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]Option, error)
		// QueryEntityAttributes returns every entity of the project's entity types with its attributes.
		QueryEntityAttributes(ctx context.Context, projectID int64, exec ...core.DBExecutor) ([]Attribute, error)
	}

	Service interface {
		// CheckAccess returns ErrAccessDenied when the user is not a member of the project,
		// including when the project does not exist.
		CheckAccess(ctx context.Context, userID string, projectID int64) error
		ListForUser(ctx context.Context, userID string) ([]Summary, error)
		Overview(ctx context.Context, projectID int64) (Overview, error)
		Form(ctx context.Context, projectID int64) ([]FormQuestion, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckAccess(ctx context.Context, userID string, projectID int64) error {
	if userID == "" || projectID <= 0 {
		return ErrAccessDenied
	}
	ok, err := svc.repo.IsMember(ctx, userID, projectID)
	if err != nil {
		return errors.Wrap(err, "checking project membership")
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

func (svc *service) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	projects, err := svc.repo.QueryProjectsForUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}
	return projects, nil
}

func (svc *service) Overview(ctx context.Context, projectID int64) (Overview, error) {
	total, err := svc.repo.CountSubmissions(ctx, projectID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "counting submissions")
	}
	questions, err := svc.repo.QueryQuestionSummaries(ctx, projectID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying chartable questions")
	}
	return Overview{ProjectID: projectID, Submissions: total, Questions: questions}, nil
}

func (svc *service) Form(ctx context.Context, projectID int64) ([]FormQuestion, error) {
	questions, err := svc.repo.QueryQuestions(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	opts, err := svc.repo.QueryOptions(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying question options")
	}
	attrs, err := svc.repo.QueryEntityAttributes(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying entities")
	}

	optsByQuestion := make(map[int64][]string)
	for _, o := range opts {
		optsByQuestion[o.QuestionID] = append(optsByQuestion[o.QuestionID], o.Value)
	}
	sortAttributes(attrs)
	entitiesByType := make(map[int64][]EntityOption)
	for _, e := range BuildEntities(attrs) {
		entitiesByType[e.TypeID] = append(entitiesByType[e.TypeID], EntityOption{ID: e.ID(), Display: e.Display})
	}

	form := make([]FormQuestion, 0, len(questions))
	for _, q := range questions {
		fq := FormQuestion{ID: q.ID, Text: q.Text, Type: q.Type, Source: q.Source}
		switch q.Source {
		case SourcePredefined:
			fq.Options = optsByQuestion[q.ID]
		case SourceEntity:
			if q.EntityTypeID != nil {
				fq.Entities = entitiesByType[*q.EntityTypeID]
			}
		}
		form = append(form, fq)
	}
	return form, nil
}
