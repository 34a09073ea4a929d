package submission

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/core/project"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNoAnswers = errors.New("at least one answer is required")
)

type (
	Repository interface {
		EntityExists(ctx context.Context, typeID, seq int64, exec ...core.DBExecutor) (bool, error)
		CreateSubmission(ctx context.Context, sub Submission, answers []Answer, exec ...core.DBExecutor) (Submission, error)
		// QueryUserSubmissions returns the submissions of a user in a project, newest first.
		QueryUserSubmissions(ctx context.Context, projectID int64, userID string, exec ...core.DBExecutor) ([]Submission, error)
	}

	Service interface {
		// Submit validates the answers against the project's questions and stores them atomically.
		Submit(ctx context.Context, projectID int64, userID string, ns NewSubmission) (Submission, error)
		History(ctx context.Context, projectID int64, userID string) ([]Submission, error)
	}

	service struct {
		db          core.DB
		repo        Repository
		projectRepo project.Repository
		logger      core.Logger
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository, projectRepo project.Repository, logger core.Logger) Service {
	return &service{db: db, repo: repo, projectRepo: projectRepo, logger: logger}
}

func fieldErr(qid int64, msg string) core.FieldError {
	return core.FieldError{Field: strconv.FormatInt(qid, 10), Error: msg}
}

// checkAnswer validates one trimmed, non-empty answer and returns the row to store.
func (svc *service) checkAnswer(ctx context.Context, q project.Question, value string, options map[string]bool) (Answer, string, error) {
	ans := Answer{QuestionID: q.ID, Value: value}

	switch q.Type {
	case chart.TypeNumber:
		if _, ok := chart.Number(value, q.Type); !ok {
			return ans, "must be a number", nil
		}
	case chart.TypeEmail:
		if core.Validate.Var(value, "email") != nil {
			return ans, "must be a valid email address", nil
		}
	case chart.TypeDate:
		if core.Validate.Var(value, "isodate") != nil {
			return ans, "must be a valid date (YYYY-MM-DD)", nil
		}
	case chart.TypeText, chart.TypeBoolean, chart.TypeEntity:
	default:
		panic(fmt.Sprintf("submission: unhandled question type %q", string(q.Type)))
	}

	switch q.Source {
	case project.SourcePredefined:
		if !options[value] {
			return ans, "must be one of the predefined options", nil
		}
	case project.SourceEntity:
		typeID, seq, err := project.ParseEntityID(value)
		if err != nil || q.EntityTypeID == nil || typeID != *q.EntityTypeID {
			return ans, "must reference an entity of this question", nil
		}
		exists, err := svc.repo.EntityExists(ctx, typeID, seq)
		if err != nil {
			return ans, "", errors.Wrap(err, "checking entity")
		}
		if !exists {
			return ans, "entity does not exist", nil
		}
		ans.EntityTypeID, ans.EntitySeq = &typeID, &seq
	}
	return ans, "", nil
}

func (svc *service) validate(ctx context.Context, projectID int64, ns NewSubmission) ([]Answer, error) {
	questions, err := svc.projectRepo.QueryQuestions(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	opts, err := svc.projectRepo.QueryOptions(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying question options")
	}

	byID := make(map[int64]project.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	options := make(map[int64]map[string]bool)
	for _, o := range opts {
		if options[o.QuestionID] == nil {
			options[o.QuestionID] = make(map[string]bool)
		}
		options[o.QuestionID][o.Value] = true
	}

	qids := make([]int64, 0, len(ns.Answers))
	for qid := range ns.Answers {
		qids = append(qids, qid)
	}
	sort.Slice(qids, func(i, j int) bool { return qids[i] < qids[j] })

	var fldErrs []core.FieldError
	answers := make([]Answer, 0, len(qids))
	for _, qid := range qids {
		q, ok := byID[qid]
		if !ok {
			fldErrs = append(fldErrs, fieldErr(qid, "question not found"))
			continue
		}
		value := core.CleanString(ns.Answers[qid])
		if value == "" {
			continue
		}
		ans, msg, err := svc.checkAnswer(ctx, q, value, options[qid])
		if err != nil {
			return nil, err
		}
		if msg != "" {
			fldErrs = append(fldErrs, fieldErr(qid, msg))
			continue
		}
		answers = append(answers, ans)
	}

	if fldErrs != nil {
		return nil, core.NewValidationError(errors.New("invalid answers"), fldErrs...)
	}
	if len(answers) == 0 {
		return nil, core.NewValidationError(ErrNoAnswers)
	}
	return answers, nil
}

func (svc *service) Submit(ctx context.Context, projectID int64, userID string, ns NewSubmission) (Submission, error) {
	answers, err := svc.validate(ctx, projectID, ns)
	if err != nil {
		return Submission{}, err
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Submission{}, errors.Wrap(err, "starting transaction")
	}
	sub, err := svc.repo.CreateSubmission(
		ctx,
		Submission{ProjectID: projectID, UserID: userID, CreatedAt: NowFunc().UTC()},
		answers,
		tx,
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && svc.logger != nil {
			svc.logger.Error("rolling back submission", rbErr)
		}
		return Submission{}, err
	}
	if err = tx.Commit(); err != nil {
		return Submission{}, errors.Wrap(err, "committing submission")
	}
	return sub, nil
}

func (svc *service) History(ctx context.Context, projectID int64, userID string) ([]Submission, error) {
	subs, err := svc.repo.QueryUserSubmissions(ctx, projectID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}
