package submission

import "time"

type (
	// Submission is one filled-in form. Submissions are never updated once created.
	Submission struct {
		ID        int64            `json:"id" db:"id"`
		ProjectID int64            `json:"project_id" db:"project_id"`
		UserID    string           `json:"user_id" db:"user_id"`
		CreatedAt time.Time        `json:"created_at" db:"created_at"`
		Answers   map[int64]string `json:"answers" db:"-"`
	}

	Answer struct {
		SubmissionID int64  `db:"submission_id"`
		QuestionID   int64  `db:"question_id"`
		Value        string `db:"value"`
		EntityTypeID *int64 `db:"entity_type_id"`
		EntitySeq    *int64 `db:"entity_seq"`
	}

	// NewSubmission holds the raw answers keyed by question ID.
	NewSubmission struct {
		Answers map[int64]string `json:"answers" validate:"required"`
	}
)
