package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

// Submission records the answer a user chose for a quiz. A user has at most one per quiz.
type Submission struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	QuizID       string    `json:"quiz_id"`
	QuizAnswerID string    `json:"quiz_answer_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitInput is the body of a self-serve submission.
type SubmitInput struct {
	AnswerID string `json:"answer_id" validate:"required"`
}

func (in *SubmitInput) Validate(validate *validator.Validate) error {
	in.AnswerID = core.CleanString(in.AnswerID)
	return validate.Struct(in)
}

// SubmitForUserInput is the body of a submission made by an administrator on behalf of a user.
type SubmitForUserInput struct {
	UserID   string `json:"user_id" validate:"required"`
	AnswerID string `json:"answer_id" validate:"required"`
}

func (in *SubmitForUserInput) Validate(validate *validator.Validate) error {
	in.UserID = core.CleanString(in.UserID)
	in.AnswerID = core.CleanString(in.AnswerID)
	return validate.Struct(in)
}

type Result struct {
	QuizID        string `json:"quiz_id"`
	AnswerID      string `json:"answer_id"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	TotalPoints   int    `json:"total_points"`
}
