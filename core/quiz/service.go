package quiz

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

var (
	// errors
	ErrAlreadyAnswered = core.NewPermissionError("you have already answered this quiz")

	errAnswerNotInQuiz = "answer does not belong to this quiz"
)

type (
	Repository interface {
		core.Transactor

		// HasAnswered reports whether the user already submitted an answer for the quiz.
		HasAnswered(ctx context.Context, userID, quizID string) (bool, error)
		// CreateSubmission returns ErrAlreadyAnswered when the storage rejects a second
		// submission of the user for the same quiz or answer.
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		// AddPoints credits points to the (user, quiz) leaderboard entry, creating it if needed,
		// and returns the entry's new total.
		AddPoints(ctx context.Context, userID, quizID string, points int) (int, error)
		// Points returns the (user, quiz) leaderboard entry total, 0 when there is none.
		Points(ctx context.Context, userID, quizID string) (int, error)
	}

	QuizGetter interface {
		GetQuiz(ctx context.Context, id string) (course.Quiz, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service interface {
		// Submit records the caller's own answer, crediting the self-serve points when correct.
		Submit(ctx context.Context, userID, quizID string, in SubmitInput) (Result, error)
		// SubmitForUser records an answer on behalf of a user, crediting the admin points when correct.
		SubmitForUser(ctx context.Context, quizID string, in SubmitForUserInput) (Result, error)
	}

	service struct {
		repo            Repository
		quizzes         QuizGetter
		users           UserGetter
		selfServePoints int
		adminPoints     int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, quizzes QuizGetter, users UserGetter, conf *core.Config) Service {
	return &service{
		repo:            repo,
		quizzes:         quizzes,
		users:           users,
		selfServePoints: conf.Quiz.SelfServePoints,
		adminPoints:     conf.Quiz.AdminPoints,
	}
}

func (svc *service) Submit(ctx context.Context, userID, quizID string, in SubmitInput) (Result, error) {
	return svc.submit(ctx, userID, quizID, in.AnswerID, svc.selfServePoints)
}

func (svc *service) SubmitForUser(ctx context.Context, quizID string, in SubmitForUserInput) (Result, error) {
	if _, err := svc.users.GetByID(ctx, in.UserID); err != nil {
		return Result{}, err
	}
	return svc.submit(ctx, in.UserID, quizID, in.AnswerID, svc.adminPoints)
}

func (svc *service) submit(ctx context.Context, userID, quizID, answerID string, points int) (Result, error) {
	q, err := svc.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	answer, ok := q.Answer(answerID)
	if !ok {
		return Result{}, core.NewValidationError(nil, core.FieldError{Field: "answer_id", Error: errAnswerNotInQuiz})
	}

	// early exit only: the uniqueness constraints decide under concurrency
	answered, err := svc.repo.HasAnswered(ctx, userID, q.ID)
	if err != nil {
		return Result{}, errors.Wrap(err, "checking previous submission")
	}
	if answered {
		return Result{}, ErrAlreadyAnswered
	}

	res := Result{QuizID: q.ID, AnswerID: answer.ID, Correct: answer.IsCorrect}
	err = svc.repo.WithinTx(ctx, func(ctx context.Context) error {
		_, err := svc.repo.CreateSubmission(ctx, Submission{
			UserID:       userID,
			QuizID:       q.ID,
			QuizAnswerID: answer.ID,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		if !answer.IsCorrect {
			res.TotalPoints, err = svc.repo.Points(ctx, userID, q.ID)
			return err
		}
		res.PointsAwarded = points
		res.TotalPoints, err = svc.repo.AddPoints(ctx, userID, q.ID, points)
		return err
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyAnswered {
			return Result{}, ErrAlreadyAnswered
		}
		return Result{}, errors.Wrap(err, "recording submission")
	}
	return res, nil
}
