package gormdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/quiz"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
)

type quizRepository struct {
	transactor
	db *gorm.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *gorm.DB) *quizRepository {
	return &quizRepository{transactor: transactor{db: db}, db: db}
}

func (repo quizRepository) HasAnswered(ctx context.Context, userID, quizID string) (bool, error) {
	var count int64
	err := conn(ctx, repo.db).
		Model(&userQuizAnswerRow{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "checking quiz submission")
	}
	return count > 0, nil
}

func (repo quizRepository) CreateSubmission(ctx context.Context, s quiz.Submission) (quiz.Submission, error) {
	s.ID = newID()
	row := &userQuizAnswerRow{
		ID:           s.ID,
		UserID:       s.UserID,
		QuizID:       s.QuizID,
		QuizAnswerID: s.QuizAnswerID,
		CreatedAt:    s.CreatedAt.UTC(),
	}
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return quiz.Submission{}, quiz.ErrAlreadyAnswered
		}
		return quiz.Submission{}, errors.Wrap(err, "inserting quiz submission")
	}
	return s, nil
}

// AddPoints relies on the submission constraints: a (user, quiz) entry is only credited by the
// transaction that recorded the user's single submission for the quiz.
func (repo quizRepository) AddPoints(ctx context.Context, userID, quizID string, points int) (int, error) {
	db := conn(ctx, repo.db)
	now := time.Now().UTC()

	res := db.Model(&leaderboardEntryRow{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points + ?", points),
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "crediting points")
	}
	if res.RowsAffected == 0 {
		row := &leaderboardEntryRow{
			ID:        newID(),
			UserID:    userID,
			QuizID:    quizID,
			Points:    points,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(row).Error; err != nil {
			return 0, errors.Wrap(err, "creating leaderboard entry")
		}
		return points, nil
	}
	return repo.Points(ctx, userID, quizID)
}

func (repo quizRepository) Points(ctx context.Context, userID, quizID string) (int, error) {
	var rows []leaderboardEntryRow
	err := conn(ctx, repo.db).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return 0, errors.Wrap(err, "finding leaderboard entry")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Points, nil
}
