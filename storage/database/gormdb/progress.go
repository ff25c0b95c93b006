package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/progress"
)

type progressRepository struct {
	db *gorm.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *gorm.DB) *progressRepository {
	return &progressRepository{db: db}
}

func unboilProgress(row *userProgressRow) progress.Record {
	return progress.Record{
		ID:          row.ID,
		UserID:      row.UserID,
		VideoID:     row.VideoID,
		CourseID:    row.CourseID,
		IsCompleted: row.IsCompleted,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo progressRepository) CompleteVideo(ctx context.Context, rec progress.Record) (progress.Record, error) {
	db := conn(ctx, repo.db)
	row := &userProgressRow{
		ID:          newID(),
		UserID:      rec.UserID,
		VideoID:     rec.VideoID,
		CourseID:    rec.CourseID,
		IsCompleted: true,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "upserting progress")
	}

	var stored userProgressRow
	err = db.Where("user_id = ? AND video_id = ? AND course_id = ?", rec.UserID, rec.VideoID, rec.CourseID).
		Take(&stored).Error
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "finding progress")
	}
	return unboilProgress(&stored), nil
}

// courseScope joins a table having a module_id column (aliased as alias) up to the course weeks.
func courseScope(alias, courseID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN modules m ON m.id = "+alias+".module_id").
			Joins("JOIN course_weeks w ON w.id = m.course_week_id").
			Where("w.course_id = ?", courseID)
	}
}

func (repo progressRepository) count(db *gorm.DB, msg string) (int, error) {
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, msg)
	}
	return int(n), nil
}

func (repo progressRepository) CountVideos(ctx context.Context, courseID string) (int, error) {
	q := conn(ctx, repo.db).Table("videos AS v").Scopes(courseScope("v", courseID))
	return repo.count(q, "counting course videos")
}

func (repo progressRepository) CountCompletedVideos(ctx context.Context, userID, courseID string) (int, error) {
	q := conn(ctx, repo.db).
		Table("videos AS v").
		Scopes(courseScope("v", courseID)).
		Where("EXISTS (SELECT 1 FROM user_progress up WHERE up.video_id = v.id AND up.user_id = ? AND up.course_id = ? AND up.is_completed = ?)",
			userID, courseID, true)
	return repo.count(q, "counting completed videos")
}

func (repo progressRepository) CountQuizzes(ctx context.Context, courseID string) (int, error) {
	q := conn(ctx, repo.db).Table("quizzes AS q").Scopes(courseScope("q", courseID))
	return repo.count(q, "counting course quizzes")
}

func (repo progressRepository) CountAnsweredQuizzes(ctx context.Context, userID, courseID string) (int, error) {
	q := conn(ctx, repo.db).
		Table("quizzes AS q").
		Scopes(courseScope("q", courseID)).
		Where("EXISTS (SELECT 1 FROM user_quiz_answers uqa WHERE uqa.quiz_id = q.id AND uqa.user_id = ?)", userID)
	return repo.count(q, "counting answered quizzes")
}
