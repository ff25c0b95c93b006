package gormdb

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type userRow struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	Email            string
	Image            null.String
	Role             string
	IsActive         bool
	PasswordHash     null.Bytes
	CompletedCourses []string  `gorm:"serializer:json"`
	OngoingCourses   []string  `gorm:"serializer:json"`
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
	LastLogin        null.Time
}

func (userRow) TableName() string { return "users" }

type courseRow struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	Image       null.String
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (courseRow) TableName() string { return "courses" }

type weekRow struct {
	ID          string `gorm:"primaryKey"`
	CourseID    string
	Title       string
	IsPublished bool
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (weekRow) TableName() string { return "course_weeks" }

type moduleRow struct {
	ID           string `gorm:"primaryKey"`
	CourseWeekID string
	Title        string
	Description  string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (moduleRow) TableName() string { return "modules" }

type videoRow struct {
	ID              string `gorm:"primaryKey"`
	ModuleID        string
	Title           string
	URL             string `gorm:"column:url"`
	DurationSeconds int
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (videoRow) TableName() string { return "videos" }

type quizRow struct {
	ID        string `gorm:"primaryKey"`
	ModuleID  string
	Question  string
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (quizRow) TableName() string { return "quizzes" }

type quizAnswerRow struct {
	ID        string `gorm:"primaryKey"`
	QuizID    string
	Text      string
	IsCorrect bool
	Position  int
}

func (quizAnswerRow) TableName() string { return "quiz_answers" }

type cohortRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	CourseID  string
	StartDate null.Time
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (cohortRow) TableName() string { return "cohorts" }

type cohortUserRow struct {
	CohortID  string    `gorm:"primaryKey"`
	UserID    string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (cohortUserRow) TableName() string { return "cohort_users" }

type userQuizAnswerRow struct {
	ID           string `gorm:"primaryKey"`
	UserID       string
	QuizID       string
	QuizAnswerID string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (userQuizAnswerRow) TableName() string { return "user_quiz_answers" }

type leaderboardEntryRow struct {
	ID        string `gorm:"primaryKey"`
	UserID    string
	QuizID    string
	Points    int
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (leaderboardEntryRow) TableName() string { return "leaderboard_entries" }

type userProgressRow struct {
	ID          string `gorm:"primaryKey"`
	UserID      string
	VideoID     string
	CourseID    string
	IsCompleted bool
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (userProgressRow) TableName() string { return "user_progress" }

// userCount is the row of per-user aggregate queries.
type userCount struct {
	UserID string
	Total  int
}

func countsByUser(rows []userCount) map[string]int {
	m := make(map[string]int, len(rows))
	for _, r := range rows {
		m[r.UserID] = r.Total
	}
	return m
}
