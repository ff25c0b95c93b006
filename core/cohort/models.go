package cohort

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

// Cohort is a group of learners taking a course together.
type Cohort struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CourseID  string     `json:"course_id"`
	StartDate *time.Time `json:"start_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Input struct {
	Name      string     `json:"name" validate:"required,max=200"`
	CourseID  string     `json:"course_id" validate:"required"`
	StartDate *time.Time `json:"start_date"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.CourseID = core.CleanString(in.CourseID)
	if in.StartDate != nil {
		sd := in.StartDate.UTC()
		in.StartDate = &sd
	}
	return validate.Struct(in)
}

type EnrollInput struct {
	UserID string `json:"user_id" validate:"required"`
}

func (in *EnrollInput) Validate(validate *validator.Validate) error {
	in.UserID = core.CleanString(in.UserID)
	return validate.Struct(in)
}

type QueryFilter struct {
	CourseID string `query:"course_id"`
	Search   string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
	qf.Search = core.CleanString(qf.Search)
}

type (
	Leaderboard struct {
		Cohort  Summary            `json:"cohort"`
		Entries []LeaderboardEntry `json:"leaderboard"`
	}

	Summary struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		CourseID   string     `json:"course_id"`
		StartDate  *time.Time `json:"start_date"`
		TotalUsers int        `json:"total_users"`
	}

	LeaderboardEntry struct {
		Rank               int          `json:"rank"`
		UserID             string       `json:"user_id"`
		User               user.Summary `json:"user"`
		QuizPoints         int          `json:"quiz_points"`
		CompletedVideos    int          `json:"completed_videos"`
		HasCompletedCourse bool         `json:"has_completed_course"`
	}
)

func (c Cohort) Summary(totalUsers int) Summary {
	return Summary{
		ID:         c.ID,
		Name:       c.Name,
		CourseID:   c.CourseID,
		StartDate:  c.StartDate,
		TotalUsers: totalUsers,
	}
}
