package progress

import (
	"math"
	"time"
)

// Record is the completion state of one video for one user within a course.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	VideoID     string    `json:"video_id"`
	CourseID    string    `json:"course_id"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Completion struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type Progress struct {
	CourseID          string     `json:"course_id"`
	Videos            Completion `json:"videos"`
	Quizzes           Completion `json:"quizzes"`
	OverallPercentage int        `json:"overall_percentage"`
}

// QueryFilter carries the query string of progress requests.
type QueryFilter struct {
	CourseID string `query:"course_id"`
}

func NewCompletion(completed, total int) Completion {
	return Completion{Completed: completed, Total: total, Percentage: Percentage(completed, total)}
}

// Percentage returns completed/total as a whole percentage rounded half away from zero, 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// NewProgress combines the video & quiz completions of a course.
func NewProgress(courseID string, videos, quizzes Completion) Progress {
	return Progress{
		CourseID:          courseID,
		Videos:            videos,
		Quizzes:           quizzes,
		OverallPercentage: Percentage(videos.Completed+quizzes.Completed, videos.Total+quizzes.Total),
	}
}
