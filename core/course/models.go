package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Week is a course-week: the unit of release of a course's content.
type Week struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Module struct {
	ID           string    `json:"id"`
	CourseWeekID string    `json:"course_week_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Video struct {
	ID              string    `json:"id"`
	ModuleID        string    `json:"module_id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Quiz struct {
	ID        string    `json:"id"`
	ModuleID  string    `json:"module_id"`
	Question  string    `json:"question"`
	Answers   []Answer  `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Answer struct {
	ID        string `json:"id"`
	QuizID    string `json:"quiz_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Answer returns the quiz answer with the given id.
func (q Quiz) Answer(id string) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

type (
	// PublicQuiz is a Quiz as shown to learners: correct answers are not disclosed.
	PublicQuiz struct {
		ID        string         `json:"id"`
		ModuleID  string         `json:"module_id"`
		Question  string         `json:"question"`
		Answers   []PublicAnswer `json:"answers"`
		CreatedAt time.Time      `json:"created_at"`
		UpdatedAt time.Time      `json:"updated_at"`
	}

	PublicAnswer struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
)

func (q Quiz) Public() PublicQuiz {
	answers := make([]PublicAnswer, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, PublicAnswer{ID: a.ID, Text: a.Text})
	}
	return PublicQuiz{
		ID:        q.ID,
		ModuleID:  q.ModuleID,
		Question:  q.Question,
		Answers:   answers,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// Inputs

type CourseInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,url"`
}

func (in *CourseInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	in.Image = core.CleanString(in.Image)
	return validate.Struct(in)
}

type WeekInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	IsPublished bool   `json:"is_published"`
}

func (in *WeekInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	return validate.Struct(in)
}

type PublishInput struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

func (in *PublishInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

type ModuleInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
}

func (in *ModuleInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	return validate.Struct(in)
}

type VideoInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	URL             string `json:"url" validate:"required,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

func (in *VideoInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.URL = core.CleanString(in.URL)
	return validate.Struct(in)
}

type (
	QuizInput struct {
		Question string        `json:"question" validate:"required"`
		Answers  []AnswerInput `json:"answers" validate:"required,min=2,dive"`
	}

	AnswerInput struct {
		Text      string `json:"text" validate:"required"`
		IsCorrect bool   `json:"is_correct"`
	}
)

func (in *QuizInput) Validate(validate *validator.Validate) error {
	in.Question = core.CleanString(in.Question)
	for i := range in.Answers {
		in.Answers[i].Text = core.CleanString(in.Answers[i].Text)
	}
	return validate.Struct(in)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
