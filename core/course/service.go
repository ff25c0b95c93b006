package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

var (
	// errors
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrWeekNotFound   = core.NewNotFoundError("course week not found")
	ErrModuleNotFound = core.NewNotFoundError("module not found")
	ErrVideoNotFound  = core.NewNotFoundError("video not found")
	ErrQuizNotFound   = core.NewNotFoundError("quiz not found")
	ErrQuizAnswered   = core.NewConflictError("quiz already has submissions, its answers cannot be changed")
)

type (
	Repository interface {
		core.Transactor

		CreateCourse(ctx context.Context, c Course) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateWeek(ctx context.Context, w Week) (Week, error)
		UpdateWeek(ctx context.Context, w Week) (Week, error)
		GetWeek(ctx context.Context, id string) (Week, error)
		QueryWeeks(ctx context.Context, courseID string, publishedOnly bool) ([]Week, error)
		// OldestUnpublishedWeek returns the unpublished week of the course with the earliest creation time,
		// or ErrWeekNotFound when every week is published.
		OldestUnpublishedWeek(ctx context.Context, courseID string) (Week, error)
		DeleteWeek(ctx context.Context, id string) error

		CreateModule(ctx context.Context, m Module) (Module, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		QueryModules(ctx context.Context, weekID string) ([]Module, error)
		DeleteModule(ctx context.Context, id string) error

		CreateVideo(ctx context.Context, v Video) (Video, error)
		UpdateVideo(ctx context.Context, v Video) (Video, error)
		GetVideo(ctx context.Context, id string) (Video, error)
		QueryVideos(ctx context.Context, moduleID string) ([]Video, error)
		// VideoCourseID resolves the course owning a video through its module & week.
		VideoCourseID(ctx context.Context, videoID string) (string, error)
		DeleteVideo(ctx context.Context, id string) error

		// CreateQuiz & UpdateQuiz persist the quiz with its answers.
		CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		QueryQuizzes(ctx context.Context, moduleID string) ([]Quiz, error)
		QuizHasSubmissions(ctx context.Context, quizID string) (bool, error)
		DeleteQuiz(ctx context.Context, id string) error
	}

	Service interface {
		CreateCourse(ctx context.Context, in CourseInput) (Course, error)
		UpdateCourse(ctx context.Context, id string, in CourseInput) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateWeek(ctx context.Context, courseID string, in WeekInput) (Week, error)
		UpdateWeek(ctx context.Context, id string, in WeekInput) (Week, error)
		SetWeekPublished(ctx context.Context, id string, published bool) (Week, error)
		GetWeek(ctx context.Context, id string) (Week, error)
		QueryWeeks(ctx context.Context, courseID string, publishedOnly bool) ([]Week, error)
		OldestUnpublishedWeek(ctx context.Context, courseID string) (Week, error)
		DeleteWeek(ctx context.Context, id string) error

		CreateModule(ctx context.Context, weekID string, in ModuleInput) (Module, error)
		UpdateModule(ctx context.Context, id string, in ModuleInput) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		QueryModules(ctx context.Context, weekID string) ([]Module, error)
		DeleteModule(ctx context.Context, id string) error

		CreateVideo(ctx context.Context, moduleID string, in VideoInput) (Video, error)
		UpdateVideo(ctx context.Context, id string, in VideoInput) (Video, error)
		GetVideo(ctx context.Context, id string) (Video, error)
		QueryVideos(ctx context.Context, moduleID string) ([]Video, error)
		VideoCourseID(ctx context.Context, videoID string) (string, error)
		DeleteVideo(ctx context.Context, id string) error

		CreateQuiz(ctx context.Context, moduleID string, in QuizInput) (Quiz, error)
		UpdateQuiz(ctx context.Context, id string, in QuizInput) (Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		QueryQuizzes(ctx context.Context, moduleID string) ([]Quiz, error)
		DeleteQuiz(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func now() time.Time { return time.Now().UTC() }

// Courses

func (svc *service) CreateCourse(ctx context.Context, in CourseInput) (Course, error) {
	t := now()
	return svc.repo.CreateCourse(ctx, Course{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   t,
		UpdatedAt:   t,
	})
}

func (svc *service) UpdateCourse(ctx context.Context, id string, in CourseInput) (Course, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	c.Title = in.Title
	c.Description = in.Description
	c.Image = in.Image
	c.UpdatedAt = now()
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	ordering = core.AllowedOrderings(ordering, "title", "created_at", "updated_at")
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *service) DeleteCourse(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Weeks

func (svc *service) CreateWeek(ctx context.Context, courseID string, in WeekInput) (Week, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Week{}, err
	}
	t := now()
	return svc.repo.CreateWeek(ctx, Week{
		CourseID:    courseID,
		Title:       in.Title,
		IsPublished: in.IsPublished,
		CreatedAt:   t,
		UpdatedAt:   t,
	})
}

func (svc *service) UpdateWeek(ctx context.Context, id string, in WeekInput) (Week, error) {
	w, err := svc.repo.GetWeek(ctx, id)
	if err != nil {
		return Week{}, err
	}
	w.Title = in.Title
	w.IsPublished = in.IsPublished
	w.UpdatedAt = now()
	return svc.repo.UpdateWeek(ctx, w)
}

func (svc *service) SetWeekPublished(ctx context.Context, id string, published bool) (Week, error) {
	w, err := svc.repo.GetWeek(ctx, id)
	if err != nil {
		return Week{}, err
	}
	if w.IsPublished == published {
		return w, nil
	}
	w.IsPublished = published
	w.UpdatedAt = now()
	return svc.repo.UpdateWeek(ctx, w)
}

func (svc *service) GetWeek(ctx context.Context, id string) (Week, error) {
	return svc.repo.GetWeek(ctx, id)
}

func (svc *service) QueryWeeks(ctx context.Context, courseID string, publishedOnly bool) ([]Week, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryWeeks(ctx, courseID, publishedOnly)
}

func (svc *service) OldestUnpublishedWeek(ctx context.Context, courseID string) (Week, error) {
	return svc.repo.OldestUnpublishedWeek(ctx, courseID)
}

func (svc *service) DeleteWeek(ctx context.Context, id string) error {
	return svc.repo.DeleteWeek(ctx, id)
}

// Modules

func (svc *service) CreateModule(ctx context.Context, weekID string, in ModuleInput) (Module, error) {
	if _, err := svc.repo.GetWeek(ctx, weekID); err != nil {
		return Module{}, err
	}
	t := now()
	return svc.repo.CreateModule(ctx, Module{
		CourseWeekID: weekID,
		Title:        in.Title,
		Description:  in.Description,
		CreatedAt:    t,
		UpdatedAt:    t,
	})
}

func (svc *service) UpdateModule(ctx context.Context, id string, in ModuleInput) (Module, error) {
	m, err := svc.repo.GetModule(ctx, id)
	if err != nil {
		return Module{}, err
	}
	m.Title = in.Title
	m.Description = in.Description
	m.UpdatedAt = now()
	return svc.repo.UpdateModule(ctx, m)
}

func (svc *service) GetModule(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModule(ctx, id)
}

func (svc *service) QueryModules(ctx context.Context, weekID string) ([]Module, error) {
	if _, err := svc.repo.GetWeek(ctx, weekID); err != nil {
		return nil, err
	}
	return svc.repo.QueryModules(ctx, weekID)
}

func (svc *service) DeleteModule(ctx context.Context, id string) error {
	return svc.repo.DeleteModule(ctx, id)
}

// Videos

func (svc *service) CreateVideo(ctx context.Context, moduleID string, in VideoInput) (Video, error) {
	if _, err := svc.repo.GetModule(ctx, moduleID); err != nil {
		return Video{}, err
	}
	t := now()
	return svc.repo.CreateVideo(ctx, Video{
		ModuleID:        moduleID,
		Title:           in.Title,
		URL:             in.URL,
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       t,
		UpdatedAt:       t,
	})
}

func (svc *service) UpdateVideo(ctx context.Context, id string, in VideoInput) (Video, error) {
	v, err := svc.repo.GetVideo(ctx, id)
	if err != nil {
		return Video{}, err
	}
	v.Title = in.Title
	v.URL = in.URL
	v.DurationSeconds = in.DurationSeconds
	v.UpdatedAt = now()
	return svc.repo.UpdateVideo(ctx, v)
}

func (svc *service) GetVideo(ctx context.Context, id string) (Video, error) {
	return svc.repo.GetVideo(ctx, id)
}

func (svc *service) QueryVideos(ctx context.Context, moduleID string) ([]Video, error) {
	if _, err := svc.repo.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return svc.repo.QueryVideos(ctx, moduleID)
}

func (svc *service) VideoCourseID(ctx context.Context, videoID string) (string, error) {
	return svc.repo.VideoCourseID(ctx, videoID)
}

func (svc *service) DeleteVideo(ctx context.Context, id string) error {
	return svc.repo.DeleteVideo(ctx, id)
}

// Quizzes

func answersFromInput(in []AnswerInput) []Answer {
	answers := make([]Answer, 0, len(in))
	for _, a := range in {
		answers = append(answers, Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return answers
}

func (svc *service) CreateQuiz(ctx context.Context, moduleID string, in QuizInput) (Quiz, error) {
	if _, err := svc.repo.GetModule(ctx, moduleID); err != nil {
		return Quiz{}, err
	}
	t := now()
	var q Quiz
	err := svc.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		q, err = svc.repo.CreateQuiz(ctx, Quiz{
			ModuleID:  moduleID,
			Question:  in.Question,
			Answers:   answersFromInput(in.Answers),
			CreatedAt: t,
			UpdatedAt: t,
		})
		return err
	})
	return q, errors.Wrap(err, "creating quiz")
}

// UpdateQuiz replaces the question & the answers of a quiz that nobody answered yet.
func (svc *service) UpdateQuiz(ctx context.Context, id string, in QuizInput) (Quiz, error) {
	var q Quiz
	err := svc.repo.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := svc.repo.GetQuiz(ctx, id)
		if err != nil {
			return err
		}
		answered, err := svc.repo.QuizHasSubmissions(ctx, id)
		if err != nil {
			return err
		}
		if answered {
			return ErrQuizAnswered
		}
		orig.Question = in.Question
		orig.Answers = answersFromInput(in.Answers)
		orig.UpdatedAt = now()
		q, err = svc.repo.UpdateQuiz(ctx, orig)
		return err
	})
	return q, errors.Wrap(err, "updating quiz")
}

func (svc *service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuiz(ctx, id)
}

func (svc *service) QueryQuizzes(ctx context.Context, moduleID string) ([]Quiz, error) {
	if _, err := svc.repo.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return svc.repo.QueryQuizzes(ctx, moduleID)
}

func (svc *service) DeleteQuiz(ctx context.Context, id string) error {
	return svc.repo.DeleteQuiz(ctx, id)
}
