package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

var errCourseIDRequired = core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "this field is required"})

type (
	Repository interface {
		// CompleteVideo marks the (user, video, course) record completed, creating it when missing.
		CompleteVideo(ctx context.Context, rec Record) (Record, error)

		CountVideos(ctx context.Context, courseID string) (int, error)
		CountCompletedVideos(ctx context.Context, userID, courseID string) (int, error)
		// CountQuizzes counts the quizzes reachable through the modules of the course's weeks.
		CountQuizzes(ctx context.Context, courseID string) (int, error)
		// CountAnsweredQuizzes counts the course quizzes the user submitted an answer for, each quiz once.
		CountAnsweredQuizzes(ctx context.Context, userID, courseID string) (int, error)
	}

	// CourseReader is the part of the course service progress depends on.
	CourseReader interface {
		GetCourse(ctx context.Context, id string) (course.Course, error)
		VideoCourseID(ctx context.Context, videoID string) (string, error)
	}

	Service interface {
		CompleteVideo(ctx context.Context, userID, videoID string) (Record, error)
		CourseProgress(ctx context.Context, userID, courseID string) (Progress, error)
	}

	service struct {
		repo    Repository
		courses CourseReader
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courses CourseReader) Service {
	return &service{repo: repo, courses: courses}
}

func (svc *service) CompleteVideo(ctx context.Context, userID, videoID string) (Record, error) {
	courseID, err := svc.courses.VideoCourseID(ctx, videoID)
	if err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CompleteVideo(ctx, Record{
		UserID:      userID,
		VideoID:     videoID,
		CourseID:    courseID,
		IsCompleted: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// CourseProgress reports how much of the course's videos & quizzes the user completed.
func (svc *service) CourseProgress(ctx context.Context, userID, courseID string) (Progress, error) {
	courseID = core.CleanString(courseID)
	if courseID == "" {
		return Progress{}, errCourseIDRequired
	}
	if _, err := svc.courses.GetCourse(ctx, courseID); err != nil {
		return Progress{}, err
	}

	var totalVideos, doneVideos, totalQuizzes, doneQuizzes int
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, msg string, fn func(ctx context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return errors.Wrap(err, msg)
			}
			*dst = n
			return nil
		})
	}
	count(&totalVideos, "counting videos", func(ctx context.Context) (int, error) {
		return svc.repo.CountVideos(ctx, courseID)
	})
	count(&doneVideos, "counting completed videos", func(ctx context.Context) (int, error) {
		return svc.repo.CountCompletedVideos(ctx, userID, courseID)
	})
	count(&totalQuizzes, "counting quizzes", func(ctx context.Context) (int, error) {
		return svc.repo.CountQuizzes(ctx, courseID)
	})
	count(&doneQuizzes, "counting answered quizzes", func(ctx context.Context) (int, error) {
		return svc.repo.CountAnsweredQuizzes(ctx, userID, courseID)
	})
	if err := g.Wait(); err != nil {
		return Progress{}, err
	}

	return NewProgress(
		courseID,
		NewCompletion(doneVideos, totalVideos),
		NewCompletion(doneQuizzes, totalQuizzes),
	), nil
}
