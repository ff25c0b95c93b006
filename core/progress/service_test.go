package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 7, 0},
		{4, 10, 40},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.completed, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d; want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestNewProgress(t *testing.T) {
	p := NewProgress("c1", NewCompletion(4, 10), NewCompletion(0, 0))
	assert.Equal(t, Progress{
		CourseID:          "c1",
		Videos:            Completion{Completed: 4, Total: 10, Percentage: 40},
		Quizzes:           Completion{Completed: 0, Total: 0, Percentage: 0},
		OverallPercentage: 40,
	}, p)

	p = NewProgress("c1", NewCompletion(1, 2), NewCompletion(2, 2))
	assert.Equal(t, 75, p.OverallPercentage)

	p = NewProgress("c1", NewCompletion(0, 0), NewCompletion(0, 0))
	assert.Equal(t, 0, p.OverallPercentage)
}

type fakeRepo struct {
	videos   map[string]int
	quizzes  map[string]int
	records  map[string]Record
	answered map[string]int
	countErr error
}

func (r *fakeRepo) CompleteVideo(_ context.Context, rec Record) (Record, error) {
	k := rec.UserID + "/" + rec.VideoID + "/" + rec.CourseID
	if prev, ok := r.records[k]; ok {
		prev.IsCompleted = true
		prev.UpdatedAt = rec.UpdatedAt
		r.records[k] = prev
		return prev, nil
	}
	rec.ID = k
	r.records[k] = rec
	return rec, nil
}

func (r *fakeRepo) CountVideos(_ context.Context, courseID string) (int, error) {
	return r.videos[courseID], r.countErr
}

func (r *fakeRepo) CountCompletedVideos(_ context.Context, userID, courseID string) (int, error) {
	n := 0
	for _, rec := range r.records {
		if rec.UserID == userID && rec.CourseID == courseID && rec.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountQuizzes(_ context.Context, courseID string) (int, error) {
	return r.quizzes[courseID], nil
}

func (r *fakeRepo) CountAnsweredQuizzes(_ context.Context, userID, courseID string) (int, error) {
	return r.answered[userID+"/"+courseID], nil
}

type fakeCourses struct {
	courses     map[string]course.Course
	videoCourse map[string]string
}

func (f *fakeCourses) GetCourse(_ context.Context, id string) (course.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeCourses) VideoCourseID(_ context.Context, videoID string) (string, error) {
	id, ok := f.videoCourse[videoID]
	if !ok {
		return "", course.ErrVideoNotFound
	}
	return id, nil
}

func newTestService() (*fakeRepo, Service) {
	repo := &fakeRepo{
		videos:   map[string]int{"c1": 5, "c2": 10},
		quizzes:  map[string]int{"c1": 3},
		records:  make(map[string]Record),
		answered: map[string]int{"u1/c1": 2},
	}
	courses := &fakeCourses{
		courses:     map[string]course.Course{"c1": {ID: "c1"}, "c2": {ID: "c2"}},
		videoCourse: map[string]string{"v1": "c1", "v2": "c1", "v3": "c2"},
	}
	return repo, NewService(repo, courses)
}

func TestService_CompleteVideo(t *testing.T) {
	ctx := context.Background()
	repo, svc := newTestService()

	rec, err := svc.CompleteVideo(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Equal(t, "c1", rec.CourseID)
	assert.True(t, rec.IsCompleted)

	// idempotent
	again, err := svc.CompleteVideo(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Len(t, repo.records, 1)

	_, err = svc.CompleteVideo(ctx, "u1", "nope")
	assert.Equal(t, course.ErrVideoNotFound, err)
}

func TestService_CourseProgress(t *testing.T) {
	ctx := context.Background()
	repo, svc := newTestService()
	for _, v := range []string{"v1", "v2", "v3"} {
		_, err := svc.CompleteVideo(ctx, "u1", v)
		require.NoError(t, err)
	}

	t.Run("videos and quizzes", func(t *testing.T) {
		p, err := svc.CourseProgress(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.Equal(t, Progress{
			CourseID:          "c1",
			Videos:            Completion{Completed: 2, Total: 5, Percentage: 40},
			Quizzes:           Completion{Completed: 2, Total: 3, Percentage: 67},
			OverallPercentage: 50,
		}, p)
	})

	t.Run("course without quizzes", func(t *testing.T) {
		p, err := svc.CourseProgress(ctx, "u1", "c2")
		require.NoError(t, err)
		assert.Equal(t, Completion{Completed: 1, Total: 10, Percentage: 10}, p.Videos)
		assert.Equal(t, Completion{}, p.Quizzes)
		assert.Equal(t, 10, p.OverallPercentage)
	})

	t.Run("user without progress", func(t *testing.T) {
		p, err := svc.CourseProgress(ctx, "u2", "c1")
		require.NoError(t, err)
		assert.Equal(t, 0, p.OverallPercentage)
		assert.Equal(t, 5, p.Videos.Total)
	})

	t.Run("missing course id", func(t *testing.T) {
		_, err := svc.CourseProgress(ctx, "u1", "  ")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "course_id", vErr.Fields[0].Field)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.CourseProgress(ctx, "u1", "nope")
		assert.Equal(t, course.ErrCourseNotFound, err)
	})

	t.Run("count failure", func(t *testing.T) {
		repo.countErr = errors.New("connection reset")
		defer func() { repo.countErr = nil }()

		_, err := svc.CourseProgress(ctx, "u1", "c1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "counting videos")
	})
}
