package gormdb_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/progress"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/quiz"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database/gormdb"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/tests"
)

type repos struct {
	users   user.Repository
	courses course.Repository
	cohorts interface {
		cohort.Repository
		cohort.LeaderboardRepository
		course.CohortLister
	}
	quizzes  quiz.Repository
	progress progress.Repository
}

func newRepos(db *gorm.DB) repos {
	return repos{
		users:    gormdb.NewUserRepository(db),
		courses:  gormdb.NewCourseRepository(db),
		cohorts:  gormdb.NewCohortRepository(db),
		quizzes:  gormdb.NewQuizRepository(db),
		progress: gormdb.NewProgressRepository(db),
	}
}

func setup(t *testing.T) repos {
	return newRepos(testutil.PrepareDB(t))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	r := setup(t)

	ann := testutil.CreateUser(t, r.users, "Ann", "ann@example.com", "", user.RoleAdmin, true)
	bob := testutil.CreateUser(t, r.users, "Bob", "bob@example.com", "", user.RoleUser, false)
	cyd := testutil.CreateUser(t, r.users, "Cyd Smith", "cyd@example.com", "", user.RoleUser, true)

	t.Run("get", func(t *testing.T) {
		got, err := r.users.GetUserByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, ann, got)

		got, err = r.users.GetUserByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
		assert.False(t, got.Active())

		_, err = r.users.GetUserByID(ctx, "nope")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("email uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrEmailExists, r.users.CheckEmailUniqueness(ctx, "ann@example.com"))
		assert.NoError(t, r.users.CheckEmailUniqueness(ctx, "ann@example.com", ann.ID))
		assert.NoError(t, r.users.CheckEmailUniqueness(ctx, "new@example.com"))

		dup := user.User{Name: "Ann 2", Email: "ann@example.com", Role: user.RoleUser, CreatedAt: testutil.Now(), UpdatedAt: testutil.Now()}
		_, err := r.users.CreateUser(ctx, dup)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "email", vErr.Fields[0].Field)
	})

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name   string
			filter *user.QueryFilter
			want   []string
		}{
			{"all", nil, []string{cyd.ID, bob.ID, ann.ID}},
			{"search", &user.QueryFilter{Search: "smith"}, []string{cyd.ID}},
			{"role", &user.QueryFilter{Roles: []string{user.RoleAdmin}}, []string{ann.ID}},
			{"inactive", &user.QueryFilter{IsActive: "false"}, []string{bob.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.filter != nil {
					tt.filter.Clean()
				}
				users, err := r.users.QueryUsers(ctx, tt.filter, []core.DBOrdering{{Field: "email", Ascending: false}})
				require.NoError(t, err)
				ids := make([]string, 0, len(users))
				for _, u := range users {
					ids = append(ids, u.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})

	t.Run("update courses", func(t *testing.T) {
		stale, err := r.users.GetUserByID(ctx, cyd.ID)
		require.NoError(t, err)

		got, err := r.users.UpdateCourses(ctx, cyd.ID, func(usr *user.User) bool {
			usr.OngoingCourses = []string{"c1", "c2"}
			usr.CompletedCourses = []string{"c0"}
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, got.OngoingCourses)

		// a write from a copy read before the course change keeps the course lists
		stale.Name = "Cyd Smith-Jones"
		_, err = r.users.UpdateUser(ctx, stale)
		require.NoError(t, err)

		got, err = r.users.GetUserByID(ctx, cyd.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cyd Smith-Jones", got.Name)
		assert.Equal(t, []string{"c1", "c2"}, got.OngoingCourses)
		assert.True(t, got.HasCompletedCourse("c0"))

		// no write when update declines
		got, err = r.users.UpdateCourses(ctx, cyd.ID, func(usr *user.User) bool {
			usr.OngoingCourses = nil
			return false
		})
		require.NoError(t, err)
		got, err = r.users.GetUserByID(ctx, cyd.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, got.OngoingCourses)

		_, err = r.users.UpdateCourses(ctx, "nope", func(*user.User) bool { return true })
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("concurrent course completions", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 4)
		for _, id := range []string{"k1", "k2", "k3", "k4"} {
			wg.Add(1)
			go func(courseID string) {
				defer wg.Done()
				_, err := r.users.UpdateCourses(ctx, ann.ID, func(usr *user.User) bool {
					usr.CompletedCourses = append(usr.CompletedCourses, courseID)
					return true
				})
				errs <- err
			}(id)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := r.users.GetUserByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1", "k2", "k3", "k4"}, got.CompletedCourses)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, r.users.DeleteUsersByID(ctx, bob.ID))
		_, err := r.users.GetUserByID(ctx, bob.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	r := setup(t)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	crs := testutil.CreateCourse(t, r.courses, "Go")
	w2 := testutil.CreateWeek(t, r.courses, crs.ID, "Week 2", false, base.Add(48*time.Hour))
	w1 := testutil.CreateWeek(t, r.courses, crs.ID, "Week 1", false, base)
	mod := testutil.CreateModule(t, r.courses, w1.ID, "Basics")
	vid := testutil.CreateVideo(t, r.courses, mod.ID, "Hello")

	t.Run("oldest unpublished week", func(t *testing.T) {
		w, err := r.courses.OldestUnpublishedWeek(ctx, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, w1.ID, w.ID)

		w1.IsPublished = true
		_, err = r.courses.UpdateWeek(ctx, w1)
		require.NoError(t, err)
		w, err = r.courses.OldestUnpublishedWeek(ctx, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, w2.ID, w.ID)

		published, err := r.courses.QueryWeeks(ctx, crs.ID, true)
		require.NoError(t, err)
		assert.Len(t, published, 1)

		_, err = r.courses.OldestUnpublishedWeek(ctx, "other")
		assert.Equal(t, course.ErrWeekNotFound, err)
	})

	t.Run("video course", func(t *testing.T) {
		id, err := r.courses.VideoCourseID(ctx, vid.ID)
		require.NoError(t, err)
		assert.Equal(t, crs.ID, id)

		_, err = r.courses.VideoCourseID(ctx, "nope")
		assert.Equal(t, course.ErrVideoNotFound, err)
	})

	t.Run("quiz with answers", func(t *testing.T) {
		q := testutil.CreateQuiz(t, r.courses, mod.ID, "2 + 2?", 1, "3", "4", "5")

		got, err := r.courses.GetQuiz(ctx, q.ID)
		require.NoError(t, err)
		require.Len(t, got.Answers, 3)
		assert.Equal(t, []string{"3", "4", "5"}, []string{got.Answers[0].Text, got.Answers[1].Text, got.Answers[2].Text})
		assert.True(t, got.Answers[1].IsCorrect)

		q.Question = "2 + 3?"
		q.Answers = []course.Answer{{Text: "5", IsCorrect: true}, {Text: "6"}}
		err = r.courses.WithinTx(ctx, func(ctx context.Context) error {
			_, err := r.courses.UpdateQuiz(ctx, q)
			return err
		})
		require.NoError(t, err)

		quizzes, err := r.courses.QueryQuizzes(ctx, mod.ID)
		require.NoError(t, err)
		require.Len(t, quizzes, 1)
		assert.Equal(t, "2 + 3?", quizzes[0].Question)
		assert.Len(t, quizzes[0].Answers, 2)

		answered, err := r.courses.QuizHasSubmissions(ctx, q.ID)
		require.NoError(t, err)
		assert.False(t, answered)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := r.courses.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := r.courses.CreateCourse(ctx, course.Course{Title: "Ghost", CreatedAt: base, UpdatedAt: base}); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)

		courses, err := r.courses.QueryCourses(ctx, &course.QueryFilter{Search: "ghost"}, nil)
		require.NoError(t, err)
		assert.Empty(t, courses)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, r.courses.DeleteWeek(ctx, w1.ID))
		_, err := r.courses.GetVideo(ctx, vid.ID)
		assert.Equal(t, course.ErrVideoNotFound, err)
		assert.Equal(t, course.ErrWeekNotFound, r.courses.DeleteWeek(ctx, w1.ID))
	})
}

// courseFixture is a course with one module holding two videos & two quizzes.
type courseFixture struct {
	course  course.Course
	videos  []course.Video
	quizzes []course.Quiz
}

func newCourseFixture(t *testing.T, r repos, title string) courseFixture {
	crs := testutil.CreateCourse(t, r.courses, title)
	w := testutil.CreateWeek(t, r.courses, crs.ID, "Week 1", true)
	m := testutil.CreateModule(t, r.courses, w.ID, "Module 1")
	return courseFixture{
		course: crs,
		videos: []course.Video{
			testutil.CreateVideo(t, r.courses, m.ID, "Video 1"),
			testutil.CreateVideo(t, r.courses, m.ID, "Video 2"),
		},
		quizzes: []course.Quiz{
			testutil.CreateQuiz(t, r.courses, m.ID, "Quiz 1", 0, "yes", "no"),
			testutil.CreateQuiz(t, r.courses, m.ID, "Quiz 2", 1, "yes", "no"),
		},
	}
}

func TestCohortRepository(t *testing.T) {
	testCohortRepository(t, setup(t))
}

func testCohortRepository(t *testing.T, r repos) {
	ctx := context.Background()

	goCourse := newCourseFixture(t, r, "Go")
	pyCourse := newCourseFixture(t, r, "Python")
	ann := testutil.CreateUser(t, r.users, "Ann", "ann@example.com", "", user.RoleUser, true)
	bob := testutil.CreateUser(t, r.users, "Bob", "bob@example.com", "", user.RoleUser, true)

	c1 := testutil.CreateCohort(t, r.cohorts, "Go #1", goCourse.course.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c2 := testutil.CreateCohort(t, r.cohorts, "Python #1", pyCourse.course.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	t.Run("enrollment", func(t *testing.T) {
		testutil.Enroll(t, r.cohorts, c1.ID, ann.ID)
		assert.Equal(t, cohort.ErrAlreadyEnrolled, r.cohorts.AddUser(ctx, c1.ID, ann.ID))
		assert.Equal(t, cohort.ErrNotEnrolled, r.cohorts.RemoveUser(ctx, c1.ID, bob.ID))

		testutil.Enroll(t, r.cohorts, c1.ID, bob.ID)
		users, err := r.cohorts.CohortUsers(ctx, c1.ID)
		require.NoError(t, err)
		require.Len(t, users, 2)

		users, err = r.cohorts.CohortUsers(ctx, c2.ID)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("cohort courses", func(t *testing.T) {
		got, err := r.cohorts.CohortCourses(ctx)
		require.NoError(t, err)
		assert.Equal(t, []course.CohortCourse{
			{CohortID: c1.ID, CourseID: goCourse.course.ID},
			{CohortID: c2.ID, CourseID: pyCourse.course.ID},
		}, got)
	})

	t.Run("aggregates are scoped to the course", func(t *testing.T) {
		_, err := r.quizzes.AddPoints(ctx, ann.ID, goCourse.quizzes[0].ID, 10)
		require.NoError(t, err)
		_, err = r.quizzes.AddPoints(ctx, ann.ID, goCourse.quizzes[1].ID, 1)
		require.NoError(t, err)
		_, err = r.quizzes.AddPoints(ctx, ann.ID, pyCourse.quizzes[0].ID, 100)
		require.NoError(t, err)
		_, err = r.quizzes.AddPoints(ctx, bob.ID, goCourse.quizzes[0].ID, 1)
		require.NoError(t, err)

		for _, v := range goCourse.videos {
			_, err = r.progress.CompleteVideo(ctx, progress.Record{UserID: bob.ID, VideoID: v.ID, CourseID: goCourse.course.ID})
			require.NoError(t, err)
		}
		_, err = r.progress.CompleteVideo(ctx, progress.Record{UserID: ann.ID, VideoID: pyCourse.videos[0].ID, CourseID: pyCourse.course.ID})
		require.NoError(t, err)

		ids := []string{ann.ID, bob.ID}
		points, err := r.cohorts.QuizPointsByUser(ctx, goCourse.course.ID, ids)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{ann.ID: 11, bob.ID: 1}, points)

		videos, err := r.cohorts.CompletedVideosByUser(ctx, goCourse.course.ID, ids)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{bob.ID: 2}, videos)
	})
}

func TestQuizRepository(t *testing.T) {
	ctx := context.Background()
	r := setup(t)

	fx := newCourseFixture(t, r, "Go")
	q := fx.quizzes[0]
	ann := testutil.CreateUser(t, r.users, "Ann", "ann@example.com", "", user.RoleUser, true)

	t.Run("one submission per quiz", func(t *testing.T) {
		_, err := r.quizzes.CreateSubmission(ctx, quiz.Submission{UserID: ann.ID, QuizID: q.ID, QuizAnswerID: q.Answers[0].ID, CreatedAt: testutil.Now()})
		require.NoError(t, err)

		answered, err := r.quizzes.HasAnswered(ctx, ann.ID, q.ID)
		require.NoError(t, err)
		assert.True(t, answered)

		// same answer
		_, err = r.quizzes.CreateSubmission(ctx, quiz.Submission{UserID: ann.ID, QuizID: q.ID, QuizAnswerID: q.Answers[0].ID, CreatedAt: testutil.Now()})
		assert.Equal(t, quiz.ErrAlreadyAnswered, err)
		// other answer of the same quiz
		_, err = r.quizzes.CreateSubmission(ctx, quiz.Submission{UserID: ann.ID, QuizID: q.ID, QuizAnswerID: q.Answers[1].ID, CreatedAt: testutil.Now()})
		assert.Equal(t, quiz.ErrAlreadyAnswered, err)

		answered, err = r.courses.QuizHasSubmissions(ctx, q.ID)
		require.NoError(t, err)
		assert.True(t, answered)
	})

	t.Run("points", func(t *testing.T) {
		pts, err := r.quizzes.Points(ctx, ann.ID, q.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, pts)

		pts, err = r.quizzes.AddPoints(ctx, ann.ID, q.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, pts)

		pts, err = r.quizzes.AddPoints(ctx, ann.ID, q.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 11, pts)
	})
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	r := setup(t)

	fx := newCourseFixture(t, r, "Go")
	other := newCourseFixture(t, r, "Python")
	ann := testutil.CreateUser(t, r.users, "Ann", "ann@example.com", "", user.RoleUser, true)

	rec, err := r.progress.CompleteVideo(ctx, progress.Record{UserID: ann.ID, VideoID: fx.videos[0].ID, CourseID: fx.course.ID, CreatedAt: testutil.Now(), UpdatedAt: testutil.Now()})
	require.NoError(t, err)
	assert.True(t, rec.IsCompleted)

	again, err := r.progress.CompleteVideo(ctx, progress.Record{UserID: ann.ID, VideoID: fx.videos[0].ID, CourseID: fx.course.ID, CreatedAt: testutil.Now(), UpdatedAt: testutil.Now()})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)

	_, err = r.quizzes.CreateSubmission(ctx, quiz.Submission{UserID: ann.ID, QuizID: fx.quizzes[1].ID, QuizAnswerID: fx.quizzes[1].Answers[0].ID, CreatedAt: testutil.Now()})
	require.NoError(t, err)
	_, err = r.quizzes.CreateSubmission(ctx, quiz.Submission{UserID: ann.ID, QuizID: other.quizzes[0].ID, QuizAnswerID: other.quizzes[0].Answers[0].ID, CreatedAt: testutil.Now()})
	require.NoError(t, err)

	counts := []struct {
		name string
		fn   func() (int, error)
		want int
	}{
		{"videos", func() (int, error) { return r.progress.CountVideos(ctx, fx.course.ID) }, 2},
		{"completed videos", func() (int, error) { return r.progress.CountCompletedVideos(ctx, ann.ID, fx.course.ID) }, 1},
		{"quizzes", func() (int, error) { return r.progress.CountQuizzes(ctx, fx.course.ID) }, 2},
		{"answered quizzes", func() (int, error) { return r.progress.CountAnsweredQuizzes(ctx, ann.ID, fx.course.ID) }, 1},
		{"other course videos", func() (int, error) { return r.progress.CountCompletedVideos(ctx, ann.ID, other.course.ID) }, 0},
	}
	for _, tt := range counts {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuizSubmission_ConcurrentDuplicates(t *testing.T) {
	testConcurrentSubmissions(t, setup(t))
}

func testConcurrentSubmissions(t *testing.T, r repos) {
	ctx := context.Background()

	fx := newCourseFixture(t, r, "Go")
	q := fx.quizzes[0]
	ann := testutil.CreateUser(t, r.users, "Ann", "ann.quiz@example.com", "", user.RoleUser, true)

	conf := core.NewTestConfig()
	svc := quiz.NewService(r.quizzes, r.courses, user.NewService(r.users, nil, conf), conf)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, ann.ID, q.ID, quiz.SubmitInput{AnswerID: q.Answers[0].ID})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, quiz.ErrAlreadyAnswered, err)
	}
	assert.Equal(t, 1, ok)

	pts, err := r.quizzes.Points(ctx, ann.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, conf.Quiz.SelfServePoints, pts)
}
