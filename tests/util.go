package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
)

// PrepareDB returns a migrated in-memory sqlite database private to the test.
func PrepareDB(t *testing.T) *gorm.DB {
	t.Helper()

	conf := core.NewTestConfig()
	conf.Database.Engine = database.EngineSQLite
	conf.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.New().String())

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// Now returns the current UTC time at the precision the storage keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func tstamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC().Truncate(time.Microsecond)
	}
	return Now()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	ts := tstamp(createdAt)
	usr := user.User{
		Name:             name,
		Email:            email,
		Role:             role,
		CompletedCourses: []string{},
		OngoingCourses:   []string{},
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, title string) course.Course {
	t.Helper()

	ts := Now()
	c, err := repo.CreateCourse(context.Background(), course.Course{Title: title, CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateWeek(t *testing.T, repo course.Repository, courseID, title string, published bool, createdAt ...time.Time) course.Week {
	t.Helper()

	ts := tstamp(createdAt)
	w, err := repo.CreateWeek(context.Background(), course.Week{
		CourseID:    courseID,
		Title:       title,
		IsPublished: published,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		t.Fatalf("CreateWeek() failed: %v", err)
	}
	return w
}

func CreateModule(t *testing.T, repo course.Repository, weekID, title string) course.Module {
	t.Helper()

	ts := Now()
	m, err := repo.CreateModule(context.Background(), course.Module{
		CourseWeekID: weekID,
		Title:        title,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return m
}

func CreateVideo(t *testing.T, repo course.Repository, moduleID, title string) course.Video {
	t.Helper()

	ts := Now()
	v, err := repo.CreateVideo(context.Background(), course.Video{
		ModuleID:        moduleID,
		Title:           title,
		URL:             "https://videos.example.com/" + uuid.New().String(),
		DurationSeconds: 600,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	})
	if err != nil {
		t.Fatalf("CreateVideo() failed: %v", err)
	}
	return v
}

// CreateQuiz creates a quiz whose answer at index correct is the right one.
func CreateQuiz(t *testing.T, repo course.Repository, moduleID, question string, correct int, answers ...string) course.Quiz {
	t.Helper()

	ts := Now()
	q := course.Quiz{ModuleID: moduleID, Question: question, CreatedAt: ts, UpdatedAt: ts}
	for i, text := range answers {
		q.Answers = append(q.Answers, course.Answer{Text: text, IsCorrect: i == correct})
	}
	err := repo.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		q, err = repo.CreateQuiz(ctx, q)
		return err
	})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return q
}

func CreateCohort(t *testing.T, repo cohort.Repository, name, courseID string, createdAt ...time.Time) cohort.Cohort {
	t.Helper()

	ts := tstamp(createdAt)
	c, err := repo.CreateCohort(context.Background(), cohort.Cohort{
		Name:      name,
		CourseID:  courseID,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreateCohort() failed: %v", err)
	}
	return c
}

func Enroll(t *testing.T, repo cohort.Repository, cohortID string, userIDs ...string) {
	t.Helper()

	for _, id := range userIDs {
		if err := repo.AddUser(context.Background(), cohortID, id); err != nil {
			t.Fatalf("Enroll() failed: %v", err)
		}
	}
}
