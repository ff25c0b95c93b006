package gormdb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
)

type cohortRepository struct {
	transactor
	db *gorm.DB
}

var (
	// interface compliance checks
	_ cohort.Repository            = (*cohortRepository)(nil)
	_ cohort.LeaderboardRepository = (*cohortRepository)(nil)
	_ course.CohortLister          = (*cohortRepository)(nil)
)

func NewCohortRepository(db *gorm.DB) *cohortRepository {
	return &cohortRepository{transactor: transactor{db: db}, db: db}
}

func boilCohort(c cohort.Cohort) *cohortRow {
	return &cohortRow{
		ID:        c.ID,
		Name:      c.Name,
		CourseID:  c.CourseID,
		StartDate: null.TimeFromPtr(c.StartDate),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func unboilCohort(row *cohortRow) cohort.Cohort {
	c := cohort.Cohort{
		ID:        row.ID,
		Name:      row.Name,
		CourseID:  row.CourseID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.StartDate.Valid {
		sd := row.StartDate.Time.UTC()
		c.StartDate = &sd
	}
	return c
}

func (repo cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	c.ID = newID()
	row := boilCohort(c)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "inserting cohort")
	}
	return unboilCohort(row), nil
}

func (repo cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	row := boilCohort(c)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "created_at").Updates(row)
	if err := checkAffected(res, cohort.ErrNotFound, "updating cohort"); err != nil {
		return cohort.Cohort{}, err
	}
	return unboilCohort(row), nil
}

func (repo cohortRepository) GetCohort(ctx context.Context, id string) (cohort.Cohort, error) {
	var row cohortRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return cohort.Cohort{}, trapNotFound(err, cohort.ErrNotFound, "finding cohort")
	}
	return unboilCohort(&row), nil
}

func (repo cohortRepository) QueryCohorts(ctx context.Context, filter *cohort.QueryFilter) ([]cohort.Cohort, error) {
	q := conn(ctx, repo.db).Model(&cohortRow{})
	if filter != nil {
		if filter.CourseID != "" {
			q = q.Where("course_id = ?", filter.CourseID)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
		}
	}

	var rows []cohortRow
	if err := q.Order("created_at DESC, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}
	cohorts := make([]cohort.Cohort, 0, len(rows))
	for i := range rows {
		cohorts = append(cohorts, unboilCohort(&rows[i]))
	}
	return cohorts, nil
}

func (repo cohortRepository) DeleteCohort(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&cohortRow{})
	return checkAffected(res, cohort.ErrNotFound, "deleting cohort")
}

func (repo cohortRepository) AddUser(ctx context.Context, cohortID, userID string) error {
	row := &cohortUserRow{CohortID: cohortID, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return cohort.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "enrolling user")
	}
	return nil
}

func (repo cohortRepository) RemoveUser(ctx context.Context, cohortID, userID string) error {
	res := conn(ctx, repo.db).Where("cohort_id = ? AND user_id = ?", cohortID, userID).Delete(&cohortUserRow{})
	return checkAffected(res, cohort.ErrNotEnrolled, "unenrolling user")
}

func (repo cohortRepository) CohortUsers(ctx context.Context, cohortID string) ([]user.User, error) {
	var rows []userRow
	err := conn(ctx, repo.db).
		Table("users").
		Select("users.*").
		Joins("JOIN cohort_users cu ON cu.user_id = users.id").
		Where("cu.cohort_id = ?", cohortID).
		Order("cu.created_at, users.id").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying cohort users")
	}
	return userRepository{}.unboilSlice(rows), nil
}

func (repo cohortRepository) CohortCourses(ctx context.Context) ([]course.CohortCourse, error) {
	var rows []cohortRow
	if err := conn(ctx, repo.db).Select("id", "course_id").Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "listing cohorts")
	}
	res := make([]course.CohortCourse, 0, len(rows))
	for _, r := range rows {
		res = append(res, course.CohortCourse{CohortID: r.ID, CourseID: r.CourseID})
	}
	return res, nil
}

// Leaderboard aggregates

func (repo cohortRepository) QuizPointsByUser(ctx context.Context, courseID string, userIDs []string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}
	var rows []userCount
	err := conn(ctx, repo.db).
		Table("leaderboard_entries AS le").
		Select("le.user_id AS user_id, SUM(le.points) AS total").
		Joins("JOIN quizzes q ON q.id = le.quiz_id").
		Joins("JOIN modules m ON m.id = q.module_id").
		Joins("JOIN course_weeks w ON w.id = m.course_week_id").
		Where("w.course_id = ? AND le.user_id IN ?", courseID, userIDs).
		Group("le.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "summing quiz points")
	}
	return countsByUser(rows), nil
}

func (repo cohortRepository) CompletedVideosByUser(ctx context.Context, courseID string, userIDs []string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}
	var rows []userCount
	err := conn(ctx, repo.db).
		Table("user_progress").
		Select("user_id, COUNT(*) AS total").
		Where("course_id = ? AND is_completed = ? AND user_id IN ?", courseID, true, userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "counting completed videos")
	}
	return countsByUser(rows), nil
}
