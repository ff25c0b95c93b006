package cohort

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("cohort not found")
	ErrNotEnrolled     = core.NewNotFoundError("user is not enrolled in this cohort")
	ErrAlreadyEnrolled = core.NewConflictError("user is already enrolled in this cohort")
	errCourseNotFound  = "course not found"
)

type (
	Repository interface {
		core.Transactor

		CreateCohort(ctx context.Context, c Cohort) (Cohort, error)
		UpdateCohort(ctx context.Context, c Cohort) (Cohort, error)
		GetCohort(ctx context.Context, id string) (Cohort, error)
		QueryCohorts(ctx context.Context, filter *QueryFilter) ([]Cohort, error)
		DeleteCohort(ctx context.Context, id string) error

		// AddUser returns ErrAlreadyEnrolled when the user is already in the cohort.
		AddUser(ctx context.Context, cohortID, userID string) error
		// RemoveUser returns ErrNotEnrolled when the user is not in the cohort.
		RemoveUser(ctx context.Context, cohortID, userID string) error
		// CohortUsers lists the cohort users in enrollment order.
		CohortUsers(ctx context.Context, cohortID string) ([]user.User, error)
	}

	// CourseGetter is the part of the course service cohorts depend on.
	CourseGetter interface {
		GetCourse(ctx context.Context, id string) (course.Course, error)
	}

	Service interface {
		Create(ctx context.Context, in Input) (Cohort, error)
		Update(ctx context.Context, id string, in Input) (Cohort, error)
		Get(ctx context.Context, id string) (Cohort, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Cohort, error)
		Delete(ctx context.Context, id string) error

		Enroll(ctx context.Context, cohortID, userID string) error
		Unenroll(ctx context.Context, cohortID, userID string) error
		Users(ctx context.Context, cohortID string) ([]user.User, error)

		Leaderboard(ctx context.Context, cohortID string) (Leaderboard, error)
	}

	service struct {
		repo    Repository
		lbRepo  LeaderboardRepository
		courses CourseGetter
		users   user.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	lbRepo LeaderboardRepository,
	courses CourseGetter,
	users user.Service,
	mailSvc core.EmailService,
) Service {
	return &service{
		repo:    repo,
		lbRepo:  lbRepo,
		courses: courses,
		users:   users,
		mailSvc: mailSvc,
	}
}

func (svc *service) checkCourse(ctx context.Context, courseID string) (course.Course, error) {
	crs, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return course.Course{}, core.NewValidationError(err, core.FieldError{Field: "course_id", Error: errCourseNotFound})
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return crs, nil
}

func (svc *service) Create(ctx context.Context, in Input) (Cohort, error) {
	if _, err := svc.checkCourse(ctx, in.CourseID); err != nil {
		return Cohort{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateCohort(ctx, Cohort{
		Name:      in.Name,
		CourseID:  in.CourseID,
		StartDate: in.StartDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Update(ctx context.Context, id string, in Input) (Cohort, error) {
	c, err := svc.repo.GetCohort(ctx, id)
	if err != nil {
		return Cohort{}, err
	}
	if in.CourseID != c.CourseID {
		if _, err := svc.checkCourse(ctx, in.CourseID); err != nil {
			return Cohort{}, err
		}
	}
	c.Name = in.Name
	c.CourseID = in.CourseID
	c.StartDate = in.StartDate
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCohort(ctx, c)
}

func (svc *service) Get(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohort(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Cohort, error) {
	return svc.repo.QueryCohorts(ctx, filter)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCohort(ctx, id)
}

// Enroll adds the user to the cohort & marks the cohort's course as ongoing for them, in one transaction.
// The user is notified once both are committed.
func (svc *service) Enroll(ctx context.Context, cohortID, userID string) error {
	c, err := svc.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return err
	}
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	crs, err := svc.courses.GetCourse(ctx, c.CourseID)
	if err != nil {
		return errors.Wrap(err, "finding cohort course")
	}

	err = svc.repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.repo.AddUser(ctx, c.ID, usr.ID); err != nil {
			return err
		}
		_, err := svc.users.StartCourse(ctx, usr.ID, c.CourseID)
		return errors.Wrap(err, "starting course")
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return ErrAlreadyEnrolled
		}
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + c.Name,
		TemplateName: "cohort_enrollment",
		TemplateData: struct {
			Name        string
			CohortName  string
			CourseTitle string
			CourseID    string
		}{
			Name:        usr.Name,
			CohortName:  c.Name,
			CourseTitle: crs.Title,
			CourseID:    crs.ID,
		},
	})
	return nil
}

func (svc *service) Unenroll(ctx context.Context, cohortID, userID string) error {
	if _, err := svc.repo.GetCohort(ctx, cohortID); err != nil {
		return err
	}
	return svc.repo.RemoveUser(ctx, cohortID, userID)
}

func (svc *service) Users(ctx context.Context, cohortID string) ([]user.User, error) {
	if _, err := svc.repo.GetCohort(ctx, cohortID); err != nil {
		return nil, err
	}
	return svc.repo.CohortUsers(ctx, cohortID)
}
