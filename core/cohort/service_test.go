package cohort

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

// enrollRepo keeps members in memory & drops the writes of a failed transaction.
type enrollRepo struct {
	Repository // panics if an unexpected method is called

	cohorts map[string]Cohort
	members map[string][]string
}

func (r *enrollRepo) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := make(map[string][]string, len(r.members))
	for k, v := range r.members {
		saved[k] = append([]string(nil), v...)
	}
	if err := fn(ctx); err != nil {
		r.members = saved
		return err
	}
	return nil
}

func (r *enrollRepo) GetCohort(_ context.Context, id string) (Cohort, error) {
	c, ok := r.cohorts[id]
	if !ok {
		return Cohort{}, ErrNotFound
	}
	return c, nil
}

func (r *enrollRepo) AddUser(_ context.Context, cohortID, userID string) error {
	for _, id := range r.members[cohortID] {
		if id == userID {
			return ErrAlreadyEnrolled
		}
	}
	r.members[cohortID] = append(r.members[cohortID], userID)
	return nil
}

func (r *enrollRepo) CohortUsers(_ context.Context, cohortID string) ([]user.User, error) {
	users := make([]user.User, 0, len(r.members[cohortID]))
	for _, id := range r.members[cohortID] {
		users = append(users, user.User{ID: id})
	}
	return users, nil
}

type fakeUsers struct {
	user.Service // panics if an unexpected method is called

	users    map[string]user.User
	startErr error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) StartCourse(_ context.Context, userID, courseID string) (user.User, error) {
	if f.startErr != nil {
		return user.User{}, f.startErr
	}
	u := f.users[userID]
	u.OngoingCourses = append(u.OngoingCourses, courseID)
	f.users[userID] = u
	return u, nil
}

type fakeCourses map[string]course.Course

func (f fakeCourses) GetCourse(_ context.Context, id string) (course.Course, error) {
	c, ok := f[id]
	if !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	return c, nil
}

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func TestService_Enroll(t *testing.T) {
	ctx := context.Background()

	setup := func() (*enrollRepo, *fakeUsers, *mailRecorder, Service) {
		repo := &enrollRepo{
			cohorts: map[string]Cohort{"c1": {ID: "c1", Name: "January", CourseID: "course-1"}},
			members: make(map[string][]string),
		}
		users := &fakeUsers{users: map[string]user.User{"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com"}}}
		mail := &mailRecorder{}
		courses := fakeCourses{"course-1": {ID: "course-1", Title: "Data Analytics"}}
		return repo, users, mail, NewService(repo, nil, courses, users, mail)
	}

	t.Run("enrolls & notifies", func(t *testing.T) {
		repo, users, mail, svc := setup()

		require.NoError(t, svc.Enroll(ctx, "c1", "u1"))
		assert.Equal(t, []string{"u1"}, repo.members["c1"])
		assert.Equal(t, []string{"course-1"}, users.users["u1"].OngoingCourses)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "cohort_enrollment", mail.sent[0].TemplateName)

		assert.Equal(t, ErrAlreadyEnrolled, svc.Enroll(ctx, "c1", "u1"))
		assert.Len(t, mail.sent, 1)
	})

	t.Run("failed course start leaves no enrollment", func(t *testing.T) {
		repo, users, mail, svc := setup()
		users.startErr = errors.New("connection reset")

		err := svc.Enroll(ctx, "c1", "u1")
		require.Error(t, err)
		members, err := svc.Users(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, members)
		assert.Empty(t, mail.sent)

		// a retry succeeds once the failure is gone
		users.startErr = nil
		require.NoError(t, svc.Enroll(ctx, "c1", "u1"))
		assert.Equal(t, []string{"u1"}, repo.members["c1"])
		assert.Len(t, mail.sent, 1)
	})

	t.Run("unknown cohort or user", func(t *testing.T) {
		_, _, mail, svc := setup()

		assert.Equal(t, ErrNotFound, svc.Enroll(ctx, "nope", "u1"))
		assert.Equal(t, user.ErrNotFound, svc.Enroll(ctx, "c1", "ghost"))
		assert.Empty(t, mail.sent)
	})
}
