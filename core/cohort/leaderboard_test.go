package cohort

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

type fakeRepo struct {
	Repository // panics if an unexpected method is called

	cohorts map[string]Cohort
	users   map[string][]user.User
}

func (r *fakeRepo) GetCohort(_ context.Context, id string) (Cohort, error) {
	c, ok := r.cohorts[id]
	if !ok {
		return Cohort{}, ErrNotFound
	}
	return c, nil
}

func (r *fakeRepo) CohortUsers(_ context.Context, cohortID string) ([]user.User, error) {
	return r.users[cohortID], nil
}

type fakeLeaderboardRepo struct {
	points    map[string]int
	videos    map[string]int
	pointsErr error
}

func (r *fakeLeaderboardRepo) QuizPointsByUser(_ context.Context, _ string, userIDs []string) (map[string]int, error) {
	if r.pointsErr != nil {
		return nil, r.pointsErr
	}
	return pick(r.points, userIDs), nil
}

func (r *fakeLeaderboardRepo) CompletedVideosByUser(_ context.Context, _ string, userIDs []string) (map[string]int, error) {
	return pick(r.videos, userIDs), nil
}

func pick(m map[string]int, ids []string) map[string]int {
	res := make(map[string]int)
	for _, id := range ids {
		if v, ok := m[id]; ok {
			res[id] = v
		}
	}
	return res
}

func newUser(id, name string, completed ...string) user.User {
	return user.User{ID: id, Name: name, CompletedCourses: completed}
}

func TestRankEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []LeaderboardEntry
		want    []string
	}{
		{name: "empty", entries: []LeaderboardEntry{}, want: []string{}},
		{
			name: "completion beats points",
			entries: []LeaderboardEntry{
				{UserID: "B", QuizPoints: 20, CompletedVideos: 10},
				{UserID: "C", QuizPoints: 20, CompletedVideos: 3},
				{UserID: "A", QuizPoints: 5, CompletedVideos: 1, HasCompletedCourse: true},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "points then videos",
			entries: []LeaderboardEntry{
				{UserID: "A", QuizPoints: 1, CompletedVideos: 9},
				{UserID: "B", QuizPoints: 3, CompletedVideos: 0},
				{UserID: "C", QuizPoints: 3, CompletedVideos: 2},
			},
			want: []string{"C", "B", "A"},
		},
		{
			name: "ties keep input order",
			entries: []LeaderboardEntry{
				{UserID: "X", QuizPoints: 2},
				{UserID: "Y", QuizPoints: 2},
				{UserID: "Z", QuizPoints: 2},
			},
			want: []string{"X", "Y", "Z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RankEntries(tt.entries)
			got := make([]string, 0, len(tt.entries))
			for i, e := range tt.entries {
				got = append(got, e.UserID)
				if e.Rank != i+1 {
					t.Errorf("entry %s rank = %d; want %d", e.UserID, e.Rank, i+1)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{
		cohorts: map[string]Cohort{
			"c1":    {ID: "c1", Name: "Cohort 1", CourseID: "course-1"},
			"empty": {ID: "empty", Name: "Empty", CourseID: "course-1"},
		},
		users: map[string][]user.User{
			"c1": {
				newUser("u1", "Ann"),
				newUser("u2", "Bob", "course-1"),
				newUser("u3", "Cyd", "course-2"),
			},
		},
	}
	lbRepo := &fakeLeaderboardRepo{
		points: map[string]int{"u1": 20, "u2": 5, "u3": 20, "outsider": 100},
		videos: map[string]int{"u1": 3, "u3": 10},
	}
	svc := NewService(repo, lbRepo, nil, nil, nil)

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := svc.Leaderboard(ctx, "nope")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("cohort without users", func(t *testing.T) {
		lb, err := svc.Leaderboard(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, lb.Entries)
		assert.NotNil(t, lb.Entries)
		assert.Equal(t, 0, lb.Cohort.TotalUsers)
	})

	t.Run("ranked", func(t *testing.T) {
		lb, err := svc.Leaderboard(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, Summary{ID: "c1", Name: "Cohort 1", CourseID: "course-1", TotalUsers: 3}, lb.Cohort)
		assert.Equal(t, []LeaderboardEntry{
			{Rank: 1, UserID: "u2", User: user.Summary{ID: "u2", Name: "Bob"}, QuizPoints: 5, HasCompletedCourse: true},
			{Rank: 2, UserID: "u3", User: user.Summary{ID: "u3", Name: "Cyd"}, QuizPoints: 20, CompletedVideos: 10},
			{Rank: 3, UserID: "u1", User: user.Summary{ID: "u1", Name: "Ann"}, QuizPoints: 20, CompletedVideos: 3},
		}, lb.Entries)
	})

	t.Run("aggregate failure returns no partial result", func(t *testing.T) {
		lbRepo.pointsErr = errors.New("connection reset")
		defer func() { lbRepo.pointsErr = nil }()

		lb, err := svc.Leaderboard(ctx, "c1")
		require.Error(t, err)
		assert.Nil(t, lb.Entries)
	})
}
