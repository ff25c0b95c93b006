package cohort

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

// LeaderboardRepository provides the per-user aggregates a cohort leaderboard is built from.
type LeaderboardRepository interface {
	// QuizPointsByUser sums the leaderboard points of userIDs over the quizzes under the course's weeks.
	QuizPointsByUser(ctx context.Context, courseID string, userIDs []string) (map[string]int, error)
	// CompletedVideosByUser counts the completed progress records of userIDs for the course.
	CompletedVideosByUser(ctx context.Context, courseID string, userIDs []string) (map[string]int, error)
}

// Leaderboard ranks the users of a cohort.
// Either the full ranking is returned or an error, never a partial result.
func (svc *service) Leaderboard(ctx context.Context, cohortID string) (Leaderboard, error) {
	c, err := svc.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return Leaderboard{}, err
	}

	users, err := svc.repo.CohortUsers(ctx, cohortID)
	if err != nil {
		return Leaderboard{}, errors.Wrap(err, "loading cohort users")
	}
	if len(users) == 0 {
		return Leaderboard{Cohort: c.Summary(0), Entries: []LeaderboardEntry{}}, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var points, videos map[string]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		points, err = svc.lbRepo.QuizPointsByUser(gctx, c.CourseID, ids)
		return errors.Wrap(err, "summing quiz points")
	})
	g.Go(func() error {
		var err error
		videos, err = svc.lbRepo.CompletedVideosByUser(gctx, c.CourseID, ids)
		return errors.Wrap(err, "counting completed videos")
	})
	if err := g.Wait(); err != nil {
		return Leaderboard{}, err
	}

	return Leaderboard{
		Cohort:  c.Summary(len(users)),
		Entries: BuildLeaderboard(c.CourseID, users, points, videos),
	}, nil
}

// BuildLeaderboard assembles & ranks the entries of users.
// Users missing from points or videos count zero.
func BuildLeaderboard(courseID string, users []user.User, points, videos map[string]int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:             u.ID,
			User:               u.Summary(),
			QuizPoints:         points[u.ID],
			CompletedVideos:    videos[u.ID],
			HasCompletedCourse: u.HasCompletedCourse(courseID),
		})
	}
	RankEntries(entries)
	return entries
}

// RankEntries sorts entries by course completion, then quiz points, then completed videos,
// all descending, and numbers them from 1. Ties keep their input order.
func RankEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.HasCompletedCourse != b.HasCompletedCourse {
			return a.HasCompletedCourse
		}
		if a.QuizPoints != b.QuizPoints {
			return a.QuizPoints > b.QuizPoints
		}
		return a.CompletedVideos > b.CompletedVideos
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
