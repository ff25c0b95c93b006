package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

type (
	// CohortCourse is a cohort & the course it follows.
	CohortCourse struct {
		CohortID string
		CourseID string
	}

	CohortLister interface {
		// CohortCourses lists every cohort, oldest first.
		CohortCourses(ctx context.Context) ([]CohortCourse, error)
	}

	PublishResult struct {
		CohortID string `json:"cohort_id" yaml:"cohort_id"`
		CourseID string `json:"course_id" yaml:"course_id"`
		WeekID   string `json:"week_id,omitempty" yaml:"week_id,omitempty"`
		Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	}

	PublishReport struct {
		Cohorts   int             `json:"cohorts" yaml:"cohorts"`
		Published []PublishResult `json:"published" yaml:"published"`
		Failed    []PublishResult `json:"failed" yaml:"failed"`
	}

	// Publisher releases course content one week at a time.
	Publisher struct {
		repo    Repository
		cohorts CohortLister
		logger  core.Logger
	}
)

func NewPublisher(repo Repository, cohorts CohortLister, logger core.Logger) *Publisher {
	return &Publisher{repo: repo, cohorts: cohorts, logger: logger}
}

// AutoPublish publishes, for every cohort, the oldest unpublished week of the cohort's course.
// A cohort whose course has nothing left to publish is skipped. A failing cohort is logged &
// reported without stopping the others; only listing the cohorts or a cancelled ctx aborts the run.
func (p *Publisher) AutoPublish(ctx context.Context) (PublishReport, error) {
	report := PublishReport{Published: []PublishResult{}, Failed: []PublishResult{}}

	cohorts, err := p.cohorts.CohortCourses(ctx)
	if err != nil {
		return report, errors.Wrap(err, "listing cohorts")
	}
	report.Cohorts = len(cohorts)

	for _, c := range cohorts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := PublishResult{CohortID: c.CohortID, CourseID: c.CourseID}
		w, err := p.publishNext(ctx, c.CourseID)
		switch {
		case err == nil:
			res.WeekID = w.ID
			report.Published = append(report.Published, res)
			p.logger.Info("week published", map[string]interface{}{
				"cohortID": c.CohortID,
				"courseID": c.CourseID,
				"weekID":   w.ID,
			})
		case core.IsNotFound(err):
			// nothing left to publish
		default:
			res.Error = err.Error()
			report.Failed = append(report.Failed, res)
			p.logger.Error("auto-publishing week", err, map[string]interface{}{
				"cohortID": c.CohortID,
				"courseID": c.CourseID,
			})
		}
	}
	return report, nil
}

func (p *Publisher) publishNext(ctx context.Context, courseID string) (Week, error) {
	w, err := p.repo.OldestUnpublishedWeek(ctx, courseID)
	if err != nil {
		return Week{}, err
	}
	w.IsPublished = true
	w.UpdatedAt = now()
	w, err = p.repo.UpdateWeek(ctx, w)
	return w, errors.Wrap(err, "publishing week")
}
