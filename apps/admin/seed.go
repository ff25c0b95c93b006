package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

type (
	seedFile struct {
		Users   []seedUser   `yaml:"users"`
		Courses []seedCourse `yaml:"courses"`
	}

	seedUser struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	}

	seedCourse struct {
		Title       string       `yaml:"title"`
		Description string       `yaml:"description"`
		Image       string       `yaml:"image"`
		Weeks       []seedWeek   `yaml:"weeks"`
		Cohorts     []seedCohort `yaml:"cohorts"`
	}

	seedWeek struct {
		Title     string       `yaml:"title"`
		Published bool         `yaml:"published"`
		Modules   []seedModule `yaml:"modules"`
	}

	seedModule struct {
		Title       string      `yaml:"title"`
		Description string      `yaml:"description"`
		Videos      []seedVideo `yaml:"videos"`
		Quizzes     []seedQuiz  `yaml:"quizzes"`
	}

	seedVideo struct {
		Title           string `yaml:"title"`
		URL             string `yaml:"url"`
		DurationSeconds int    `yaml:"duration_seconds"`
	}

	seedQuiz struct {
		Question string       `yaml:"question"`
		Answers  []seedAnswer `yaml:"answers"`
	}

	seedAnswer struct {
		Text    string `yaml:"text"`
		Correct bool   `yaml:"correct"`
	}

	seedCohort struct {
		Name      string     `yaml:"name"`
		StartDate *time.Time `yaml:"start_date"`
		Members   []string   `yaml:"members"` // emails
	}
)

type seedStats struct {
	users, courses, weeks, modules, videos, quizzes, cohorts, enrollments int
}

func (s seedStats) String() string {
	return fmt.Sprintf(
		"seeded %d users, %d courses, %d weeks, %d modules, %d videos, %d quizzes, %d cohorts, %d enrollments",
		s.users, s.courses, s.weeks, s.modules, s.videos, s.quizzes, s.cohorts, s.enrollments,
	)
}

func (cli *commandLine) seedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, courses & cohorts from a YAML file, in a single transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				_ = cmd.Usage()
				return errHelp
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return errors.Wrapf(err, "parsing %s", path)
			}

			stats, err := cli.seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "Path of the YAML seed file")
	return cmd
}

// seed creates everything in seed or nothing. Users are matched by email & updated.
func (cli *commandLine) seed(ctx context.Context, seed seedFile) (seedStats, error) {
	var stats seedStats
	err := cli.courseRepo.WithinTx(ctx, func(ctx context.Context) error {
		stats = seedStats{}
		for _, u := range seed.Users {
			role := u.Role
			if role == "" {
				role = user.RoleUser
			}
			if _, err := cli.addUser(ctx, u.Name, u.Email, role, u.Password); err != nil {
				return errors.Wrapf(err, "user %q", u.Email)
			}
			stats.users++
		}
		for _, c := range seed.Courses {
			if err := cli.seedCourse(ctx, c, &stats); err != nil {
				return errors.Wrapf(err, "course %q", c.Title)
			}
		}
		return nil
	})
	return stats, err
}

func (cli *commandLine) seedCourse(ctx context.Context, sc seedCourse, stats *seedStats) error {
	in := course.CourseInput{Title: sc.Title, Description: sc.Description, Image: sc.Image}
	if err := in.Validate(cli.validate); err != nil {
		return err
	}
	crs, err := cli.courseSvc.CreateCourse(ctx, in)
	if err != nil {
		return err
	}
	stats.courses++

	for _, sw := range sc.Weeks {
		win := course.WeekInput{Title: sw.Title, IsPublished: sw.Published}
		if err := win.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "week %q", sw.Title)
		}
		w, err := cli.courseSvc.CreateWeek(ctx, crs.ID, win)
		if err != nil {
			return err
		}
		stats.weeks++

		for _, sm := range sw.Modules {
			if err := cli.seedModule(ctx, w.ID, sm, stats); err != nil {
				return errors.Wrapf(err, "module %q", sm.Title)
			}
		}
	}

	for _, sco := range sc.Cohorts {
		if err := cli.seedCohort(ctx, crs.ID, sco, stats); err != nil {
			return errors.Wrapf(err, "cohort %q", sco.Name)
		}
	}
	return nil
}

func (cli *commandLine) seedModule(ctx context.Context, weekID string, sm seedModule, stats *seedStats) error {
	modIn := course.ModuleInput{Title: sm.Title, Description: sm.Description}
	if err := modIn.Validate(cli.validate); err != nil {
		return err
	}
	m, err := cli.courseSvc.CreateModule(ctx, weekID, modIn)
	if err != nil {
		return err
	}
	stats.modules++

	for _, sv := range sm.Videos {
		vin := course.VideoInput{Title: sv.Title, URL: sv.URL, DurationSeconds: sv.DurationSeconds}
		if err := vin.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "video %q", sv.Title)
		}
		if _, err := cli.courseSvc.CreateVideo(ctx, m.ID, vin); err != nil {
			return err
		}
		stats.videos++
	}

	for _, sq := range sm.Quizzes {
		qin := course.QuizInput{Question: sq.Question}
		for _, a := range sq.Answers {
			qin.Answers = append(qin.Answers, course.AnswerInput{Text: a.Text, IsCorrect: a.Correct})
		}
		if err := qin.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "quiz %q", sq.Question)
		}
		if _, err := cli.courseSvc.CreateQuiz(ctx, m.ID, qin); err != nil {
			return err
		}
		stats.quizzes++
	}
	return nil
}

func (cli *commandLine) seedCohort(ctx context.Context, courseID string, sc seedCohort, stats *seedStats) error {
	in := cohort.Input{Name: sc.Name, CourseID: courseID, StartDate: sc.StartDate}
	if err := in.Validate(cli.validate); err != nil {
		return err
	}
	now := time.Now().UTC()
	c, err := cli.cohortRepo.CreateCohort(ctx, cohort.Cohort{
		Name:      in.Name,
		CourseID:  in.CourseID,
		StartDate: in.StartDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	stats.cohorts++

	for _, email := range sc.Members {
		usr, err := cli.usrSvc.GetByEmail(ctx, email)
		if err != nil {
			return errors.Wrapf(err, "member %q", email)
		}
		if err := cli.cohortRepo.AddUser(ctx, c.ID, usr.ID); err != nil {
			return errors.Wrapf(err, "member %q", email)
		}
		if _, err := cli.usrSvc.StartCourse(ctx, usr.ID, courseID); err != nil {
			return err
		}
		stats.enrollments++
	}
	return nil
}
