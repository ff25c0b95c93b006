package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	echoapi "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/apps/api/echo"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/progress"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/quiz"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	emailsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/email"
	logsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/logger"
	schedulersvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/scheduler"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database/gormdb"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newZapLogger(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatal(errors.Wrap(err, "building zap logger").Error())
	}
	return zl
}

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *gorm.DB {
	setUp := func() (*gorm.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db, conf.Database.Engine); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// the cohort repository also serves the leaderboard aggregates & the publisher's cohort listing
func newCohortRepositories(db *gorm.DB) (cohort.Repository, cohort.LeaderboardRepository, course.CohortLister) {
	repo := gormdb.NewCohortRepository(db)
	return repo, repo, repo
}

func newQuizService(repo quiz.Repository, courses course.Service, users user.Service, conf *core.Config) quiz.Service {
	return quiz.NewService(repo, courses, users, conf)
}

func newProgressService(repo progress.Repository, courses course.Service) progress.Service {
	return progress.NewService(repo, courses)
}

func newCohortService(
	repo cohort.Repository,
	lbRepo cohort.LeaderboardRepository,
	courses course.Service,
	users user.Service,
	mailSvc core.EmailService,
) cohort.Service {
	return cohort.NewService(repo, lbRepo, courses, users, mailSvc)
}

type serverParams struct {
	dig.In

	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	UserSvc     user.Service
	CourseSvc   course.Service
	CohortSvc   cohort.Service
	QuizSvc     quiz.Service
	ProgressSvc progress.Service
	Publisher   *course.Publisher
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		UserSvc:     p.UserSvc,
		CourseSvc:   p.CourseSvc,
		CohortSvc:   p.CohortSvc,
		QuizSvc:     p.QuizSvc,
		ProgressSvc: p.ProgressSvc,
		Publisher:   p.Publisher,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(schedulersvc.NewRedisClient))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(gormdb.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(gormdb.NewCourseRepository, dig.As(new(course.Repository))))
	must(c.Provide(gormdb.NewQuizRepository, dig.As(new(quiz.Repository))))
	must(c.Provide(gormdb.NewProgressRepository, dig.As(new(progress.Repository))))
	must(c.Provide(newCohortRepositories))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(newCohortService))
	must(c.Provide(newQuizService))
	must(c.Provide(newProgressService))
	must(c.Provide(course.NewPublisher))
	must(c.Provide(schedulersvc.New))

	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
