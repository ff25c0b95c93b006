package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	emailsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/email"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database/gormdb"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.RunMigrations

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	db         *gorm.DB
	out        io.Writer
	validate   *validator.Validate
	usrRepo    user.Repository
	usrSvc     user.Service
	courseRepo course.Repository
	courseSvc  course.Service
	cohortRepo cohort.Repository
	publisher  *course.Publisher
}

func newCommandLine(conf *core.Config, logger core.Logger, db *gorm.DB, out io.Writer) *commandLine {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	usrRepo := gormdb.NewUserRepository(db)
	courseRepo := gormdb.NewCourseRepository(db)
	cohortRepo := gormdb.NewCohortRepository(db)

	return &commandLine{
		conf:       conf,
		logger:     logger,
		db:         db,
		out:        out,
		validate:   validate,
		usrRepo:    usrRepo,
		usrSvc:     user.NewService(usrRepo, emailsvc.NewConsoleService(conf, logger), conf),
		courseRepo: courseRepo,
		courseSvc:  course.NewService(courseRepo),
		cohortRepo: cohortRepo,
		publisher:  course.NewPublisher(courseRepo, cohortRepo, logger),
	}
}

func (cli *commandLine) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Open Programmes administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	cmd.SetOut(cli.out)
	cmd.SetErr(cli.out)
	cmd.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.completeCourseCmd(),
		cli.publishWeeksCmd(),
		cli.seedCmd(),
	)
	return cmd
}

func (cli *commandLine) run(args []string) error {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := cli.rootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
