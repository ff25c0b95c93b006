package database

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	appfs "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/fs"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"

	migrationsDir = "migrations"
)

// goose keeps its settings in package globals
var gooseMu sync.Mutex

func dialector(conf *core.Config) (gorm.Dialector, error) {
	switch conf.Database.Engine {
	case EnginePostgres:
		return postgres.Open(conf.Database.URL()), nil
	case EngineSQLite:
		dsn := conf.Database.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared&_fk=1"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

// Open connects to the configured database and waits until it answers.
func Open(conf *core.Config) (*gorm.DB, error) {
	dial, err := dialector(conf)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if conf.TestMode {
		logLevel = gormlogger.Silent
	}
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "getting sql.DB")
	}
	if conf.Database.Engine == EngineSQLite {
		// a single connection keeps in-memory databases alive & serializes writers
		sqlDB.SetMaxOpenConns(1)
	}
	if err = ping(sqlDB); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func gooseDialect(engine string) string {
	if engine == EngineSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset, ...) against the embedded migrations.
func RunMigrations(db *gorm.DB, engine, command string, args ...string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting sql.DB")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(appfs.FS)
	goose.SetLogger(goose.NopLogger())
	if err = goose.SetDialect(gooseDialect(engine)); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err = goose.Run(command, sqlDB, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %s", command)
	}
	return nil
}

func Migrate(db *gorm.DB, engine string) error {
	return errors.Wrap(RunMigrations(db, engine, "up"), "migrating database")
}
