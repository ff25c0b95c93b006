package schedulersvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

const AutoPublishJob = "auto-publish-weeks"

// Job is a unit of scheduled work. Its ctx expires with the job's lock.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	locker Locker
	logger core.Logger
	ttl    time.Duration
}

// New builds a UTC scheduler. Jobs are guarded by a redis lock when client is not nil,
// by an in-process one otherwise.
func New(conf *core.Config, logger core.Logger, client *redis.Client) *Scheduler {
	var locker Locker
	if client != nil {
		locker = NewRedisLocker(client, logger)
	} else {
		locker = newLocalLocker()
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker: locker,
		logger: logger,
		ttl:    conf.Scheduler.LockTTL,
	}
}

func (s *Scheduler) AddJob(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { _ = s.Run(context.Background(), name, job) }); err != nil {
		return errors.Wrapf(err, "scheduling %s (%q)", name, spec)
	}
	return nil
}

// Run executes job once if its lock can be taken. A run skipped for the lock is not an error.
func (s *Scheduler) Run(ctx context.Context, name string, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.ttl)
	defer cancel()

	release, ok, err := s.locker.Acquire(ctx, name, s.ttl)
	if err != nil {
		s.logger.Error("running job", err, map[string]interface{}{"job": name})
		return err
	}
	if !ok {
		s.logger.Info("job already running elsewhere", map[string]interface{}{"job": name})
		return nil
	}
	defer release()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("running job", errors.Wrap(err, name), map[string]interface{}{"job": name})
		return err
	}
	s.logger.Info("job done", map[string]interface{}{"job": name, "took": time.Since(start).String()})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishWeeks adapts the weekly auto-publish to a Job.
func PublishWeeks(pub *course.Publisher) Job {
	return func(ctx context.Context) error {
		_, err := pub.AutoPublish(ctx)
		return err
	}
}

type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	res := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			res[k] = keysAndValues[i+1]
		}
	}
	return res
}
