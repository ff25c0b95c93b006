package logsvc

import (
	"context"
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

// NewZapLogger returns a development logger in debug mode, a production one otherwise & a no-op one in tests.
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	switch {
	case conf.TestMode:
		return zap.NewNop(), nil
	case conf.Debug:
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

// RollbarLogger writes to zap & reports the same events to Rollbar.
type RollbarLogger struct {
	zl *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zl: zl.Sugar()}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Sync() error {
	return l.zl.Sync()
}

// item is what a log call reports to Rollbar. The logged in User travels in ctx, per item.
type item struct {
	ctx    context.Context
	err    error
	extras map[string]interface{}
}

// newItem reads args in the fmt: error, map[string]interface{}, user.User
func newItem(args []interface{}) item {
	it := item{ctx: context.Background(), extras: make(map[string]interface{})}
	var usrSet bool
	for i, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			if it.err == nil {
				it.err = a
			} else {
				it.extras[fmt.Sprintf("arg%d", i)] = a.Error()
			}
		case map[string]interface{}:
			for k, v := range a {
				it.extras[k] = v
			}
		case user.User:
			if !usrSet { // only set one User
				it.ctx = rollbar.NewPersonContext(it.ctx, &rollbar.Person{Id: a.ID, Username: a.Name, Email: a.Email})
				usrSet = true
			}
		default:
			it.extras[fmt.Sprintf("arg%d", i)] = a
		}
	}
	return it
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	it := newItem(args)
	if it.err != nil {
		it.extras["message"] = msg
		rollbar.ErrorWithExtrasAndContext(it.ctx, level, it.err, it.extras)
		return
	}
	rollbar.MessageWithExtrasAndContext(it.ctx, level, msg, it.extras)
}

// keysAndValues turns args into zap's loosely typed key-value pairs.
func keysAndValues(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, 2*len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			kv = append(kv, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				kv = append(kv, k, v)
			}
		case user.User:
			kv = append(kv, "userID", a.ID, "userEmail", a.Email)
		default:
			kv = append(kv, fmt.Sprintf("arg%d", i), a)
		}
	}
	return kv
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.DEBUG, msg, args)
	l.zl.Debugw(msg, keysAndValues(args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
	l.zl.Infow(msg, keysAndValues(args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
	l.zl.Warnw(msg, keysAndValues(args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
	l.zl.Errorw(msg, keysAndValues(args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.zl.Fatalw(msg, keysAndValues(args)...)
}
