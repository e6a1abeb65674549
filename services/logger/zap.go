package logsvc

import (
	"go.uber.org/zap"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/user"
)

// ZapLogger writes structured logs with zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a development logger in debug mode, a production (JSON) one otherwise.
func NewZapLogger(debug bool) (*ZapLogger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return NewZapLoggerFrom(zl), nil
}

func NewZapLoggerFrom(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: zl.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// fields turns the core.Logger args into zap key-value pairs.
func fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			kvs = append(kvs, zap.Error(a))
		case user.User:
			kvs = append(kvs, "userId", a.ID, "username", a.Username, "role", a.Role.String())
		case map[string]interface{}:
			for k, v := range a {
				kvs = append(kvs, k, v)
			}
		default:
			kvs = append(kvs, "arg", a)
		}
	}
	return kvs
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, fields(args)...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, fields(args)...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, fields(args)...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.sugar.Errorw(msg, fields(args)...)
}

func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
