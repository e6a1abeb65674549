// Package logsvc provides the core.Logger implementations.
package logsvc

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/klu2500030136/lptd-app/core"
)

// New returns the zap logger, wrapped with rollbar reporting when a token is configured.
func New(conf *core.Config) (core.Logger, error) {
	zl, err := NewZapLogger(conf.Debug)
	if err != nil {
		return nil, errors.Wrap(err, "building zap logger")
	}
	if conf.RollbarToken == "" || conf.TestMode {
		return zl, nil
	}
	rl := NewRollbarLogger(zl, conf)
	rl.Enable(true)
	return rl, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() core.Logger {
	return NewZapLoggerFrom(zap.NewNop())
}
