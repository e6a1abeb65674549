package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/apps/api/echo"
	"github.com/klu2500030136/lptd-app/apps/shared"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := shared.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	srv, err := echoapi.NewServer(&echoapi.Options{
		Address:       app.Conf.Server.Address,
		Debug:         app.Conf.Debug,
		TestMode:      app.Conf.TestMode,
		AppName:       app.Conf.AppName,
		SecretKey:     app.Conf.SecretKey,
		JWTExpiration: app.Conf.Server.JWTExpirationDelta,
		Logger:        app.Logger,
		Validator:     app.Validator,
		UserSvc:       app.Users,
		MarkSvc:       app.Marks,
	})
	if err != nil {
		return errors.Wrap(err, "creating server")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err = <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serving API")
		}
		return nil
	case <-ctx.Done():
		app.Logger.Info("shutting down API server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(sctx)
	}
}
