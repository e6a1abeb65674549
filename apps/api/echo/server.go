package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
)

type (
	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
		AppName        string
		SecretKey      string
		JWTExpiration  time.Duration
		Logger         core.Logger
		Validator      *core.Validator
		UserSvc        *user.Service
		MarkSvc        *mark.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		auth *Auth
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) (Server, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(opts.Logger, "Logger"),
		vala.IsNotNil(opts.Validator, "Validator"),
		vala.IsNotNil(opts.UserSvc, "UserSvc"),
		vala.IsNotNil(opts.MarkSvc, "MarkSvc"),
		vala.StringNotEmpty(opts.SecretKey, "SecretKey"),
	).Check()
	if err != nil {
		return nil, err
	}

	s := &server{
		opts: opts,
		auth: NewAuth(opts.SecretKey, opts.AppName, opts.JWTExpiration),
		app:  echo.New(),
	}
	s.setup()
	return s, nil
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Validator)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig())

	registerUserAPI(v1, jwt, s.auth, s.opts.UserSvc)
	registerMarkAPI(v1, jwt, s.opts.UserSvc, s.opts.MarkSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.AppName+" API!")
}
