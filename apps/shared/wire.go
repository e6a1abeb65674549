// Package shared wires the services both apps run on.
package shared

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/seed"
	"github.com/klu2500030136/lptd-app/core/user"
	logsvc "github.com/klu2500030136/lptd-app/services/logger"
	rostersvc "github.com/klu2500030136/lptd-app/services/roster"
	"github.com/klu2500030136/lptd-app/storage/kvrepo"
	"github.com/klu2500030136/lptd-app/storage/kvstore"
)

type Services struct {
	Validator *core.Validator
	Users     *user.Service
	Marks     *mark.Service
	Sessions  user.SessionStore
	Seeder    *seed.Seeder
}

// NewServices builds the domain services over store.
func NewServices(conf *core.Config, store core.KVStore, logger core.Logger, roster seed.RosterSource) (*Services, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(store, "store"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(roster, "roster"),
	).Check()
	if err != nil {
		return nil, err
	}

	hasher, err := user.NewHasher(conf.PasswordHashing)
	if err != nil {
		return nil, err
	}
	if _, ok := hasher.(user.PlainTextHasher); ok {
		logger.Warn("passwords are stored in plain text; set passwordHashing=bcrypt for real accounts")
	}

	svcs := &Services{
		Validator: core.NewValidator(),
		Sessions:  kvrepo.NewSessionStore(store),
	}
	if svcs.Users, err = user.NewService(kvrepo.NewUserRepository(store), hasher, svcs.Validator); err != nil {
		return nil, errors.Wrap(err, "creating user service")
	}
	if svcs.Marks, err = mark.NewService(kvrepo.NewMarkRepository(store), svcs.Users, svcs.Validator); err != nil {
		return nil, errors.Wrap(err, "creating mark service")
	}
	if svcs.Seeder, err = seed.NewSeeder(svcs.Users, svcs.Marks, roster, logger, conf.Seed.Timeout); err != nil {
		return nil, errors.Wrap(err, "creating seeder")
	}
	return svcs, nil
}

// App holds what a running app owns.
type App struct {
	Conf   *core.Config
	Logger core.Logger
	Store  core.KVStore
	*Services
}

// Bootstrap loads the config, opens the store, wires the services and seeds the store if enabled.
func Bootstrap(ctx context.Context) (*App, error) {
	conf, err := core.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	logger, err := logsvc.New(conf)
	if err != nil {
		return nil, err
	}
	store, err := kvstore.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	svcs, err := NewServices(conf, store, logger, rostersvc.NewClient(conf.Seed.RosterURL))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app := &App{Conf: conf, Logger: logger, Store: store, Services: svcs}

	if conf.Seed.Enabled {
		if err = svcs.Seeder.Seed(ctx); err != nil {
			_ = app.Close()
			return nil, errors.Wrap(err, "seeding store")
		}
	}
	return app, nil
}

func (app *App) Close() error {
	err := app.Store.Close()
	_ = app.Logger.Sync()
	return err
}
