package testutil

import (
	"context"
	"testing"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
	"github.com/klu2500030136/lptd-app/storage/kvrepo"
	"github.com/klu2500030136/lptd-app/storage/kvstore/inmem"
)

// Env wires the services over a fresh in-memory store.
type Env struct {
	Store     *inmem.Store
	Validator *core.Validator
	UserRepo  user.Repository
	MarkRepo  mark.Repository
	Sessions  user.SessionStore
	UserSvc   *user.Service
	MarkSvc   *mark.Service
}

func NewEnv(t *testing.T, hasher ...user.Hasher) *Env {
	t.Helper()

	var h user.Hasher = user.PlainTextHasher{}
	if len(hasher) > 0 {
		h = hasher[0]
	}
	env := &Env{
		Store:     inmem.Open(),
		Validator: core.NewValidator(),
	}
	env.UserRepo = kvrepo.NewUserRepository(env.Store)
	env.MarkRepo = kvrepo.NewMarkRepository(env.Store)
	env.Sessions = kvrepo.NewSessionStore(env.Store)

	var err error
	if env.UserSvc, err = user.NewService(env.UserRepo, h, env.Validator); err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	if env.MarkSvc, err = mark.NewService(env.MarkRepo, env.UserSvc, env.Validator); err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	t.Cleanup(func() { _ = env.Store.Close() })
	return env
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, pwd string, role user.Role, branch ...string) user.User {
	t.Helper()

	usr := user.User{
		Name:     name,
		Username: uname,
		Password: pwd,
		Role:     role,
	}
	if len(branch) > 0 {
		usr.Branch = branch[0]
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateMark(t *testing.T, repo mark.Repository, student user.User, subject string, marks float64) mark.MarkEntry {
	t.Helper()

	entry, err := repo.UpsertMark(context.Background(), mark.MarkEntry{
		StudentID:   student.ID,
		StudentName: student.Name,
		Subject:     subject,
		Marks:       marks,
		Score:       marks,
		CGPA:        mark.CGPA(marks),
	})
	if err != nil {
		t.Fatalf("createMark() failed: %v", err)
	}
	return entry
}
