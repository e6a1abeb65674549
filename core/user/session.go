package user

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

// SessionStore persists the currently authenticated user.
type SessionStore interface {
	// LoadSession returns the persisted user; ok is false if there is none.
	LoadSession(ctx context.Context) (usr User, ok bool, err error)
	SaveSession(ctx context.Context, usr User) error
	// ClearSession removes the persisted user. Clearing an absent session is not an error.
	ClearSession(ctx context.Context) error
}

// Session holds at most one authenticated user per store handle.
type Session struct {
	svc   *Service
	store SessionStore

	mu      sync.RWMutex
	current *User
}

// NewSession restores the persisted session, if any, from store.
func NewSession(ctx context.Context, svc *Service, store SessionStore) (*Session, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(svc, "svc"),
		vala.IsNotNil(store, "store"),
	).Check()
	if err != nil {
		return nil, err
	}

	sess := &Session{svc: svc, store: store}
	usr, ok, err := store.LoadSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading session")
	}
	if ok {
		sess.current = &usr
	}
	return sess, nil
}

// Login activates the user matching (uname, pwd).
// A failed attempt leaves the previous session untouched.
func (s *Session) Login(ctx context.Context, uname, pwd string) (Result, error) {
	usr, err := s.svc.Authenticate(ctx, uname, pwd)
	if err != nil {
		if errors.Cause(err) == ErrInvalidCredentials {
			return failure(ErrInvalidCredentials), nil
		}
		return Result{}, err
	}
	if err = s.activate(ctx, usr); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Role: usr.Role}, nil
}

// Register creates a new user and activates it.
// Validation failures are returned as *core.ValidationError.
func (s *Session) Register(ctx context.Context, nu NewUser) (Result, error) {
	usr, err := s.svc.Register(ctx, nu)
	if err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return failure(ErrUsernameExists), nil
		}
		return Result{}, err
	}
	if err = s.activate(ctx, usr); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Role: usr.Role}, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ClearSession(ctx); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	s.current = nil
	return nil
}

// Current returns the active user; ok is false when nobody is logged in.
func (s *Session) Current(_ context.Context) (usr User, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return User{}, false, nil
	}
	return *s.current, true, nil
}

func (s *Session) activate(ctx context.Context, usr User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveSession(ctx, usr); err != nil {
		return errors.Wrap(err, "saving session")
	}
	s.current = &usr
	return nil
}
