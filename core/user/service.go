package user

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUsernameExists     = errors.New("Username/ID Number already exists")
)

type (
	Repository interface {
		// QueryAllUsers returns the roster in insertion order.
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// CreateUser assigns the next free ID to usr and appends it to the roster.
		// It fails with ErrUsernameExists if the username is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		RosterExists(ctx context.Context) (bool, error)
		// SeedRoster persists users only if no roster is persisted yet and reports whether it did.
		SeedRoster(ctx context.Context, users []User) (bool, error)
	}

	Service struct {
		repo      Repository
		hasher    Hasher
		validator *core.Validator
	}
)

// NewService returns the user service. A nil hasher stores passwords in plain text.
func NewService(repo Repository, hasher Hasher, v *core.Validator) (*Service, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(v, "validator"),
	).Check()
	if err != nil {
		return nil, err
	}
	if hasher == nil {
		hasher = PlainTextHasher{}
	}
	RegisterValidators(v)
	return &Service{repo: repo, hasher: hasher, validator: v}, nil
}

func (svc *Service) Hasher() Hasher { return svc.hasher }

// Authenticate returns the user matching the exact (username, password) pair.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if !svc.hasher.Matches(usr.Password, pwd) {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// Register validates nu and appends the new user to the roster.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validator); err != nil {
		return User{}, err
	}
	role, err := ParseRole(nu.Role)
	if err != nil {
		return User{}, errors.Wrap(err, "parsing role")
	}
	if !role.Can(CapSelfRegister) {
		return User{}, core.ErrForbidden
	}

	pwd, err := svc.hasher.Hash(nu.Password)
	if err != nil {
		return User{}, err
	}
	usr := User{
		Username: nu.Username,
		Password: pwd,
		Role:     role,
		Name:     nu.Name,
	}
	if role == RoleStudent {
		usr.Branch = nu.Branch
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) All(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// Students returns the users with the student role in insertion order.
func (svc *Service) Students(ctx context.Context) ([]User, error) {
	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	students := make([]User, 0, len(users))
	for _, u := range users {
		if u.IsStudent() {
			students = append(students, u)
		}
	}
	return students, nil
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying users")
	}
	stats := Stats{Total: len(users)}
	for _, u := range users {
		switch u.Role {
		case RoleAdmin:
			stats.Admins++
		case RoleTeacher:
			stats.Teachers++
		case RoleStudent:
			stats.Students++
		}
	}
	return stats, nil
}

func (svc *Service) RosterExists(ctx context.Context) (bool, error) {
	return svc.repo.RosterExists(ctx)
}

// SeedRoster hashes the passwords of users and persists them if no roster exists yet.
func (svc *Service) SeedRoster(ctx context.Context, users []User) (bool, error) {
	hashed := make([]User, 0, len(users))
	for _, u := range users {
		pwd, err := svc.hasher.Hash(u.Password)
		if err != nil {
			return false, err
		}
		u.Password = pwd
		hashed = append(hashed, u)
	}
	return svc.repo.SeedRoster(ctx, hashed)
}
