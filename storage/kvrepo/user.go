package kvrepo

import (
	"context"
	"sync"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/user"
)

type userRepository struct {
	mu    sync.Mutex
	store core.KVStore
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(store core.KVStore) user.Repository {
	return &userRepository{store: store}
}

func (repo *userRepository) load(ctx context.Context) (users []user.User, found bool, err error) {
	found, err = core.GetJSON(ctx, repo.store, UsersKey, &users)
	return users, found, err
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	users, _, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	users, _, err := repo.load(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	users, _, err := repo.load(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	users, _, err := repo.load(ctx)
	if err != nil {
		return user.User{}, err
	}
	maxID := 0
	for _, u := range users {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	usr.ID = maxID + 1
	if err = core.SetJSON(ctx, repo.store, UsersKey, append(users, usr)); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) RosterExists(ctx context.Context) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	_, found, err := repo.load(ctx)
	return found, err
}

func (repo *userRepository) SeedRoster(ctx context.Context, users []user.User) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, found, err := repo.load(ctx); err != nil || found {
		return false, err
	}
	if users == nil {
		users = []user.User{}
	}
	if err := core.SetJSON(ctx, repo.store, UsersKey, users); err != nil {
		return false, err
	}
	return true, nil
}
