package kvrepo

import (
	"context"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/user"
)

type sessionStore struct {
	store core.KVStore
}

var _ user.SessionStore = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(store core.KVStore) user.SessionStore {
	return &sessionStore{store: store}
}

func (s *sessionStore) LoadSession(ctx context.Context) (usr user.User, ok bool, err error) {
	ok, err = core.GetJSON(ctx, s.store, CurrentUserKey, &usr)
	return usr, ok, err
}

func (s *sessionStore) SaveSession(ctx context.Context, usr user.User) error {
	return core.SetJSON(ctx, s.store, CurrentUserKey, usr)
}

func (s *sessionStore) ClearSession(ctx context.Context) error {
	return s.store.Delete(ctx, CurrentUserKey)
}
