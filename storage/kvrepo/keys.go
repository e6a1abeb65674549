// Package kvrepo implements the domain repositories over a core.KVStore.
// Each collection is a single JSON value, rewritten on every change.
package kvrepo

// persisted keys
const (
	UsersKey       = "users"
	MarksKey       = "marks"
	CurrentUserKey = "currentUser"
)
