package tasks

import "errors"

// ErrNotFound is returned by the store when a task does not exist for
// the given user, has been soft-deleted, or belongs to another user.
// The three cases are deliberately indistinguishable.
var ErrNotFound = errors.New("task not found")
