package users

import (
	"context"
	"errors"
)

// ErrNotFound indicates a user was not found.
var ErrNotFound = errors.New("user not found")

// Repo defines persistence operations for users.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
