// Package store declares the persistence contracts implemented by the MySQL
// repository and the MongoDB document store.
package store

import (
	"context"

	"github.com/taskly/taskly-go/internal/model"
)

// UserStore persists users together with their session tokens and avatar.
type UserStore interface {
	// Create inserts a new user. user.ID must already be set.
	// Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns the user including its token set and avatar.
	// Returns ErrUserNotFound if no such user exists.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns the user with the given normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Update writes name, email, password hash, age and updatedAt.
	// Returns ErrDuplicateEmail if the new email belongs to another user.
	Update(ctx context.Context, user *model.User) error

	// Delete removes the user and everything embedded in it.
	Delete(ctx context.Context, id string) error

	AddToken(ctx context.Context, userID, token string) error
	// RemoveToken is a no-op when the token is not in the set.
	RemoveToken(ctx context.Context, userID, token string) error
	ClearTokens(ctx context.Context, userID string) error

	// SetAvatar replaces the avatar; nil clears it.
	SetAvatar(ctx context.Context, userID string, avatar []byte) error
}

// TaskStore persists tasks. Every read and write is scoped by owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error)

	// GetByID returns ErrTaskNotFound when the task does not exist or belongs
	// to another owner.
	GetByID(ctx context.Context, ownerID, id string) (*model.Task, error)

	// Update writes description, completed and updatedAt of an owned task.
	Update(ctx context.Context, task *model.Task) error

	// Delete removes an owned task and returns it.
	Delete(ctx context.Context, ownerID, id string) (*model.Task, error)

	// DeleteByOwner removes every task of ownerID and reports how many went.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
