package store

import (
	"errors"
	"fmt"
)

// Errors shared by every store backend.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")

	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskNotFound   = fmt.Errorf("task %w", ErrNotFound)
	ErrDuplicateEmail = fmt.Errorf("email %w", ErrDuplicate)
)
