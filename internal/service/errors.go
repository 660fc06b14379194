package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every input rejection.
	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("unable to login")
	ErrUnauthorized       = errors.New("please authenticate")

	// ErrNotFound covers both missing resources and resources owned by
	// someone else.
	ErrNotFound       = errors.New("not found")
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskNotFound   = fmt.Errorf("task %w", ErrNotFound)
	ErrAvatarNotFound = fmt.Errorf("avatar %w", ErrNotFound)

	ErrInvalidUpdates = fmt.Errorf("%w: invalid updates", ErrValidation)
	ErrEmailTaken     = fmt.Errorf("%w: email already taken", ErrValidation)
)
