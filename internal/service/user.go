package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskly/taskly-go/internal/avatar"
	"github.com/taskly/taskly-go/internal/crypto"
	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

// UserService handles profile, account and avatar operations for an
// authenticated user.
type UserService struct {
	users    store.UserStore
	tasks    store.TaskStore
	notifier Notifier
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, tasks store.TaskStore, notifier Notifier) *UserService {
	return &UserService{users: users, tasks: tasks, notifier: notifier}
}

// UpdateProfile applies an allow-listed patch to user. Every present field is
// validated before anything is written.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, patch map[string]json.RawMessage) (*model.User, error) {
	var p UserPatch
	if err := userPatchSchema.decode(patch, &p); err != nil {
		return nil, err
	}

	updated := *user
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		updated.Email = normalizeEmail(*p.Email)
	}
	if p.Age != nil {
		updated.Age = *p.Age
	}
	if err := checkStruct(userFields{Name: updated.Name, Email: updated.Email, Age: updated.Age}); err != nil {
		return nil, err
	}

	if p.Password != nil {
		password := strings.TrimSpace(*p.Password)
		if err := checkPassword(password); err != nil {
			return nil, err
		}
		hash, err := crypto.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes user's tasks, then user, then sends the cancellation notice.
func (s *UserService) Delete(ctx context.Context, user *model.User) (*model.User, error) {
	removed, err := s.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("deleting tasks of user: %w", err)
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	slog.Info("user deleted", "user_id", user.ID, "tasks_removed", removed)
	s.notifier.NotifyCancellation(user.Email, user.Name)
	return user, nil
}

// SetAvatar normalizes an uploaded image and stores it as user's avatar.
func (s *UserService) SetAvatar(ctx context.Context, user *model.User, filename string, data []byte) error {
	img, err := avatar.Process(filename, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.users.SetAvatar(ctx, user.ID, img); err != nil {
		return err
	}
	user.Avatar = img
	return nil
}

// ClearAvatar removes user's avatar, if any.
func (s *UserService) ClearAvatar(ctx context.Context, user *model.User) error {
	if err := s.users.SetAvatar(ctx, user.ID, nil); err != nil {
		return err
	}
	user.Avatar = nil
	return nil
}

// Avatar returns the stored PNG of the user with the given id.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return user.Avatar, nil
}
