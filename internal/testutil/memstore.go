// Package testutil provides in-memory store implementations for service and
// handler tests.
package testutil

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

// UserStore is a concurrency-safe in-memory store.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*model.User

	// Err, when set, is returned by every call.
	Err error
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

var _ store.UserStore = (*UserStore)(nil)

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	c.Avatar = slices.Clone(u.Avatar)
	return &c
}

// Create stores a copy of user.
func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID returns a copy of the user with the given ID.
func (s *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByEmail returns a copy of the user with the given email.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update overwrites the profile fields of a stored user.
func (s *UserStore) Update(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cur, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	cur.Name = user.Name
	cur.Email = user.Email
	cur.PasswordHash = user.PasswordHash
	cur.Age = user.Age
	cur.UpdatedAt = user.UpdatedAt
	return nil
}

// Delete removes a user.
func (s *UserStore) Delete(_ context.Context, id string) error {
	return s.mutate(id, func(*model.User) { delete(s.users, id) })
}

// AddToken appends a session token.
func (s *UserStore) AddToken(_ context.Context, userID, token string) error {
	return s.mutate(userID, func(u *model.User) { u.Tokens = append(u.Tokens, token) })
}

// RemoveToken drops a session token if present.
func (s *UserStore) RemoveToken(_ context.Context, userID, token string) error {
	return s.mutate(userID, func(u *model.User) {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
	})
}

// ClearTokens drops every session token.
func (s *UserStore) ClearTokens(_ context.Context, userID string) error {
	return s.mutate(userID, func(u *model.User) { u.Tokens = nil })
}

// SetAvatar replaces the avatar; nil clears it.
func (s *UserStore) SetAvatar(_ context.Context, userID string, avatar []byte) error {
	return s.mutate(userID, func(u *model.User) { u.Avatar = slices.Clone(avatar) })
}

func (s *UserStore) mutate(id string, fn func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	fn(u)
	return nil
}

// Len reports how many users are stored.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// TaskStore is a concurrency-safe in-memory store.TaskStore. Insertion order
// stands in for the id tie-break so listings are stable.
type TaskStore struct {
	mu    sync.Mutex
	tasks []*model.Task

	Err error
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create stores a copy of task.
func (s *TaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	t := *task
	s.tasks = append(s.tasks, &t)
	return nil
}

// List filters, sorts and pages the owner's tasks.
func (s *TaskStore) List(_ context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	type entry struct {
		seq  int
		task model.Task
	}
	var matched []entry
	for i, t := range s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		matched = append(matched, entry{seq: i, task: *t})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareTasks(&matched[i].task, &matched[j].task, q.SortBy)
		if c == 0 {
			c = matched[i].seq - matched[j].seq
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})

	if q.Skip >= len(matched) {
		matched = nil
	} else {
		matched = matched[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]model.Task, len(matched))
	for i, e := range matched {
		out[i] = e.task
	}
	return out, nil
}

func compareTasks(a, b *model.Task, field string) int {
	switch field {
	case model.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortDescription:
		return strings.Compare(a.Description, b.Description)
	case model.SortCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case b.Completed:
			return -1
		default:
			return 1
		}
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// GetByID returns a copy of an owned task.
func (s *TaskStore) GetByID(_ context.Context, ownerID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if i := s.find(ownerID, id); i >= 0 {
		t := *s.tasks[i]
		return &t, nil
	}
	return nil, store.ErrTaskNotFound
}

// Update overwrites description, completed and updatedAt of an owned task.
func (s *TaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := s.find(task.OwnerID, task.ID)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	s.tasks[i].Description = task.Description
	s.tasks[i].Completed = task.Completed
	s.tasks[i].UpdatedAt = task.UpdatedAt
	return nil
}

// Delete removes an owned task and returns it.
func (s *TaskStore) Delete(_ context.Context, ownerID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	i := s.find(ownerID, id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	t := *s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return &t, nil
}

// DeleteByOwner removes every task of the owner.
func (s *TaskStore) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t *model.Task) bool { return t.OwnerID == ownerID })
	return int64(before - len(s.tasks)), nil
}

// CountByOwner reports how many tasks ownerID has.
func (s *TaskStore) CountByOwner(ownerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n
}

func (s *TaskStore) find(ownerID, id string) int {
	return slices.IndexFunc(s.tasks, func(t *model.Task) bool {
		return t.ID == id && t.OwnerID == ownerID
	})
}
