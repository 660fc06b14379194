package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

const userColumns = `id, name, email, password_hash, age, avatar, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ store.UserStore = (*UserRepository)(nil)

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, age, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Age, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByID retrieves a user and its active tokens by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user and its active tokens by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Age,
		&user.Avatar, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}

	tokens, err := r.listTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = tokens

	return user, nil
}

func (r *UserRepository) listTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM user_tokens WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// Update writes the mutable profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET name = ?, email = ?, password_hash = ?, age = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Age, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return expectOneRow(result, store.ErrUserNotFound)
}

// Delete removes a user. Tokens and tasks go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, store.ErrUserNotFound)
}

// AddToken appends a session token to the user's token set.
func (r *UserRepository) AddToken(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_tokens (user_id, token) VALUES (?, ?)`, userID, token)
	return err
}

// RemoveToken deletes one session token.
func (r *UserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ? AND token = ?`, userID, token)
	return err
}

// ClearTokens deletes every session token of the user.
func (r *UserRepository) ClearTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, userID)
	return err
}

// SetAvatar stores avatar bytes on the user row; nil writes NULL.
func (r *UserRepository) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`,
		avatar, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, store.ErrUserNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
