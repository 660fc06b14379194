package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskly/taskly-go/internal/crypto"
	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

// Notifier receives account lifecycle events. Implementations must not block.
type Notifier interface {
	NotifyWelcome(email, name string)
	NotifyCancellation(email, name string)
}

// AuthService handles registration, credential checks and session tokens.
type AuthService struct {
	users     store.UserStore
	notifier  Notifier
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users store.UserStore, notifier Notifier, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		notifier:  notifier,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account, sends the welcome notification and
// returns the user with a fresh session token.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	fields := userFields{
		Name:  strings.TrimSpace(req.Name),
		Email: normalizeEmail(req.Email),
	}
	if req.Age != nil {
		fields.Age = *req.Age
	}
	if err := checkStruct(fields); err != nil {
		return model.AuthResponse{}, err
	}
	password := strings.TrimSpace(req.Password)
	if err := checkPassword(password); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         fields.Name,
		Email:        fields.Email,
		PasswordHash: hash,
		Age:          fields.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	s.notifier.NotifyWelcome(user.Email, user.Name)

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: model.NewUserResponse(user), Token: token}, nil
}

// Login checks credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: model.NewUserResponse(user), Token: token}, nil
}

// Authenticate returns the user owning email if password matches. Unknown
// email and wrong password yield the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	password = strings.TrimSpace(password)

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			crypto.BurnVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs a token for user and adds it to the user's session set.
// Sessions that no longer validate are dropped from the set first.
func (s *AuthService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	if err := s.pruneSessions(ctx, user); err != nil {
		return "", err
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", err
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

// pruneSessions removes expired or otherwise invalid tokens from the
// user's session set.
func (s *AuthService) pruneSessions(ctx context.Context, user *model.User) error {
	live := user.Tokens[:0:0]
	for _, t := range user.Tokens {
		claims, err := crypto.ValidateToken(t, s.jwtSecret)
		if err == nil && claims.UserID == user.ID {
			live = append(live, t)
			continue
		}
		if err := s.users.RemoveToken(ctx, user.ID, t); err != nil {
			return fmt.Errorf("pruning session token: %w", err)
		}
	}
	user.Tokens = live
	return nil
}

// ResolveSession maps a bearer token to its user. The token must carry a
// valid signature and still be in the user's session set.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		slog.Error("failed to load session user", "error", err)
		return nil, ErrUnauthorized
	}

	if !user.HasToken(token) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Logout closes the session identified by token.
func (s *AuthService) Logout(ctx context.Context, user *model.User, token string) error {
	return s.users.RemoveToken(ctx, user.ID, token)
}

// LogoutAll closes every session of user.
func (s *AuthService) LogoutAll(ctx context.Context, user *model.User) error {
	return s.users.ClearTokens(ctx, user.ID)
}
