package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskly/taskly-go/internal/crypto"
	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/testutil"
)

const testSecret = "test-secret"

type authFixture struct {
	svc      *AuthService
	users    *testutil.UserStore
	notifier *testutil.Notifier
}

func newAuthFixture() authFixture {
	users := testutil.NewUserStore()
	notifier := &testutil.Notifier{}
	return authFixture{
		svc:      NewAuthService(users, notifier, testSecret, time.Hour),
		users:    users,
		notifier: notifier,
	}
}

func intPtr(n int) *int { return &n }

func TestRegister(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, model.CreateUserRequest{
		Name:     "  Ali ",
		Email:    " Ali@Example.COM ",
		Password: "Loc123!",
		Age:      intPtr(30),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "Ali", resp.User.Name)
	assert.Equal(t, "ali@example.com", resp.User.Email)
	assert.Equal(t, 30, resp.User.Age)

	stored, err := f.users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Loc123!", stored.PasswordHash)
	assert.Equal(t, []string{resp.Token}, stored.Tokens)

	claims, err := crypto.ValidateToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	assert.Equal(t, []testutil.Notification{
		{Kind: "welcome", Email: "ali@example.com", Name: "Ali"},
	}, f.notifier.Sent())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.CreateUserRequest
	}{
		{"missing name", model.CreateUserRequest{Name: "  ", Email: "a@b.com", Password: "secret12"}},
		{"invalid email", model.CreateUserRequest{Name: "A", Email: "not-an-email", Password: "secret12"}},
		{"short password", model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: " abc12 "}},
		{"password word", model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "myPassWord1"}},
		{"negative age", model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12", Age: intPtr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.users.Len())
			assert.Empty(t, f.notifier.Sent())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	req := model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"}

	_, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "A@B.com"
	_, err = f.svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, f.users.Len())
}

func TestLogin_FailuresAreIdentical(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "secret13"})
	_, unknownEmail := f.svc.Login(ctx, model.LoginRequest{Email: "nobody@b.com", Password: "secret12"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_AddsSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, model.LoginRequest{Email: "A@b.com ", Password: "secret12"})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, login.Token)

	user, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reg.Token, login.Token}, user.Tokens)
}

func TestLogin_DropsDeadSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, crypto.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskly",
			Audience:  jwt.ClaimStrings{"taskly-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: reg.User.ID,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	resigned, err := crypto.GenerateToken(reg.User.ID, "rotated-secret", time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.users.AddToken(ctx, reg.User.ID, expired))
	require.NoError(t, f.users.AddToken(ctx, reg.User.ID, resigned))
	require.NoError(t, f.users.AddToken(ctx, reg.User.ID, "not-a-jwt"))

	login, err := f.svc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	user, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reg.Token, login.Token}, user.Tokens)
}

func TestResolveSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	user, err := f.svc.ResolveSession(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = f.svc.ResolveSession(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	foreign, err := crypto.GenerateToken(reg.User.ID, "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = f.svc.ResolveSession(ctx, foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Correctly signed, but never issued into the session set.
	unissued, err := crypto.GenerateToken(reg.User.ID, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = f.svc.ResolveSession(ctx, unissued)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveSession_StoreFailure(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	f.users.Err = errors.New("connection reset")
	_, err = f.svc.ResolveSession(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	user, err := f.svc.ResolveSession(ctx, reg.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, user, reg.Token))
	require.NoError(t, f.svc.Logout(ctx, user, reg.Token), "logout is idempotent")

	_, err = f.svc.ResolveSession(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.ResolveSession(ctx, second.Token)
	assert.NoError(t, err)
}

func TestLogoutAll(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, model.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "secret12"})
	require.NoError(t, err)

	user, err := f.svc.ResolveSession(ctx, second.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.LogoutAll(ctx, user))

	for _, token := range []string{reg.Token, second.Token} {
		_, err := f.svc.ResolveSession(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}
