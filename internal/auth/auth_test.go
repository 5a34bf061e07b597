package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"filmdash/internal/errors"
	"filmdash/internal/testkit"
	"filmdash/internal/validation"
	"filmdash/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var secret = strings.Repeat("k", 32)

func newService(t *testing.T) (*Service, *testkit.MockUserRepository) {
	t.Helper()
	tokens, err := NewTokenManager(secret, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	repo := &testkit.MockUserRepository{}
	return NewService(repo, tokens).WithCost(bcrypt.MinCost), repo
}

func fieldMessage(err error, field string) string {
	return validation.Fields(err).ByField()[field]
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	valid := SignupRequest{FirstName: "Ada", LastName: "Lovelace", Email: " ada@example.com ", Password: "engine", PasswordRepeat: "engine"}

	t.Run("stores hashed password", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(nil, errors.NotFound("user"))
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil)

		user, err := svc.Signup(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.FirstName)
		assert.NotEqual(t, "engine", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("engine")))
		repo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(&models.User{}, nil)

		_, err := svc.Signup(ctx, valid)
		assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
		assert.Equal(t, MsgEmailTaken, fieldMessage(err, "Email address"))
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("email taken by a concurrent signup", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(nil, errors.NotFound("user"))
		repo.On("CreateUser", ctx, mock.Anything).Return(errors.Conflict("user already exists"))

		_, err := svc.Signup(ctx, valid)
		assert.Equal(t, MsgEmailTaken, fieldMessage(err, "Email address"))
	})

	tests := []struct {
		name  string
		edit  func(r *SignupRequest)
		field string
		msg   string
	}{
		{"missing first name", func(r *SignupRequest) { r.FirstName = "" }, "First name", "First name is required"},
		{"bad email", func(r *SignupRequest) { r.Email = "ada" }, "Email address", "Email address must be a valid email address"},
		{"passwords differ", func(r *SignupRequest) { r.PasswordRepeat = "engines" }, "Repeat Password", MsgPasswordsDiffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			req := valid
			tt.edit(&req)

			_, err := svc.Signup(ctx, req)
			assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
			assert.Equal(t, tt.msg, fieldMessage(err, tt.field))
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("engine"), bcrypt.MinCost)
	require.NoError(t, err)
	ada := &models.User{ID: uuid.New(), FirstName: "Ada", Email: "ada@example.com", PasswordHash: string(hash)}

	t.Run("success issues a token for the user", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(ada, nil)
		repo.On("GetUserByID", ctx, ada.ID).Return(ada, nil)

		session, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "engine"})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

		user, err := svc.CurrentUser(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, ada.ID, user.ID)
	})

	t.Run("remember me lives longer", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(ada, nil)

		session, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "engine", RememberMe: true})
		require.NoError(t, err)
		assert.True(t, session.Remember)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)
	})

	t.Run("email is trimmed", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(ada, nil)

		session, err := svc.Login(ctx, LoginRequest{Email: " ada@example.com ", Password: "engine"})
		require.NoError(t, err)
		assert.Equal(t, ada.ID, session.User.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "bob@example.com").Return(nil, errors.NotFound("user"))

		_, err := svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "x"})
		assert.Equal(t, MsgEmailUnknown, fieldMessage(err, "Email address"))
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(ada, nil)

		_, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "babbage"})
		assert.Equal(t, MsgWrongPassword, fieldMessage(err, "Password"))
	})
}

func TestTokenManager(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour, time.Hour)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	m, err := NewTokenManager(secret, time.Hour, 48*time.Hour)
	require.NoError(t, err)
	id := uuid.New()

	token, _, err := m.Issue(id, false)
	require.NoError(t, err)
	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.Verify(token)
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := m.Verify(token + "x")
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager(strings.Repeat("z", 32), time.Hour, time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: id.String()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(unsigned)
		assert.Error(t, err)
	})
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		target string
		safe   bool
	}{
		{"/profile", true},
		{"display_proposals/3", true},
		{"http://filmdash.local/view_messages", true},
		{"https://filmdash.local/", true},
		{"http://evil.example/", false},
		{"//evil.example/path", false},
		{"javascript:alert(1)", false},
		{`/\evil.example`, false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.safe, SafeRedirect("filmdash.local", tt.target))
		})
	}
}

func TestUpdateUsername(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("taken", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("UpdateUsername", ctx, id, "ada").Return(errors.Conflict("username already exists"))

		err := svc.UpdateUsername(ctx, id, UsernameRequest{Username: " ada "})
		assert.Equal(t, MsgUsernameTaken, fieldMessage(err, "Username"))
	})

	t.Run("blank", func(t *testing.T) {
		svc, repo := newService(t)
		err := svc.UpdateUsername(ctx, id, UsernameRequest{Username: "  "})
		assert.Equal(t, "Username is required", fieldMessage(err, "Username"))
		repo.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ok", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("UpdateUsername", ctx, id, "ada").Return(nil)
		require.NoError(t, svc.UpdateUsername(ctx, id, UsernameRequest{Username: "ada"}))
		repo.AssertExpectations(t)
	})
}
