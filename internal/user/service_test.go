package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *UserService {
	return NewUserService(newMemStore(), BcryptHasher{Cost: bcrypt.MinCost})
}

func TestSignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Signup(ctx, "  Mario@Example.com ", "Mario", "spaghetti!")
	require.NoError(t, err)
	assert.Equal(t, "mario@example.com", u.Email)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "spaghetti!", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "MARIO@example.com", "spaghetti!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "bad email", email: "not-an-email", password: "longenough", wantErr: true},
		{name: "short password", email: "a@b.it", password: "short", wantErr: true},
		{name: "password over bcrypt limit", email: "a@b.it", password: strings.Repeat("p", 73), wantErr: true},
		{name: "password at bcrypt limit", email: "c@d.it", password: strings.Repeat("p", 72)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService().Signup(context.Background(), tt.email, "", tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignup)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.Signup(ctx, "a@b.it", "", "password1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "A@B.it", "", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.Signup(ctx, "a@b.it", "", "password1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@b.it", "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(ctx, "nobody@b.it", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(ctx, "", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestSetFlags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	u, err := svc.Signup(ctx, "a@b.it", "", "password1")
	require.NoError(t, err)

	updated, err := svc.SetFlags(ctx, u.ID, true, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.True(t, updated.IsLoyaltyMember)

	_, err = svc.SetFlags(ctx, 999, true, false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
