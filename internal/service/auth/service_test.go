package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tigertix/tigertix/internal/testutil"
)

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *memDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[jti] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

func newTestService(t *testing.T, denylist Denylist) *Service {
	t.Helper()
	users := testutil.NewSQLiteStore(t).Users()
	return New(users, denylist, Config{
		Secret:     "test-secret",
		TokenTTL:   30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	session, err := svc.Register(ctx, " Ada@Example.com ", "hunter2", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.NotEqual(t, "hunter2", session.User.PasswordHash)
	assert.NotEmpty(t, session.Token)

	claims, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = svc.Register(ctx, "ada@example.com", "other", "Ada 2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := svc.Login(ctx, "ADA@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)

	_, err = svc.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	_, err := svc.Register(ctx, "", "pw", "x")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "not-an-email", "pw", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, "long@example.com", strings.Repeat("p", 73), "x")
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	session, err := svc.Register(ctx, "ada@example.com", "hunter2", "Ada")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := New(nil, nil, Config{Secret: "other-secret"}, nil)
	_, err = other.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	ctx := context.Background()
	denylist := &memDenylist{}
	svc := newTestService(t, denylist)

	session, err := svc.Register(ctx, "ada@example.com", "hunter2", "Ada")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, svc.Logout(ctx, "garbage"))
	assert.NoError(t, svc.Logout(ctx, ""))
}
