package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/swotlab/swotlab/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newService(t *testing.T, st store.Store, c *clock) *Service {
	t.Helper()
	return Load(context.Background(), st, zerolog.Nop(),
		WithHashCost(bcrypt.MinCost),
		WithSessionTTL(time.Hour),
		WithClock(c.Now),
	)
}

func TestRegister(t *testing.T) {
	s := newService(t, store.NewFileStore(t.TempDir()), &clock{time.Now()})

	u, err := s.Register(context.Background(), "  Ada@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	s := newService(t, store.NewFileStore(t.TempDir()), &clock{time.Now()})
	ctx := context.Background()

	_, err := s.Register(ctx, "   ", "long enough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.Register(ctx, "a@b.c", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.Register(ctx, "a@b.c", "long enough")
	require.NoError(t, err)
	_, err = s.Register(ctx, "A@B.C", "another one")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	c := &clock{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newService(t, store.NewFileStore(t.TempDir()), c)
	ctx := context.Background()

	u, err := s.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = s.Login(ctx, "ada@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := s.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, u.ID, session.UserID)

	got, ok := s.Authenticate(ctx, session.Token)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_Expiry(t *testing.T) {
	c := &clock{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	st := store.NewFileStore(t.TempDir())
	s := newService(t, st, c)
	ctx := context.Background()

	_, err := s.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	session, err := s.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Minute)
	_, ok := s.Authenticate(ctx, session.Token)
	assert.True(t, ok, "session should still be valid inside the TTL")

	c.t = c.t.Add(time.Minute)
	_, ok = s.Authenticate(ctx, session.Token)
	assert.False(t, ok, "session should expire at the TTL")

	var stored map[string]Session
	_, err = st.Load(ctx, store.Sessions, &stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, session.Token, "expired session should be removed from the store")
}

func TestAuthenticate_Unknown(t *testing.T) {
	s := newService(t, store.NewFileStore(t.TempDir()), &clock{time.Now()})
	_, ok := s.Authenticate(context.Background(), "")
	assert.False(t, ok)
	_, ok = s.Authenticate(context.Background(), "deadbeef")
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	s := newService(t, store.NewFileStore(t.TempDir()), &clock{time.Now()})
	ctx := context.Background()

	_, err := s.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	session, err := s.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	s.Logout(ctx, session.Token)
	s.Logout(ctx, "unknown")

	_, ok := s.Authenticate(ctx, session.Token)
	assert.False(t, ok)
}

func TestSessionsSurviveReload(t *testing.T) {
	c := &clock{time.Now()}
	st := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	first := newService(t, st, c)
	_, err := first.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	session, err := first.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	second := newService(t, st, c)
	u, ok := second.Authenticate(ctx, session.Token)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestPurgeExpired(t *testing.T) {
	c := &clock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newService(t, store.NewFileStore(t.TempDir()), c)
	ctx := context.Background()

	_, err := s.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	_, err = s.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	c.t = c.t.Add(30 * time.Minute)
	fresh, err := s.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	c.t = c.t.Add(45 * time.Minute)
	assert.Equal(t, 1, s.PurgeExpired(ctx))
	assert.Equal(t, 0, s.PurgeExpired(ctx))

	_, ok := s.Authenticate(ctx, fresh.Token)
	assert.True(t, ok)
}

func TestUsers_OrderedByCreation(t *testing.T) {
	c := &clock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newService(t, store.NewFileStore(t.TempDir()), c)
	ctx := context.Background()

	for _, email := range []string{"b@x.io", "a@x.io"} {
		_, err := s.Register(ctx, email, "password1")
		require.NoError(t, err)
		c.t = c.t.Add(time.Second)
	}

	users := s.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "b@x.io", users[0].Email)

	u, ok := s.UserByEmail("A@X.IO")
	require.True(t, ok)
	assert.Equal(t, "a@x.io", u.Email)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	s := newService(t, store.NewFileStore(t.TempDir()), &clock{time.Now()})
	ctx := context.Background()

	_, err := s.Register(ctx, "ada@example.com", strings.Repeat("x", 80))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Empty(t, s.Users())

	_, err = s.Register(ctx, "ada@example.com", strings.Repeat("x", MaxPasswordLength))
	assert.NoError(t, err)
}
