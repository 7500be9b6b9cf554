package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/testkit"
)

var seededLogins = map[string]string{
	"admin@bluujobs.com":  "admin123",
	"rajesh@example.com":  "worker123",
	"priya@example.com":   "worker123",
	"amit@example.com":    "worker123",
	"suresh@example.com":  "worker123",
	"deepak@example.com":  "worker123",
	"ramesh@example.com":  "worker123",
	"neha@example.com":    "employer123",
	"vikram@example.com":  "employer123",
	"anjali@example.com":  "employer123",
	"rahul@example.com":   "employer123",
	"kavita@example.com":  "employer123",
	"meena@example.com":   "worker123",
	"arjun@example.com":   "worker123",
	"lakshmi@example.com": "worker123",
	"ganesh@example.com":  "worker123",
}

func newService(t *testing.T) (*Service, *testkit.Env) {
	t.Helper()
	env := testkit.Seeded(t)
	return NewService(env.Store, env.Repos.Users, env.Sessions, bcrypt.MinCost, nil), env
}

func TestAuthenticateSeededUsers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for email, pw := range seededLogins {
		u, ok, err := svc.Authenticate(ctx, email, pw)
		require.NoError(t, err, email)
		require.True(t, ok, email)
		assert.Equal(t, email, u.Email)
		assert.Empty(t, u.PasswordHash, "hash must not leave the service")
	}
}

func TestAuthenticateRejectsOtherPairs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []struct{ email, pw string }{
		{"rajesh@example.com", "employer123"},
		{"neha@example.com", "worker123"},
		{"RAJESH@example.com", "worker123"},
		{"nobody@example.com", "worker123"},
		{"", ""},
		{"admin@bluujobs.com", ""},
	}
	for _, c := range cases {
		_, ok, err := svc.Authenticate(ctx, c.email, c.pw)
		require.NoError(t, err)
		assert.False(t, ok, "%s/%s", c.email, c.pw)
	}
}

func TestUnknownEmailStillComparesHash(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var hashes [][]byte
	orig := compareHash
	compareHash = func(hash, pw []byte) error {
		hashes = append(hashes, hash)
		return orig(hash, pw)
	}
	t.Cleanup(func() { compareHash = orig })

	_, ok, err := svc.Authenticate(ctx, "nobody@example.com", "worker123")
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, hashes, 1)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	_, ok, err = svc.Authenticate(ctx, "rajesh@example.com", "wrong-pass")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, hashes, 2)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name:     "Sunil Rao",
		Email:    "sunil@example.com",
		Password: "secret99",
		UserType: "worker",
		Location: "Dadar, Mumbai",
		Skills:   []string{"Masonry", " masonry ", "Tiling"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, []string{"Masonry", "Tiling"}, u.Skills)
	require.NotNil(t, u.ProfileComplete)

	_, err = svc.Register(ctx, RegisterInput{Name: "Dup", Email: "sunil@example.com", Password: "secret99", UserType: "worker"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	_, err = svc.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret99", UserType: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Name: "Short", Email: "short@example.com", Password: "abc", UserType: "worker"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Login(ctx, LoginInput{Email: "sunil@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := svc.Login(ctx, LoginInput{Email: "sunil@example.com", Password: "secret99"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	cur, ok, err := svc.CurrentUser(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, cur.ID)
}

func TestScopedSessionsAreIndependent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Email: "rajesh@example.com", Password: "worker123", Scope: "a"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginInput{Email: "neha@example.com", Password: "employer123", Scope: "b"})
	require.NoError(t, err)

	a, ok, err := svc.CurrentUser(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", a.ID)

	require.NoError(t, svc.Logout(ctx, "a"))
	_, ok, err = svc.CurrentUser(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	b, ok, err := svc.CurrentUser(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.TypeEmployer, b.UserType)

	require.NoError(t, svc.Logout(ctx, "never-opened"))
}

func TestSetCurrentUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.SetCurrentUser(ctx, "", "8")
	require.NoError(t, err)
	assert.Equal(t, "Neha Desai", u.Name)

	_, err = svc.SetCurrentUser(ctx, "", "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, "2", "nope-nope", "newpass1"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "2", "worker123", "x"), ErrInvalidInput)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "999", "worker123", "newpass1"), ErrNotFound)

	require.NoError(t, svc.ChangePassword(ctx, "2", "worker123", "newpass1"))
	_, ok, err := svc.Authenticate(ctx, "rajesh@example.com", "worker123")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = svc.Authenticate(ctx, "rajesh@example.com", "newpass1")
	require.NoError(t, err)
	assert.True(t, ok)
}
