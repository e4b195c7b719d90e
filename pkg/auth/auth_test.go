package auth

import (
	"testing"
	"time"

	"clubdash/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	require.NoError(t, EnsureRoles(db))

	u, err := Register(db, "treasurer", "secret1", RoleAdmin)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = Register(db, "treasurer", "secret1", RoleAdmin)
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = Register(db, "short", "123", RoleVisitor)
	assert.Error(t, err)
	_, err = Register(db, " ", "secret1", RoleVisitor)
	assert.Error(t, err)

	got, role, err := Authenticate(db, "treasurer", "secret1")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
	assert.Equal(t, u.ID, got.ID)

	_, _, err = Authenticate(db, "treasurer", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = Authenticate(db, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordOnlyGate(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	require.NoError(t, SetPassword(db, "admin", "cascao", RoleAdmin))
	require.NoError(t, SetPassword(db, "visitor", "zegotinha", RoleVisitor))

	_, role, err := Authenticate(db, "", "cascao")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, role, err = Authenticate(db, "", "zegotinha")
	require.NoError(t, err)
	assert.Equal(t, RoleVisitor, role)

	_, role, err = Authenticate(db, "", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, RoleNone, role)

	// changing the configured password replaces the stored hash
	require.NoError(t, SetPassword(db, "admin", "novasenha", RoleAdmin))
	_, _, err = Authenticate(db, "", "cascao")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, role, err = Authenticate(db, "admin", "novasenha")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.CanWrite())
	assert.True(t, RoleAdmin.CanRead())
	assert.False(t, RoleVisitor.CanWrite())
	assert.True(t, RoleVisitor.CanRead())
	assert.False(t, RoleNone.CanRead())
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
	assert.Equal(t, RoleNone, ParseRole("administrator"))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"))
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	iss.Now = func() time.Time { return now }

	tok, err := iss.AccessToken("admin", RoleAdmin, "sid-1")
	require.NoError(t, err)
	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)

	other := NewIssuer([]byte("other-secret"))
	other.Now = iss.Now
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	now = now.Add(25 * time.Hour)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotationKeepsSession(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	require.NoError(t, SetPassword(db, "visitor", "zegotinha", RoleVisitor))
	u, _, err := Authenticate(db, "visitor", "zegotinha")
	require.NoError(t, err)

	iss := NewIssuer([]byte("s"))
	raw, err := iss.CreateRefreshToken(db, u.ID, "sid-9")
	require.NoError(t, err)

	sess, err := iss.Rotate(db, raw)
	require.NoError(t, err)
	assert.Equal(t, "sid-9", sess.SessionID)
	assert.Equal(t, RoleVisitor, sess.Role)
	assert.NotEqual(t, raw, sess.RefreshToken)

	_, err = iss.Rotate(db, raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "rotated token is revoked")

	sid, err := Revoke(db, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "sid-9", sid)
	_, err = iss.Rotate(db, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSharedAccountsFollowConfiguration(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	require.NoError(t, EnsureSharedAccounts(db, "cascao", "zegotinha"))
	_, role, err := Authenticate(db, "", "cascao")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	// a changed password replaces the old one on the next start
	require.NoError(t, EnsureSharedAccounts(db, "novasenha", "zegotinha"))
	_, _, err = Authenticate(db, "", "cascao")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, role, err = Authenticate(db, "", "novasenha")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
}

func TestResetPassword(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	_, err := Register(db, "secretaria", "antiga1", RoleVisitor)
	require.NoError(t, err)

	require.NoError(t, ResetPassword(db, "secretaria", "nova123"))
	_, _, err = Authenticate(db, "secretaria", "antiga1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, role, err := Authenticate(db, "secretaria", "nova123")
	require.NoError(t, err)
	assert.Equal(t, RoleVisitor, role)

	assert.ErrorIs(t, ResetPassword(db, "ninguem", "nova123"), ErrUnknownUser)
	assert.Error(t, ResetPassword(db, "secretaria", "123"))
}
