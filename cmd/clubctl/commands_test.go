package main

import (
	"bytes"
	"context"
	"testing"

	"clubdash/pkg/auth"
	"clubdash/pkg/config"
	"clubdash/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	prev := openFunc
	openFunc = func(config.Config) (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() { openFunc = prev })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateSeedsAndCreatesSharedAccounts(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	out, err := run(t, db, "migrate", "--seed")
	require.NoError(t, err)
	assert.Contains(t, out, "migration completed")

	_, role, err := auth.Authenticate(db, "", "cascao")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, role)

	out, err = run(t, db, "report", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "lançamentos=3")
	assert.Contains(t, out, "Compra de materiais")

	out, err = run(t, db, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "Dezembro")
}

func TestCreateUser(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	out, err := run(t, db, "create-user", "tesoureiro", "segredo1", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created user tesoureiro")

	out, err = run(t, db, "create-user", "tesoureiro", "segredo1")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = run(t, db, "create-user", "x", "segredo1", "--role", "owner")
	assert.Error(t, err)
}

func TestReportRejectsBadMonth(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	_, err := run(t, db, "report", "--month", "agosto")
	assert.Error(t, err)
}

func TestResetPassword(t *testing.T) {
	db := store.NewSQLiteTestDB(t)
	_, err := run(t, db, "create-user", "secretaria", "antiga1")
	require.NoError(t, err)
	out, err := run(t, db, "reset-password", "secretaria", "nova123")
	require.NoError(t, err)
	assert.Contains(t, out, "password updated")

	_, err = run(t, db, "reset-password", "ninguem", "nova123")
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}
