package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/keys"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/repository"
)

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "create-admin")

	err = run(context.Background(), []string{"rotate"}, strings.NewReader(""), &stdout, &stderr)
	assert.ErrorContains(t, err, "unknown command")
}

func TestGenKey(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"genkey"}, nil, &stdout, &stderr))

		key, err := keys.ParsePrivateKey(stdout.Bytes())
		require.NoError(t, err)
		assert.Equal(t, keys.DefaultKeyBits, key.N.BitLen())
		assert.Contains(t, stderr.String(), "kid ")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signing.pem")
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"genkey", "-out", path}, nil, &stdout, &stderr))
		assert.Empty(t, stdout.String())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		_, err = keys.ParsePrivateKey(data)
		require.NoError(t, err)
	})
}

func TestCreateAdmin(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "auth.db")
	t.Setenv("DATABASE_DRIVER", repository.DriverSQLite)
	t.Setenv("DATABASE_DSN", dsn)

	ctx := context.Background()
	args := []string{"create-admin", "-email", "root@example.com", "-first-name", "Root"}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(ctx, args, strings.NewReader("supersecret\n"), &stdout, &stderr))
	assert.Contains(t, stdout.String(), "admin root@example.com created")

	stores, err := repository.Open(ctx, repository.DriverSQLite, dsn)
	require.NoError(t, err)
	user, err := stores.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	require.NoError(t, stores.Close())

	err = run(ctx, args, strings.NewReader("supersecret\n"), &stdout, &stderr)
	apiErr, ok := apierrors.From(err)
	require.True(t, ok, "duplicate email must surface as a client error")
	assert.Equal(t, "Email is already exists!", apiErr.Entries[0].Msg)
}

func TestCreateAdmin_Validation(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", repository.DriverSQLite)
	t.Setenv("DATABASE_DSN", ":memory:")

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"create-admin"}, strings.NewReader("supersecret\n"), &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"create-admin", "-email", "a@b.co"}, strings.NewReader("123\n"), &stdout, &stderr)
	assert.ErrorContains(t, err, "at least 6")
}
