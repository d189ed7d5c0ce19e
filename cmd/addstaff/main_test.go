package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/prepaid-kiosk/internal/repository"
	"github.com/iliyamo/prepaid-kiosk/internal/utils"
)

type fakeUsers struct {
	created map[string]string // email -> role
	hashes  map[string]string
}

func (f *fakeUsers) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	if f.created == nil {
		f.created = map[string]string{}
		f.hashes = map[string]string{}
	}
	if _, ok := f.created[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.created[email] = role
	f.hashes[email] = hash
	return uint64(len(f.created)), nil
}

func openFake(u *fakeUsers) opener {
	return func() (userCreator, func() error, error) {
		return u, func() error { return nil }, nil
	}
}

func TestRun_Success(t *testing.T) {
	users := &fakeUsers{}
	stdout := new(bytes.Buffer)

	args := []string{"-email", "desk@example.org", "-password", "long secret", "-cost", "4"}
	err := run(args, new(bytes.Buffer), stdout, new(bytes.Buffer), openFake(users))
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "ADMIN desk@example.org created with ID 1")
	assert.Equal(t, "ADMIN", users.created["desk@example.org"])
	assert.True(t, utils.VerifyPassword(users.hashes["desk@example.org"], "long secret"))
}

func TestRun_DuplicateUser(t *testing.T) {
	users := &fakeUsers{}
	args := []string{"-email", "desk@example.org", "-password", "long secret", "-cost", "4"}

	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), openFake(users)))
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), openFake(users))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingEmail(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := run([]string{"-password", "long secret"}, new(bytes.Buffer), stdout, new(bytes.Buffer), openFake(&fakeUsers{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: email")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	users := &fakeUsers{}
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("typed secret\n")

	args := []string{"-email", "till@example.org", "-role", "user", "-cost", "4"}
	require.NoError(t, run(args, stdin, stdout, new(bytes.Buffer), openFake(users)))

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Equal(t, "USER", users.created["till@example.org"])
}

func TestRun_WeakPassword(t *testing.T) {
	stdin := bytes.NewBufferString("short\n")
	err := run([]string{"-email", "a@b.c"}, stdin, new(bytes.Buffer), new(bytes.Buffer), openFake(&fakeUsers{}))
	assert.ErrorIs(t, err, utils.ErrWeakPassword)
}

func TestRun_UnknownRole(t *testing.T) {
	err := run([]string{"-email", "a@b.c", "-password", "long secret", "-role", "OWNER"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), openFake(&fakeUsers{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestRun_OpenFails(t *testing.T) {
	failing := func() (userCreator, func() error, error) { return nil, nil, errors.New("refused") }
	err := run([]string{"-email", "a@b.c", "-password", "long secret"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run([]string{"-invalid"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), openFake(&fakeUsers{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined")
}
