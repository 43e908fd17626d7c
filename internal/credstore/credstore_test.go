package credstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserThenGetUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.AddUser(ctx, "alice", "s3cret", "Administrator,Viewer"))

	data, err := store.GetUser(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "alice", data.Username)
	assert.Equal(t, []string{"Administrator", "Viewer"}, data.Roles)

	wrong, err := store.GetUser(ctx, "alice", "nope")
	require.NoError(t, err)
	assert.Nil(t, wrong)

	unknown, err := store.GetUser(ctx, "mallory", "s3cret")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestAddUserDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.AddUser(ctx, "alice", "first", "User"))
	err := store.AddUser(ctx, "alice", "second", "Administrator")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// The stored record is unchanged after the rejected insert.
	data, err := store.GetUser(ctx, "alice", "first")
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, []string{"User"}, data.Roles)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	assert.ErrorIs(t, store.DeleteUser(ctx, "ghost"), ErrUnknownUser)

	require.NoError(t, store.AddUser(ctx, "bob", "pw", "User"))
	require.NoError(t, store.DeleteUser(ctx, "bob"))

	exists, err := store.HasUser(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	assert.ErrorIs(t, store.ChangePassword(ctx, "ghost", "pw"), ErrUnknownUser)

	require.NoError(t, store.AddUser(ctx, "bob", "pw1", "User"))

	ok, err := store.VerifyPassword(ctx, "bob", "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.ChangePassword(ctx, "bob", "pw2"))

	ok, err = store.VerifyPassword(ctx, "bob", "pw1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.VerifyPassword(ctx, "bob", "pw2")
	require.NoError(t, err)
	assert.True(t, ok)

	// Login lookup agrees with administrative verification.
	data, err := store.GetUser(ctx, "bob", "pw2")
	require.NoError(t, err)
	require.NotNil(t, data)
	old, err := store.GetUser(ctx, "bob", "pw1")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestVerifyPasswordUnknownUser(t *testing.T) {
	store := NewMemStore()
	_, err := store.VerifyPassword(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.AddUser(ctx, "alice", "pw", "Administrator"))
	require.NoError(t, store.AddUser(ctx, "bob", "pw", "User"))

	creds, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	for _, c := range creds {
		assert.NotEmpty(t, c.PasswordHash)
		assert.NotContains(t, string(c.PasswordHash), "pw")
	}
}

func TestNormalizeUsername(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.AddUser(ctx, "  josé ", "pw", "User"))

	// NFC vs NFD spellings of the same name hit the same record.
	exists, err := store.HasUser(ctx, "jose\u0301")
	require.NoError(t, err)
	assert.True(t, exists)

	err = store.AddUser(ctx, "jose\u0301", "pw", "User")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSplitRoles(t *testing.T) {
	assert.Nil(t, SplitRoles(""))
	assert.Equal(t, []string{"User"}, SplitRoles("User"))
	assert.Equal(t, []string{"Administrator", "Viewer"}, SplitRoles("Administrator, Viewer"))
}

func TestHashPasswordNeverPlaintext(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "hunter2")
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))

	// Per-record salt: hashing the same password twice differs.
	again, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}
