package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

func superActor() Actor {
	return Actor{UserID: "root", Scopes: models.NewScopeSet(models.ScopeSuperuser)}
}

func selfActor(userID string) Actor {
	return Actor{UserID: userID, Scopes: models.NewScopeSet("read")}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, "alice", "p@ss1", "Alice")
	require.NoError(t, err)

	_, err = env.users.Register(ctx, "alice", "other", "Other Alice")
	assert.ErrorIs(t, err, common.ErrUsernameConflict)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, "", "p@ss1", "Alice")
	assert.Error(t, err)
	_, err = env.users.Register(ctx, "alice", "", "Alice")
	assert.Error(t, err)
}

func TestGetUserPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "alice", "p@ss1", nil)

	got, err := env.users.GetUser(ctx, selfActor(user.UserID), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", got.FullName)
	assert.Equal(t, "alice", got.Username)

	_, err = env.users.GetUser(ctx, superActor(), user.UserID)
	assert.NoError(t, err)

	_, err = env.users.GetUser(ctx, selfActor("someone-else"), user.UserID)
	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestGetUserReflectsCredentialRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "alice", "p@ss1", models.NewScopeSet("read"))

	// The id-keyed read resolves through the credential record, so a
	// rename and a scope change both show up under the same user id.
	require.NoError(t, env.users.ChangeUsername(ctx, selfActor(user.UserID), "alice", "alice2"))
	require.NoError(t, env.users.UpdateScopes(ctx, superActor(), "alice2", models.NewScopeSet("read", "write")))

	got, err := env.users.GetUser(ctx, selfActor(user.UserID), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.True(t, got.Scopes.Contains("write"))

	byName, err := env.users.GetUserByUsername(ctx, selfActor(user.UserID), "alice2")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, byName.UserID)
}

func TestChangeUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "alice", "p@ss1", nil)
	require.NoError(t, env.users.ChangeUsername(ctx, selfActor(user.UserID), "alice", "alice2"))

	// Old name is free, new name resolves to the same account.
	_, err := env.repos.Users().GetCredential(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	cred, err := env.repos.Users().GetCredential(ctx, "alice2")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, cred.UserID)
}

func TestChangeUsernameTakenKeepsOld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "alice", "p@ss1", nil)
	env.seedUser(t, "bob", "p@ss2", nil)

	err := env.users.ChangeUsername(ctx, selfActor(user.UserID), "alice", "bob")
	assert.ErrorIs(t, err, common.ErrUsernameConflict)

	// The rename did not touch either record.
	cred, err := env.repos.Users().GetCredential(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, cred.UserID)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedClient(t, webClient(), "")

	user := env.seedUser(t, "alice", "p@ss1", models.NewScopeSet("read"))
	require.NoError(t, env.users.ChangePassword(ctx, selfActor(user.UserID), "alice", "newpass"))

	_, err := env.grants.Token(ctx, &TokenRequest{
		GrantType: "password",
		ClientID:  "web",
		Username:  "alice",
		Password:  "p@ss1",
		Origin:    remote,
	})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.grants.Token(ctx, &TokenRequest{
		GrantType: "password",
		ClientID:  "web",
		Username:  "alice",
		Password:  "newpass",
		Origin:    remote,
	})
	assert.NoError(t, err)
}

func TestUpdateScopesRequiresSuperuser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "alice", "p@ss1", nil)

	err := env.users.UpdateScopes(ctx, selfActor(user.UserID), "alice", models.NewScopeSet("read"))
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	require.NoError(t, env.users.UpdateScopes(ctx, superActor(), "alice", models.NewScopeSet("read")))
	cred, err := env.repos.Users().GetCredential(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, cred.Scopes.Contains("read"))
}

func TestSessionsListAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedClient(t, webClient(), "")

	user := env.seedUser(t, "alice", "p@ss1", models.NewScopeSet("read"))

	resp, err := env.grants.Token(ctx, &TokenRequest{
		GrantType:  "password",
		ClientID:   "web",
		Username:   "alice",
		Password:   "p@ss1",
		DeviceName: "laptop",
		Origin:     remote,
	})
	require.NoError(t, err)

	sessions, err := env.users.Sessions(ctx, selfActor(user.UserID), user.UserID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "web", sessions[0].ClientID)
	assert.Equal(t, "laptop", sessions[0].DeviceName)

	require.NoError(t, env.users.RevokeSession(ctx, selfActor(user.UserID), user.UserID, sessions[0].ClientID, sessions[0].TokenKey))

	sessions, err = env.users.Sessions(ctx, selfActor(user.UserID), user.UserID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// The revoked session's renewal token no longer redeems.
	_, err = env.grants.Token(ctx, &TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web",
		RefreshToken: resp.RefreshToken,
		Origin:       remote,
	})
	assert.ErrorIs(t, err, common.ErrInvalidGrant)
}

func TestRevokeSessionForeignUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedClient(t, webClient(), "")

	alice := env.seedUser(t, "alice", "p@ss1", models.NewScopeSet("read"))
	bob := env.seedUser(t, "bob", "p@ss2", models.NewScopeSet("read"))

	_, err := env.grants.Token(ctx, &TokenRequest{
		GrantType: "password",
		ClientID:  "web",
		Username:  "alice",
		Password:  "p@ss1",
		Origin:    remote,
	})
	require.NoError(t, err)

	sessions, err := env.users.Sessions(ctx, superActor(), alice.UserID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	// Bob cannot revoke Alice's session, not even with a valid key.
	err = env.users.RevokeSession(ctx, selfActor(bob.UserID), alice.UserID, sessions[0].ClientID, sessions[0].TokenKey)
	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}
