package policy

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

func TestCheckGrant(t *testing.T) {
	client := &models.Client{
		ClientID: "web",
		Grants:   models.NewGrantSet(models.GrantPassword, models.GrantRefreshToken),
	}

	assert.NoError(t, CheckGrant(client, models.GrantPassword))
	assert.ErrorIs(t, CheckGrant(client, models.GrantClientCredentials), common.ErrGrantNotAllowed)
}

func TestGrantScopesEmptyRequestGetsFullEntitlement(t *testing.T) {
	granted, err := GrantScopes(
		models.NewScopeSet(),
		models.NewScopeSet("read", "write"),
		models.NewScopeSet("read", "write", "superuser"),
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"read", "write"}, granted.Slice())
}

func TestGrantScopesNarrowedByPrincipal(t *testing.T) {
	// A client entitled to superuser does not confer it on a plain user.
	granted, err := GrantScopes(
		models.NewScopeSet(),
		models.NewScopeSet("superuser", "read"),
		models.NewScopeSet("read"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, granted.Slice())
}

func TestGrantScopesExplicitRequestNarrows(t *testing.T) {
	granted, err := GrantScopes(
		models.NewScopeSet("read"),
		models.NewScopeSet("read", "write"),
		models.NewScopeSet("read", "write"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, granted.Slice())
}

func TestGrantScopesDeniedWhenNothingRemains(t *testing.T) {
	_, err := GrantScopes(
		models.NewScopeSet("admin"),
		models.NewScopeSet("read"),
		models.NewScopeSet("read"),
	)
	assert.ErrorIs(t, err, common.ErrScopeDenied)
}

func TestCheckOrigin(t *testing.T) {
	open := &models.Client{ClientID: "web"}
	restricted := &models.Client{ClientID: "bootstrap", Loopback: true}

	remote := net.ParseIP("203.0.113.7")
	local4 := net.ParseIP("127.0.0.1")
	local6 := net.ParseIP("::1")

	assert.NoError(t, CheckOrigin(open, remote))
	assert.NoError(t, CheckOrigin(restricted, local4))
	assert.NoError(t, CheckOrigin(restricted, local6))
	assert.ErrorIs(t, CheckOrigin(restricted, remote), common.ErrLoopbackRestricted)
	assert.ErrorIs(t, CheckOrigin(restricted, nil), common.ErrLoopbackRestricted)
}

func TestCheckManage(t *testing.T) {
	super := models.NewScopeSet(models.ScopeSuperuser)
	plain := models.NewScopeSet("read")

	assert.NoError(t, CheckManage("admin", super, "u1"))
	assert.NoError(t, CheckManage("u1", plain, "u1"))
	assert.ErrorIs(t, CheckManage("u1", plain, "u2"), common.ErrPermissionDenied)
	assert.ErrorIs(t, CheckManage("", plain, "u2"), common.ErrPermissionDenied)
}

func TestCheckSuperuser(t *testing.T) {
	assert.NoError(t, CheckSuperuser(models.NewScopeSet(models.ScopeSuperuser)))
	assert.ErrorIs(t, CheckSuperuser(models.NewScopeSet("read")), common.ErrPermissionDenied)
}
