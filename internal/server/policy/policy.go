// Package policy decides what an authenticated caller may do: which grant
// flows a client may run, which scopes a token may carry, which clients may
// be used from which network origins, and who may manage which accounts.
// Policy functions never touch storage or credentials; they judge facts the
// caller already established.
package policy

import (
	"net"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

// CheckGrant verifies the client is enabled for the requested flow.
func CheckGrant(client *models.Client, grant models.GrantType) error {
	if !client.Grants.Contains(grant) {
		return common.ErrGrantNotAllowed
	}
	return nil
}

// GrantScopes computes the scopes a token may carry: the intersection of
// what was requested, what the client is entitled to, and what the
// principal is entitled to. Requesting nothing means requesting the full
// entitlement. An explicit request that intersects down to nothing is
// refused rather than silently granted empty.
func GrantScopes(requested, client, principal models.ScopeSet) (models.ScopeSet, error) {
	entitled := client.Intersect(principal)
	if requested.IsEmpty() {
		return entitled, nil
	}
	granted := requested.Intersect(entitled)
	if granted.IsEmpty() {
		return nil, common.ErrScopeDenied
	}
	return granted, nil
}

// CheckOrigin enforces the loopback restriction. The check runs before any
// credential verification so a remote caller learns nothing about a
// restricted client's secrets.
func CheckOrigin(client *models.Client, origin net.IP) error {
	if !client.Loopback {
		return nil
	}
	if origin == nil || !origin.IsLoopback() {
		return common.ErrLoopbackRestricted
	}
	return nil
}

// CheckManage gates account-management operations: a superuser manages
// anyone, everyone else manages only themselves.
func CheckManage(actorUserID string, actorScopes models.ScopeSet, targetUserID string) error {
	if actorScopes.Contains(models.ScopeSuperuser) {
		return nil
	}
	if actorUserID != "" && actorUserID == targetUserID {
		return nil
	}
	return common.ErrPermissionDenied
}

// CheckSuperuser gates operations reserved for superusers, such as client
// management and scope changes.
func CheckSuperuser(actorScopes models.ScopeSet) error {
	if !actorScopes.Contains(models.ScopeSuperuser) {
		return common.ErrPermissionDenied
	}
	return nil
}
