// Package repomanager composes the entity repositories over a shared
// backend so the service layer depends on one constructor instead of three.
package repomanager

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/clients"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/renewaltokens"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/users"
)

type RepositoryManager interface {
	// Bootstrap prepares the backing store for first use.
	Bootstrap(ctx context.Context) error
	Users() users.Repository
	Clients() clients.Repository
	RenewalTokens() renewaltokens.Repository
}
