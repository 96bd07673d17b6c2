package repomanager

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/clients"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/dynamo"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/renewaltokens"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/users"
)

type DynamoRepositoryManager struct {
	client *dynamo.Client

	// ensureTable creates the table on Bootstrap. Enabled for local runs
	// only; production tables are provisioned out of band.
	ensureTable bool
}

func NewDynamoRepositoryManager(client *dynamo.Client, ensureTable bool) *DynamoRepositoryManager {
	return &DynamoRepositoryManager{client: client, ensureTable: ensureTable}
}

func (m *DynamoRepositoryManager) Bootstrap(ctx context.Context) error {
	if !m.ensureTable {
		return nil
	}
	return m.client.EnsureTable(ctx)
}

func (m *DynamoRepositoryManager) Users() users.Repository {
	return users.NewDynamoRepository(m.client)
}

func (m *DynamoRepositoryManager) Clients() clients.Repository {
	return clients.NewDynamoRepository(m.client)
}

func (m *DynamoRepositoryManager) RenewalTokens() renewaltokens.Repository {
	return renewaltokens.NewDynamoRepository(m.client)
}
