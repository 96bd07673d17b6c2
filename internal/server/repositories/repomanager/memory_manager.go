package repomanager

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/clients"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/renewaltokens"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/users"
)

type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	clients       *clients.MemoryRepository
	renewalTokens *renewaltokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		clients:       clients.NewMemoryRepository(),
		renewalTokens: renewaltokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Bootstrap(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Clients() clients.Repository { return m.clients }

func (m *MemoryRepositoryManager) RenewalTokens() renewaltokens.Repository {
	return m.renewalTokens
}
