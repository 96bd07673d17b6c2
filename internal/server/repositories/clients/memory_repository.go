package clients

import (
	"context"
	"sync"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	clients map[string]models.Client
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{clients: make(map[string]models.Client)}
}

func (r *MemoryRepository) Create(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ClientID]; ok {
		return common.ErrConflict
	}
	r.clients[client.ClientID] = *client
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, clientID string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[clientID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &client, nil
}

func (r *MemoryRepository) Update(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ClientID]; !ok {
		return common.ErrNotFound
	}
	r.clients[client.ClientID] = *client
	return nil
}
