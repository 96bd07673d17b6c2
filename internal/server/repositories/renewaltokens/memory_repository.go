package renewaltokens

import (
	"context"
	"sync"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RenewalToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.RenewalToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.RenewalToken) error {
	key := models.RenewalTokenPK(token.ClientID, token.HashedToken)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[key]; ok {
		return common.ErrConflict
	}
	r.tokens[key] = *token
	return nil
}

func (r *MemoryRepository) Consume(ctx context.Context, clientID string, hashedToken []byte) (*models.RenewalToken, error) {
	key := models.RenewalTokenPK(clientID, hashedToken)

	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(r.tokens, key)
	return &token, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.RenewalToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tokens []models.RenewalToken
	for _, token := range r.tokens {
		if token.Subject == userID {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, clientID string, hashedToken []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, models.RenewalTokenPK(clientID, hashedToken))
	return nil
}
