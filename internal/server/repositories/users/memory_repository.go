package users

import (
	"context"
	"sync"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

// MemoryRepository keeps records in process memory with the same conflict
// and not-found semantics as the table-backed implementation. Used in tests
// and for throwaway local runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	creds map[string]models.UserCredential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]models.User),
		creds: make(map[string]models.UserCredential),
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.UserID]; ok {
		return common.ErrConflict
	}
	r.users[user.UserID] = *user
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryRepository) CreateCredential(ctx context.Context, cred *models.UserCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[cred.Username]; ok {
		return common.ErrConflict
	}
	r.creds[cred.Username] = *cred
	return nil
}

func (r *MemoryRepository) GetCredential(ctx context.Context, username string) (*models.UserCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &cred, nil
}

func (r *MemoryRepository) GetCredentialByUserID(ctx context.Context, userID string) (*models.UserCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cred := range r.creds {
		if cred.UserID == userID {
			c := cred
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) UpdateCredential(ctx context.Context, cred *models.UserCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[cred.Username]; !ok {
		return common.ErrNotFound
	}
	r.creds[cred.Username] = *cred
	return nil
}

func (r *MemoryRepository) DeleteCredential(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, username)
	return nil
}
