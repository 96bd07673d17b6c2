// Package clients persists registered client records.
package clients

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrConflict when the client id is taken.
	Create(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, clientID string) (*models.Client, error)
	// Update overwrites an existing record, failing with common.ErrNotFound
	// when it does not exist.
	Update(ctx context.Context, client *models.Client) error
}
