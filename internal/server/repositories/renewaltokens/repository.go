// Package renewaltokens persists the single-use long-lived tokens that back
// the refresh flow. Records are keyed by the hashed token value so a table
// dump never yields usable tokens.
package renewaltokens

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.RenewalToken) error

	// Consume atomically removes the record and returns it. A second
	// Consume of the same token fails with common.ErrNotFound, which is
	// what makes the tokens single use even under concurrent redemption.
	Consume(ctx context.Context, clientID string, hashedToken []byte) (*models.RenewalToken, error)

	// ListByUser returns the live sessions of a user through the user_id
	// index.
	ListByUser(ctx context.Context, userID string) ([]models.RenewalToken, error)

	Delete(ctx context.Context, clientID string, hashedToken []byte) error
}
