// Package users persists identity records and the username-keyed
// credential records that point at them.
package users

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

// Repository is the storage contract for users and their credentials.
// Create methods fail with common.ErrConflict when the key already exists;
// lookups fail with common.ErrNotFound when it does not.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateCredential claims a username. The conditional write is the
	// uniqueness guarantee; there is no separate existence check.
	CreateCredential(ctx context.Context, cred *models.UserCredential) error
	GetCredential(ctx context.Context, username string) (*models.UserCredential, error)

	// GetCredentialByUserID resolves the credential record through the
	// user_id index.
	GetCredentialByUserID(ctx context.Context, userID string) (*models.UserCredential, error)

	// UpdateCredential overwrites an existing credential record in place.
	// The username must not change; renames go through CreateCredential
	// plus DeleteCredential.
	UpdateCredential(ctx context.Context, cred *models.UserCredential) error
	DeleteCredential(ctx context.Context, username string) error
}
