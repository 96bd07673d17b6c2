package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/credential"
	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/repomanager"
)

const (
	// BootstrapClientID is the loopback-restricted client seeded on first
	// run. It exists so an operator on the host itself can obtain the
	// first superuser token.
	BootstrapClientID = "bootstrap"

	seedAdminUsername = "admin"
	seedAdminFullName = "Administrator"
)

// SeedResult reports what the seeding pass created. AdminPassword is set
// only when the admin account was created in this run; it is shown once
// and never stored in recoverable form.
type SeedResult struct {
	CreatedAdmin  bool
	CreatedClient bool
	AdminPassword string
}

// Seed ensures the bootstrap client and the initial superuser exist.
// Rerunning against a populated store is a no-op. A generated admin
// password stays valid until the operator rotates it.
func Seed(ctx context.Context, repos repomanager.RepositoryManager, codec *credential.Codec, logger logging.Logger) (*SeedResult, error) {
	result := &SeedResult{}

	client := &models.Client{
		ClientID:   BootstrapClientID,
		ClientName: "Bootstrap",
		Scopes:     models.NewScopeSet(models.ScopeSuperuser),
		Grants:     models.NewGrantSet(models.GrantPassword, models.GrantRefreshToken),
		Loopback:   true,
	}
	err := repos.Clients().Create(ctx, client)
	switch {
	case err == nil:
		result.CreatedClient = true
		logger.Info(ctx, "seeded bootstrap client", "client_id", BootstrapClientID)
	case errors.Is(err, common.ErrConflict):
	default:
		return nil, err
	}

	password := common.MakeOpaqueToken()
	record, err := codec.Derive(ctx, password)
	if err != nil {
		return nil, err
	}

	cred := &models.UserCredential{
		Username:   seedAdminUsername,
		UserID:     uuid.NewString(),
		Credential: record,
		Scopes:     models.NewScopeSet(models.ScopeSuperuser),
	}
	err = repos.Users().CreateCredential(ctx, cred)
	switch {
	case err == nil:
		result.CreatedAdmin = true
		result.AdminPassword = password
	case errors.Is(err, common.ErrConflict):
		return result, nil
	default:
		return nil, err
	}

	user := &models.User{UserID: cred.UserID, FullName: seedAdminFullName}
	if err := repos.Users().CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "seeded admin user", "user_id", cred.UserID)
	return result, nil
}
