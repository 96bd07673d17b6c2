package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/credential"
	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/policy"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/repomanager"
)

// ClientView is the externally visible form of a client record. The secret
// never leaves the service once registered.
type ClientView struct {
	ClientID     string
	ClientName   string
	Confidential bool
	Scopes       []string
	Grants       []string
	Loopback     bool
}

func viewOf(client *models.Client) *ClientView {
	return &ClientView{
		ClientID:     client.ClientID,
		ClientName:   client.ClientName,
		Confidential: client.Credential != nil,
		Scopes:       client.Scopes.Slice(),
		Grants:       client.Grants.Slice(),
		Loopback:     client.Loopback,
	}
}

type ClientService struct {
	repos  repomanager.RepositoryManager
	codec  *credential.Codec
	logger logging.Logger
}

func NewClientService(repos repomanager.RepositoryManager, codec *credential.Codec, logger logging.Logger) *ClientService {
	return &ClientService{repos: repos, codec: codec, logger: logger}
}

// Create registers a client under a freshly generated id. A confidential
// client gets a generated secret, returned exactly once; only its hash is
// stored. Clients created through the API are never loopback restricted;
// that flag is reserved for the seeded bootstrap client.
func (s *ClientService) Create(ctx context.Context, actor Actor, clientName string, confidential bool, scopes models.ScopeSet, grants models.GrantSet) (*ClientView, string, error) {
	if err := policy.CheckSuperuser(actor.Scopes); err != nil {
		return nil, "", err
	}
	if clientName == "" {
		return nil, "", fmt.Errorf("%w: missing client name", common.ErrInvalidCredentials)
	}

	client := &models.Client{
		ClientID:   uuid.NewString(),
		ClientName: clientName,
		Scopes:     scopes,
		Grants:     grants,
		Loopback:   false,
	}

	var secret string
	if confidential {
		secret = common.MakeOpaqueToken()
		record, err := s.codec.Derive(ctx, secret)
		if err != nil {
			return nil, "", err
		}
		client.Credential = record
	}

	if err := s.repos.Clients().Create(ctx, client); err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "client registered", "client_id", client.ClientID)
	return viewOf(client), secret, nil
}

func (s *ClientService) Get(ctx context.Context, actor Actor, clientID string) (*ClientView, error) {
	if err := policy.CheckSuperuser(actor.Scopes); err != nil {
		return nil, err
	}
	client, err := s.repos.Clients().Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return viewOf(client), nil
}

// Update replaces a client's name, scopes, and grants. The loopback flag
// and the secret are not updatable through this path.
func (s *ClientService) Update(ctx context.Context, actor Actor, clientID, clientName string, scopes models.ScopeSet, grants models.GrantSet) (*ClientView, error) {
	if err := policy.CheckSuperuser(actor.Scopes); err != nil {
		return nil, err
	}

	client, err := s.repos.Clients().Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if clientName != "" {
		client.ClientName = clientName
	}
	client.Scopes = scopes
	client.Grants = grants

	if err := s.repos.Clients().Update(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "client updated", "client_id", clientID)
	return viewOf(client), nil
}
