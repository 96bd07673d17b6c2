// Package services implements the application operations on top of the
// repositories: the token grant flows, account management, client
// management, and first-run seeding.
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/credential"
	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/auth"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/policy"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/repomanager"
)

const defaultDeviceName = "unknown"

// TokenRequest carries one token-endpoint call. Origin is the caller's
// network address, used for the loopback restriction.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	Scope        string
	DeviceName   string
	Origin       net.IP
}

// TokenResponse is the issued token pair. RefreshToken is empty for flows
// that do not produce one.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	RefreshToken string
	Scope        string
}

type GrantService struct {
	repos      repomanager.RepositoryManager
	codec      *credential.Codec
	signer     *auth.Signer
	logger     logging.Logger
	accessTTL  time.Duration
	renewalTTL time.Duration
}

func NewGrantService(repos repomanager.RepositoryManager, codec *credential.Codec, signer *auth.Signer, logger logging.Logger, accessTTL, renewalTTL time.Duration) *GrantService {
	return &GrantService{
		repos:      repos,
		codec:      codec,
		signer:     signer,
		logger:     logger,
		accessTTL:  accessTTL,
		renewalTTL: renewalTTL,
	}
}

// Token runs one grant flow end to end. Failures that stem from bad
// credentials all collapse into ErrInvalidCredentials so a caller cannot
// probe which part of the check failed.
func (s *GrantService) Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	grant, err := models.ParseGrantType(req.GrantType)
	if err != nil {
		return nil, common.ErrUnsupportedGrant
	}

	client, err := s.authenticateClient(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckGrant(client, grant); err != nil {
		return nil, err
	}

	switch grant {
	case models.GrantPassword:
		return s.passwordGrant(ctx, client, req)
	case models.GrantClientCredentials:
		return s.clientCredentialsGrant(ctx, client, req)
	case models.GrantRefreshToken:
		return s.refreshTokenGrant(ctx, client, req)
	}
	return nil, common.ErrUnsupportedGrant
}

// authenticateClient loads the client, applies the origin restriction, and
// verifies the secret when one is registered. The origin check runs first:
// a remote caller of a loopback client is refused before any secret is
// examined.
func (s *GrantService) authenticateClient(ctx context.Context, req *TokenRequest) (*models.Client, error) {
	client, err := s.repos.Clients().Get(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := policy.CheckOrigin(client, req.Origin); err != nil {
		return nil, err
	}

	if client.Credential != nil {
		if req.ClientSecret == "" {
			return nil, common.ErrInvalidCredentials
		}
		if !s.codec.Verify(ctx, req.ClientSecret, client.Credential) {
			return nil, common.ErrInvalidCredentials
		}
	} else if req.ClientSecret != "" {
		return nil, common.ErrInvalidCredentials
	}

	return client, nil
}

func (s *GrantService) passwordGrant(ctx context.Context, client *models.Client, req *TokenRequest) (*TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	cred, err := s.repos.Users().GetCredential(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.codec.Verify(ctx, req.Password, cred.Credential) {
		return nil, common.ErrInvalidCredentials
	}

	granted, err := policy.GrantScopes(models.ParseScopes(req.Scope), client.Scopes, cred.Scopes)
	if err != nil {
		return nil, err
	}

	renewal, err := s.issueRenewalToken(ctx, client.ClientID, cred.UserID, req.DeviceName, granted)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueAccess(cred.UserID, client.ClientID, granted)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = renewal

	s.logger.Info(ctx, "password grant issued", "client_id", client.ClientID, "user_id", cred.UserID)
	return resp, nil
}

func (s *GrantService) clientCredentialsGrant(ctx context.Context, client *models.Client, req *TokenRequest) (*TokenResponse, error) {
	// Only confidential clients can act as their own principal.
	if client.Credential == nil {
		return nil, common.ErrInvalidCredentials
	}

	granted, err := policy.GrantScopes(models.ParseScopes(req.Scope), client.Scopes, client.Scopes)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueAccess("", client.ClientID, granted)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "client credentials grant issued", "client_id", client.ClientID)
	return resp, nil
}

func (s *GrantService) refreshTokenGrant(ctx context.Context, client *models.Client, req *TokenRequest) (*TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, common.ErrInvalidGrant
	}

	hashed := s.codec.TokenDigest(client.ClientID, req.RefreshToken)
	stored, err := s.repos.RenewalTokens().Consume(ctx, client.ClientID, hashed)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidGrant
		}
		return nil, err
	}

	// The record is already gone, so an expired token costs the caller its
	// session rather than lingering as a replayable credential.
	if stored.Expired(time.Now()) {
		return nil, common.ErrInvalidGrant
	}

	// The recorded scopes bound the new pair; a refresh can narrow a
	// session but never widen it.
	granted, err := policy.GrantScopes(models.ParseScopes(req.Scope), client.Scopes, stored.Scopes)
	if err != nil {
		return nil, err
	}

	// Rotation is delete-then-insert. If the insert fails the session is
	// dropped entirely, which errs on the side of the single-use
	// guarantee. The rotated token records the granted set, so narrowing
	// a session on refresh sticks for every refresh after it.
	device := req.DeviceName
	if device == "" {
		device = stored.DeviceName
	}
	renewal, err := s.issueRenewalToken(ctx, client.ClientID, stored.Subject, device, granted)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueAccess(stored.Subject, client.ClientID, granted)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = renewal

	s.logger.Info(ctx, "refresh grant issued", "client_id", client.ClientID, "user_id", stored.Subject)
	return resp, nil
}

func (s *GrantService) issueAccess(subject, clientID string, scopes models.ScopeSet) (*TokenResponse, error) {
	access, err := s.signer.Issue(subject, clientID, scopes, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return &TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		Scope:       scopes.String(),
	}, nil
}

func (s *GrantService) issueRenewalToken(ctx context.Context, clientID, subject, device string, scopes models.ScopeSet) (string, error) {
	if device == "" {
		device = defaultDeviceName
	}

	plaintext := common.MakeOpaqueToken()
	token := &models.RenewalToken{
		ClientID:    clientID,
		Subject:     subject,
		DeviceName:  device,
		HashedToken: s.codec.TokenDigest(clientID, plaintext),
		Scopes:      scopes,
		Expiry:      time.Now().Add(s.renewalTTL),
	}
	if err := s.repos.RenewalTokens().Create(ctx, token); err != nil {
		return "", err
	}
	return plaintext, nil
}
