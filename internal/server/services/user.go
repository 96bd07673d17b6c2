package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/credential"
	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/policy"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/repomanager"
)

// Actor identifies the authenticated caller of a management operation.
type Actor struct {
	UserID string
	Scopes models.ScopeSet
}

// UserView joins a user record with its credential record: the identity
// fields plus the username and scopes the credential carries.
type UserView struct {
	UserID   string
	Username string
	FullName string
	Scopes   models.ScopeSet
}

// Session describes one live renewal token of a user.
type Session struct {
	ClientID   string
	DeviceName string
	Expiry     time.Time
	// TokenKey identifies the session for deletion without exposing the
	// token itself.
	TokenKey []byte
}

type UserService struct {
	repos  repomanager.RepositoryManager
	codec  *credential.Codec
	logger logging.Logger
}

func NewUserService(repos repomanager.RepositoryManager, codec *credential.Codec, logger logging.Logger) *UserService {
	return &UserService{repos: repos, codec: codec, logger: logger}
}

// Register creates a user and claims the username. Registration is open;
// new accounts carry no scopes until a superuser assigns some.
func (s *UserService) Register(ctx context.Context, username, password, fullName string) (*models.User, error) {
	if username == "" || password == "" || fullName == "" {
		return nil, fmt.Errorf("%w: missing registration fields", common.ErrInvalidCredentials)
	}

	record, err := s.codec.Derive(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:   uuid.NewString(),
		FullName: fullName,
	}
	cred := &models.UserCredential{
		Username:   username,
		UserID:     user.UserID,
		Credential: record,
	}

	// The username record goes first since it is the contended key. A
	// half-registered user record without a credential is unreachable and
	// harmless.
	if err := s.repos.Users().CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrUsernameConflict
		}
		return nil, err
	}
	if err := s.repos.Users().CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.UserID)
	return user, nil
}

// GetUser reads a user by id. The username and scopes live on the
// credential record, resolved back through the user_id index.
func (s *UserService) GetUser(ctx context.Context, actor Actor, userID string) (*UserView, error) {
	if err := policy.CheckManage(actor.UserID, actor.Scopes, userID); err != nil {
		return nil, err
	}
	user, err := s.repos.Users().GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cred, err := s.repos.Users().GetCredentialByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOfUser(user, cred), nil
}

// GetUserByUsername resolves a username to the same view.
func (s *UserService) GetUserByUsername(ctx context.Context, actor Actor, username string) (*UserView, error) {
	cred, err := s.repos.Users().GetCredential(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckManage(actor.UserID, actor.Scopes, cred.UserID); err != nil {
		return nil, err
	}
	user, err := s.repos.Users().GetUser(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	return viewOfUser(user, cred), nil
}

func viewOfUser(user *models.User, cred *models.UserCredential) *UserView {
	return &UserView{
		UserID:   user.UserID,
		Username: cred.Username,
		FullName: user.FullName,
		Scopes:   cred.Scopes,
	}
}

// ChangeUsername moves a credential record to a new username. The new name
// is claimed first; only after that succeeds is the old record dropped, so
// a failed rename never leaves the account without a login.
func (s *UserService) ChangeUsername(ctx context.Context, actor Actor, oldUsername, newUsername string) error {
	cred, err := s.repos.Users().GetCredential(ctx, oldUsername)
	if err != nil {
		return err
	}
	if err := policy.CheckManage(actor.UserID, actor.Scopes, cred.UserID); err != nil {
		return err
	}

	moved := *cred
	moved.Username = newUsername
	if err := s.repos.Users().CreateCredential(ctx, &moved); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.ErrUsernameConflict
		}
		return err
	}
	if err := s.repos.Users().DeleteCredential(ctx, oldUsername); err != nil {
		s.logger.Warn(ctx, "stale credential record left after rename", "user_id", cred.UserID, "error", err)
		return err
	}

	s.logger.Info(ctx, "username changed", "user_id", cred.UserID)
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor Actor, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: empty password", common.ErrInvalidCredentials)
	}

	cred, err := s.repos.Users().GetCredential(ctx, username)
	if err != nil {
		return err
	}
	if err := policy.CheckManage(actor.UserID, actor.Scopes, cred.UserID); err != nil {
		return err
	}

	record, err := s.codec.Derive(ctx, newPassword)
	if err != nil {
		return err
	}
	cred.Credential = record
	if err := s.repos.Users().UpdateCredential(ctx, cred); err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "user_id", cred.UserID)
	return nil
}

// UpdateScopes replaces a user's scope set. Superuser only.
func (s *UserService) UpdateScopes(ctx context.Context, actor Actor, username string, scopes models.ScopeSet) error {
	if err := policy.CheckSuperuser(actor.Scopes); err != nil {
		return err
	}

	cred, err := s.repos.Users().GetCredential(ctx, username)
	if err != nil {
		return err
	}
	cred.Scopes = scopes
	if err := s.repos.Users().UpdateCredential(ctx, cred); err != nil {
		return err
	}

	s.logger.Info(ctx, "scopes updated", "user_id", cred.UserID)
	return nil
}

// Sessions lists a user's live renewal tokens. Expired records that have
// not been purged yet are filtered out.
func (s *UserService) Sessions(ctx context.Context, actor Actor, userID string) ([]Session, error) {
	if err := policy.CheckManage(actor.UserID, actor.Scopes, userID); err != nil {
		return nil, err
	}

	tokens, err := s.repos.RenewalTokens().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sessions := make([]Session, 0, len(tokens))
	for _, token := range tokens {
		if token.Expired(now) {
			continue
		}
		sessions = append(sessions, Session{
			ClientID:   token.ClientID,
			DeviceName: token.DeviceName,
			Expiry:     token.Expiry,
			TokenKey:   token.HashedToken,
		})
	}
	return sessions, nil
}

// RevokeSession deletes one renewal token, ending the session it backs.
// The token must belong to the named user.
func (s *UserService) RevokeSession(ctx context.Context, actor Actor, userID, clientID string, tokenKey []byte) error {
	if err := policy.CheckManage(actor.UserID, actor.Scopes, userID); err != nil {
		return err
	}

	tokens, err := s.repos.RenewalTokens().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if token.ClientID == clientID && bytes.Equal(token.HashedToken, tokenKey) {
			return s.repos.RenewalTokens().Delete(ctx, clientID, tokenKey)
		}
	}
	return common.ErrNotFound
}
