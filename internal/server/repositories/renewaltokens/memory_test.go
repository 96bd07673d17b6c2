package renewaltokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

func newToken(clientID, subject string, hashed []byte) *models.RenewalToken {
	return &models.RenewalToken{
		ClientID:    clientID,
		Subject:     subject,
		DeviceName:  "laptop",
		HashedToken: hashed,
		Scopes:      models.NewScopeSet("read"),
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	hashed := []byte("hashed-token-value")
	require.NoError(t, repo.Create(ctx, newToken("web", "u1", hashed)))

	token, err := repo.Consume(ctx, "web", hashed)
	require.NoError(t, err)
	assert.Equal(t, "u1", token.Subject)

	_, err = repo.Consume(ctx, "web", hashed)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestConsumeScopedToClient(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	hashed := []byte("hashed-token-value")
	require.NoError(t, repo.Create(ctx, newToken("web", "u1", hashed)))

	// Same hash presented under another client id does not match.
	_, err := repo.Consume(ctx, "cli", hashed)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.Consume(ctx, "web", hashed)
	assert.NoError(t, err)
}

func TestListByUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newToken("web", "u1", []byte("h1"))))
	require.NoError(t, repo.Create(ctx, newToken("cli", "u1", []byte("h2"))))
	require.NoError(t, repo.Create(ctx, newToken("web", "u2", []byte("h3"))))

	tokens, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	require.NoError(t, repo.Delete(ctx, "web", []byte("h1")))
	tokens, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}
