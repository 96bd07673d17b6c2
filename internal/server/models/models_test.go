package models

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserItem_RoundTrip(t *testing.T) {
	u := User{UserID: "user-1", FullName: "Alice Adams"}

	item, err := u.Item()
	require.NoError(t, err)

	pk, ok := item["pk"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "U#user-1", pk.Value)

	back, err := UserFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestUserFromItem_WrongPrefix(t *testing.T) {
	item := map[string]types.AttributeValue{
		"pk":        &types.AttributeValueMemberS{Value: "C#user-1"},
		"full_name": &types.AttributeValueMemberS{Value: "x"},
	}
	_, err := UserFromItem(item)
	require.Error(t, err)
}

func TestUserCredentialItem_RoundTrip(t *testing.T) {
	c := UserCredential{
		Username:   "alice",
		UserID:     "user-1",
		Credential: []byte{231, 55, 22, 45, 22},
		Scopes:     NewScopeSet("read", ScopeSuperuser),
	}

	item, err := c.Item()
	require.NoError(t, err)

	pk := item["pk"].(*types.AttributeValueMemberS)
	assert.Equal(t, "UN#alice", pk.Value)

	// user_id is a plain attribute so the reverse-lookup index can key on it
	uid, ok := item["user_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "user-1", uid.Value)

	back, err := UserCredentialFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestClientItem_RoundTrip(t *testing.T) {
	c := Client{
		ClientID:   "cli-1",
		ClientName: "My App",
		Credential: []byte{23, 65, 22},
		Scopes:     NewScopeSet("read"),
		Grants:     NewGrantSet(GrantPassword, GrantRefreshToken),
		Loopback:   true,
	}

	item, err := c.Item()
	require.NoError(t, err)

	back, err := ClientFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestClientItem_PublicClientOmitsOptionalAttributes(t *testing.T) {
	c := Client{ClientID: "cli-1", ClientName: "Public", Scopes: NewScopeSet(), Grants: NewGrantSet()}

	item, err := c.Item()
	require.NoError(t, err)

	assert.NotContains(t, item, "credential")
	assert.NotContains(t, item, "scopes")
	assert.NotContains(t, item, "grants")

	back, err := ClientFromItem(item)
	require.NoError(t, err)
	assert.Nil(t, back.Credential)
	assert.True(t, back.Scopes.IsEmpty())
}

func TestRenewalTokenItem_RoundTrip(t *testing.T) {
	rt := RenewalToken{
		ClientID:    "cli-1",
		Subject:     "user-1",
		DeviceName:  "laptop",
		HashedToken: []byte{132, 55, 22},
		Scopes:      NewScopeSet("read"),
		Expiry:      time.Unix(time.Now().Unix(), 0),
	}

	item, err := rt.Item()
	require.NoError(t, err)

	pk := item["pk"].(*types.AttributeValueMemberS)
	assert.Equal(t, RenewalTokenPK("cli-1", rt.HashedToken), pk.Value)

	back, err := RenewalTokenFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, rt, back)
}

func TestScopeSet(t *testing.T) {
	s := ParseScopes("read  write read")
	assert.ElementsMatch(t, []string{"read", "write"}, s.Slice())
	assert.Equal(t, "read write", s.String())

	assert.True(t, ParseScopes("").IsEmpty())

	got := NewScopeSet("read", "write").Intersect(NewScopeSet("write", "admin"))
	assert.Equal(t, []string{"write"}, got.Slice())
}

func TestParseGrantType(t *testing.T) {
	for _, valid := range []string{"password", "client_credentials", "refresh_token"} {
		g, err := ParseGrantType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(g))
	}

	_, err := ParseGrantType("authorization_code")
	require.Error(t, err)
}
