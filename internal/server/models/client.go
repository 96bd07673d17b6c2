package models

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is a registered OAuth client. A nil Credential marks a public
// client, which cannot use the client_credentials grant. The Loopback flag
// is set only at seed time, never through the public create operation, and
// is immutable afterwards.
type Client struct {
	ClientID   string
	ClientName string
	Credential []byte
	Scopes     ScopeSet
	Grants     GrantSet
	Loopback   bool
}

// ClientPK builds the partition key for a Client record.
func ClientPK(clientID string) string {
	return "C#" + clientID
}

type clientItem struct {
	PK         string   `dynamodbav:"pk"`
	ClientName string   `dynamodbav:"client_name"`
	Credential []byte   `dynamodbav:"credential,omitempty"`
	Scopes     []string `dynamodbav:"scopes,stringset,omitempty"`
	Grants     []string `dynamodbav:"grants,stringset,omitempty"`
	Loopback   bool     `dynamodbav:"loopback"`
}

func (c Client) Item() (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(clientItem{
		PK:         ClientPK(c.ClientID),
		ClientName: c.ClientName,
		Credential: c.Credential,
		Scopes:     c.Scopes.Slice(),
		Grants:     c.Grants.Slice(),
		Loopback:   c.Loopback,
	})
}

func ClientFromItem(item map[string]types.AttributeValue) (Client, error) {
	var raw clientItem
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return Client{}, err
	}
	clientID, ok := strings.CutPrefix(raw.PK, "C#")
	if !ok || clientID == "" {
		return Client{}, fmt.Errorf("bad client key %q", raw.PK)
	}
	if raw.ClientName == "" {
		return Client{}, fmt.Errorf("client %s: missing client_name", clientID)
	}
	grants, err := ParseGrantSet(raw.Grants)
	if err != nil {
		return Client{}, fmt.Errorf("client %s: %w", clientID, err)
	}
	return Client{
		ClientID:   clientID,
		ClientName: raw.ClientName,
		Credential: raw.Credential,
		Scopes:     NewScopeSet(raw.Scopes...),
		Grants:     grants,
		Loopback:   raw.Loopback,
	}, nil
}
