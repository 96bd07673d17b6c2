package models

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RenewalToken is the stored form of a long-lived single-use token. The
// record is keyed by the hashed token value; the plaintext is handed to the
// caller once and never persisted. Expired records are logically dead even
// before they are purged.
type RenewalToken struct {
	ClientID    string
	Subject     string
	DeviceName  string
	HashedToken []byte
	Scopes      ScopeSet
	Expiry      time.Time
}

func (t RenewalToken) Expired(now time.Time) bool {
	return t.Expiry.Before(now)
}

// RenewalTokenPK builds the partition key for a RenewalToken record from the
// client id and the hashed token value.
func RenewalTokenPK(clientID string, hashedToken []byte) string {
	encoded := base64.RawURLEncoding.EncodeToString(hashedToken)
	return "RT#" + clientID + "#" + encoded
}

type renewalTokenItem struct {
	PK         string   `dynamodbav:"pk"`
	Subject    string   `dynamodbav:"user_id"`
	DeviceName string   `dynamodbav:"device_name"`
	Scopes     []string `dynamodbav:"scopes,stringset,omitempty"`
	Expiry     int64    `dynamodbav:"expiry"`
}

func (t RenewalToken) Item() (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(renewalTokenItem{
		PK:         RenewalTokenPK(t.ClientID, t.HashedToken),
		Subject:    t.Subject,
		DeviceName: t.DeviceName,
		Scopes:     t.Scopes.Slice(),
		Expiry:     t.Expiry.Unix(),
	})
}

func RenewalTokenFromItem(item map[string]types.AttributeValue) (RenewalToken, error) {
	var raw renewalTokenItem
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return RenewalToken{}, err
	}
	rest, ok := strings.CutPrefix(raw.PK, "RT#")
	if !ok {
		return RenewalToken{}, fmt.Errorf("bad renewal token key %q", raw.PK)
	}
	clientID, encoded, ok := strings.Cut(rest, "#")
	if !ok || clientID == "" || encoded == "" {
		return RenewalToken{}, fmt.Errorf("bad renewal token key %q", raw.PK)
	}
	hashed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return RenewalToken{}, fmt.Errorf("bad renewal token key %q: %w", raw.PK, err)
	}
	if raw.Subject == "" || raw.DeviceName == "" {
		return RenewalToken{}, fmt.Errorf("renewal token for client %s: missing attributes", clientID)
	}
	return RenewalToken{
		ClientID:    clientID,
		Subject:     raw.Subject,
		DeviceName:  raw.DeviceName,
		HashedToken: hashed,
		Scopes:      NewScopeSet(raw.Scopes...),
		Expiry:      time.Unix(raw.Expiry, 0),
	}, nil
}
