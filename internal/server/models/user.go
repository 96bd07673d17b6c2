// Package models defines the domain entities and their mapping onto the
// single composite-key table. Every entity type owns a distinct partition-key
// prefix; no other package constructs raw keys.
package models

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// User is the identity record. The user_id is an opaque generated
// identifier, immutable once created.
type User struct {
	UserID   string
	FullName string
}

// UserPK builds the partition key for a User record.
func UserPK(userID string) string {
	return "U#" + userID
}

type userItem struct {
	PK       string `dynamodbav:"pk"`
	FullName string `dynamodbav:"full_name"`
}

func (u User) Item() (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(userItem{
		PK:       UserPK(u.UserID),
		FullName: u.FullName,
	})
}

func UserFromItem(item map[string]types.AttributeValue) (User, error) {
	var raw userItem
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return User{}, err
	}
	userID, ok := strings.CutPrefix(raw.PK, "U#")
	if !ok || userID == "" {
		return User{}, fmt.Errorf("bad user key %q", raw.PK)
	}
	if raw.FullName == "" {
		return User{}, fmt.Errorf("user %s: missing full_name", userID)
	}
	return User{UserID: userID, FullName: raw.FullName}, nil
}

// UserCredential maps a unique username to its user and stores the packed
// secret record (salt, iteration count, digest) plus the user's own scopes.
// The user_id attribute feeds the reverse-lookup index.
type UserCredential struct {
	Username   string
	UserID     string
	Credential []byte
	Scopes     ScopeSet
}

// CredentialPK builds the partition key for a UserCredential record.
func CredentialPK(username string) string {
	return "UN#" + username
}

type credentialItem struct {
	PK         string   `dynamodbav:"pk"`
	UserID     string   `dynamodbav:"user_id"`
	Credential []byte   `dynamodbav:"credential"`
	Scopes     []string `dynamodbav:"scopes,stringset,omitempty"`
}

func (c UserCredential) Item() (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(credentialItem{
		PK:         CredentialPK(c.Username),
		UserID:     c.UserID,
		Credential: c.Credential,
		Scopes:     c.Scopes.Slice(),
	})
}

func UserCredentialFromItem(item map[string]types.AttributeValue) (UserCredential, error) {
	var raw credentialItem
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return UserCredential{}, err
	}
	username, ok := strings.CutPrefix(raw.PK, "UN#")
	if !ok || username == "" {
		return UserCredential{}, fmt.Errorf("bad credential key %q", raw.PK)
	}
	if raw.UserID == "" || len(raw.Credential) == 0 {
		return UserCredential{}, fmt.Errorf("credential %s: missing attributes", username)
	}
	return UserCredential{
		Username:   username,
		UserID:     raw.UserID,
		Credential: raw.Credential,
		Scopes:     NewScopeSet(raw.Scopes...),
	}, nil
}
