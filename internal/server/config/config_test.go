package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.Issuer, "http://localhost:8080")
	assert.Equal(t, c.SigningKeyPath, "signing_key.pem")
	assert.Equal(t, c.SigningKeyID, "1")
	assert.Equal(t, c.Table, "gatehouse")
	assert.Equal(t, c.Region, "us-east-1")
	assert.Equal(t, c.DynamoEndpoint, "http://127.0.0.1:8000")
	assert.Equal(t, c.TokenPepper, "devpepper")
	assert.Equal(t, c.HashIterations, 0)
	assert.Equal(t, c.AccessTokenValidityDuration, 15*time.Minute)
	assert.Equal(t, c.RenewalTokenValidityDuration, 30*24*time.Hour)
	assert.True(t, c.Seed)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.Issuer, "http://localhost:8080")
	assert.Equal(t, c.Table, "gatehouse")
	assert.Equal(t, c.AccessTokenValidityDuration, 15*time.Minute)
}
