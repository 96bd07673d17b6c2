// Package config handles configuration for the server: defaults, JSON
// overlay, and command-line flags.
package config

import "time"

// Config holds the runtime settings.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - Issuer: this server's identity URL, stamped into issued tokens.
//   - SigningKeyPath: path to the PEM-encoded RSA private key.
//   - SigningKeyID: key id published in the JWKS document.
//   - Table / Region / DynamoEndpoint: storage settings. A non-empty
//     DynamoEndpoint points at a local DynamoDB and enables table creation.
//   - TokenPepper: HMAC key for renewal token digests. Do not use test
//     defaults in prod.
//   - HashIterations: PBKDF2 iteration count for new credentials.
//   - AccessTokenValidityDuration / RenewalTokenValidityDuration: token
//     lifetimes.
//   - Seed: create the bootstrap client and admin account on startup.
type Config struct {
	EndpointAddr                 string
	Issuer                       string
	SigningKeyPath               string
	SigningKeyID                 string
	Table                        string
	Region                       string
	DynamoEndpoint               string
	TokenPepper                  string
	HashIterations               int
	AccessTokenValidityDuration  time.Duration
	RenewalTokenValidityDuration time.Duration
	Seed                         bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.Issuer = "http://localhost:8080"
	c.SigningKeyPath = "signing_key.pem"
	c.SigningKeyID = "1"
	c.Table = "gatehouse"
	c.Region = "us-east-1"
	c.DynamoEndpoint = "http://127.0.0.1:8000"
	c.TokenPepper = "devpepper"
	c.HashIterations = 0
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RenewalTokenValidityDuration = 30 * 24 * time.Hour
	c.Seed = true
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
