package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/flagx"
	"github.com/gatehouse-auth/gatehouse/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// parses both string values such as "15m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	Issuer                       string         `json:"issuer"`
	SigningKeyPath               string         `json:"signing_key_path"`
	SigningKeyID                 string         `json:"signing_key_id"`
	Table                        string         `json:"table"`
	Region                       string         `json:"region"`
	DynamoEndpoint               string         `json:"dynamo_endpoint"`
	TokenPepper                  string         `json:"token_pepper"`
	HashIterations               int            `json:"hash_iterations"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RenewalTokenValidityDuration timex.Duration `json:"renewal_token_validity_duration"`
	Seed                         bool           `json:"seed"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flags. When neither flag is set, no file is loaded. An
// unreadable or invalid file panics; a half-applied configuration is worse
// than a crash at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.Issuer = c.Issuer
	config.SigningKeyPath = c.SigningKeyPath
	config.SigningKeyID = c.SigningKeyID
	config.Table = c.Table
	config.Region = c.Region
	config.DynamoEndpoint = c.DynamoEndpoint
	config.TokenPepper = c.TokenPepper
	config.HashIterations = c.HashIterations
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RenewalTokenValidityDuration = time.Duration(c.RenewalTokenValidityDuration.Duration)
	config.Seed = c.Seed
}
