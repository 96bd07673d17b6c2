package config

import (
	"flag"
	"os"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-i string   issuer URL
//	-k string   signing key path (PEM)
//	-d string   key id for the JWKS document
//	-b string   table name
//	-g string   region
//	-e string   local storage endpoint ("" disables local mode)
//	-p string   renewal token pepper
//	-n int      PBKDF2 iterations (0 uses the built-in default)
//	-t int      access token validity, minutes
//	-r int      renewal token validity, minutes
//	-s bool     seed the bootstrap client and admin account
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-k", "-d", "-b", "-g", "-e", "-p", "-n", "-t", "-r", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "issuer URL")
	fs.StringVar(&config.SigningKeyPath, "k", config.SigningKeyPath, "signing key path")
	fs.StringVar(&config.SigningKeyID, "d", config.SigningKeyID, "signing key id")
	fs.StringVar(&config.Table, "b", config.Table, "table name")
	fs.StringVar(&config.Region, "g", config.Region, "region")
	fs.StringVar(&config.DynamoEndpoint, "e", config.DynamoEndpoint, "local storage endpoint")
	fs.StringVar(&config.TokenPepper, "p", config.TokenPepper, "renewal token pepper")
	fs.IntVar(&config.HashIterations, "n", config.HashIterations, "credential hash iterations")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	renewalTokenValidityDuration := fs.Int("r", int(config.RenewalTokenValidityDuration.Minutes()), "renewal_token_validity_duration (in minutes)")

	fs.BoolVar(&config.Seed, "s", config.Seed, "seed bootstrap client and admin account")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RenewalTokenValidityDuration = time.Duration(*renewalTokenValidityDuration) * time.Minute
}
