package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
)

type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

func marshalJWKS(pub *rsa.PublicKey, keyID string) ([]byte, error) {
	e := big.NewInt(int64(pub.E))
	set := jwkSet{
		Keys: []jwk{{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: keyID,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(e.Bytes()),
		}},
	}
	return json.Marshal(set)
}

// JWKS returns the serialized public key set, precomputed at construction.
func (s *Signer) JWKS() []byte {
	return s.jwks
}
