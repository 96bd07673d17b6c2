// Package credential implements hashing and verification of user and client
// secrets, plus the deterministic digest used to key renewal-token records.
//
// Secrets are stretched with PBKDF2-HMAC-SHA256 using a per-credential random
// salt. The stored record packs the iteration count and salt next to the
// digest, so records created under an older default iteration count keep
// verifying after the default is raised.
package credential

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"

	"github.com/gatehouse-auth/gatehouse/internal/common"
)

const (
	// DefaultIterations is the PBKDF2 iteration count for new credentials.
	DefaultIterations = 100_000

	saltLen   = 16
	digestLen = sha256.Size

	// encoded record: iterations (uint32 BE) | salt | digest
	recordLen = 4 + saltLen + digestLen
)

var errMalformedRecord = errors.New("malformed credential record")

// Codec derives and verifies credential records. Key stretching is CPU-bound,
// so concurrent derivations are capped by a weighted semaphore to keep the
// scheduler responsive under login storms.
type Codec struct {
	iterations int
	pepper     []byte
	sem        *semaphore.Weighted
}

type Config struct {
	// Iterations overrides DefaultIterations when > 0.
	Iterations int

	// MaxParallel caps concurrent PBKDF2 computations. Defaults to 10.
	MaxParallel int64

	// Pepper keys the deterministic token digest (TokenDigest). It never
	// leaves process config, so a leaked table dump cannot be brute-forced
	// into usable renewal tokens.
	Pepper []byte
}

func NewCodec(cfg Config) *Codec {
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 10
	}
	return &Codec{
		iterations: iterations,
		pepper:     cfg.Pepper,
		sem:        semaphore.NewWeighted(maxParallel),
	}
}

// Derive hashes secret with a fresh random salt and returns the packed
// credential record to be stored.
func (c *Codec) Derive(ctx context.Context, secret string) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	salt := common.GenerateRandByteArray(saltLen)
	digest := pbkdf2.Key([]byte(secret), salt, c.iterations, digestLen, sha256.New)

	record := make([]byte, 0, recordLen)
	record = binary.BigEndian.AppendUint32(record, uint32(c.iterations))
	record = append(record, salt...)
	record = append(record, digest...)
	return record, nil
}

// Verify recomputes the digest using the salt and iteration count stored in
// record and compares in constant time. Any malformed record, acquisition
// failure, or mismatch yields false; callers cannot tell which check failed.
func (c *Codec) Verify(ctx context.Context, secret string, record []byte) bool {
	iterations, salt, digest, err := decodeRecord(record)
	if err != nil {
		return false
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer c.sem.Release(1)

	candidate := pbkdf2.Key([]byte(secret), salt, iterations, digestLen, sha256.New)
	match := subtle.ConstantTimeCompare(candidate, digest) == 1
	common.WipeByteArray(candidate)
	return match
}

// TokenDigest computes the deterministic keyed digest of an opaque token,
// scoped to a client. Renewal-token records are keyed by this value, so the
// plaintext token never reaches the store.
func (c *Codec) TokenDigest(clientID, token string) []byte {
	mac := hmac.New(sha256.New, c.pepper)
	mac.Write([]byte(clientID))
	mac.Write([]byte{0})
	mac.Write([]byte(token))
	return mac.Sum(nil)
}

func decodeRecord(record []byte) (iterations int, salt, digest []byte, err error) {
	if len(record) != recordLen {
		return 0, nil, nil, errMalformedRecord
	}
	iterations = int(binary.BigEndian.Uint32(record[:4]))
	if iterations <= 0 {
		return 0, nil, nil, errMalformedRecord
	}
	salt = record[4 : 4+saltLen]
	digest = record[4+saltLen:]
	return iterations, salt, digest, nil
}
