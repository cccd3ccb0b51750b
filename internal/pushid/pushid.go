// Package pushid generates child keys for push writes.
//
// Keys are ULIDs in their 26 character Crockford base32 form. They sort
// lexicographically in generation order, including keys generated within the
// same millisecond, and are valid tree keys.
package pushid

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces ascending push keys. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
	lastMs  uint64
}

// NewGenerator returns a Generator reading time from now and randomness from
// entropy. Nil arguments select time.Now and crypto/rand.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Next returns the next key.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// A clock that steps backwards keeps the last timestamp so keys still ascend
	ms := ulid.Timestamp(g.now())
	if ms < g.lastMs {
		ms = g.lastMs
	}
	g.lastMs = ms

	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Time returns the creation time encoded in a key.
func Time(key string) (time.Time, error) {
	id, err := ulid.ParseStrict(key)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
