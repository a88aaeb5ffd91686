// Package ulid generates the identifiers used for documents and history
// snapshots. ULIDs are time-ordered, so identities created later always
// sort after earlier ones and are never reused.
package ulid

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = DefaultGenerator
)

// DefaultEntropy returns a monotonic entropy reader. Two IDs generated
// within the same millisecond still compare in generation order.
func DefaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// ValidID reports whether id parses as a canonical ULID.
func ValidID(id string) bool {
	parsed, err := ulid.ParseStrict(id)
	return err == nil && parsed.String() == id
}

// GenerateID returns a new identifier.
func GenerateID() string {
	return generator()
}

// DefaultGenerator creates a fresh ULID from the shared entropy source.
func DefaultGenerator() string {
	entropy := DefaultEntropy()
	ts := ulid.Timestamp(time.Now())
	return ulid.MustNew(ts, entropy).String()
}

// ResetGenerator restores the default generator after a test used
// MockGenerator.
func ResetGenerator() {
	generator = DefaultGenerator
}

// MockGenerator makes GenerateID return a fixed value. Tests that assert
// on serialized state use it to keep identifiers stable.
func MockGenerator(mockValue string) {
	generator = func() string {
		return mockValue
	}
}
