package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sync"

	"github.com/MKhiriev/go-deck-sync/models"
)

// hasherPool is a package-level pool of reusable HMAC-SHA256 hash instances.
// Must be initialized via InitHasherPool before use.
var hasherPool sync.Pool

// InitHasherPool initializes a sync.Pool of HMAC-SHA256 hashers keyed with
// hashKey. The server calls it once at startup when push integrity checks
// are enabled; the client calls it before signing push bodies.
func InitHasherPool(hashKey string) {
	hasherPool = sync.Pool{
		New: func() any {
			return hmac.New(sha256.New, []byte(hashKey))
		},
	}
}

// Hash computes an HMAC-SHA256 digest over data using a pooled hasher.
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// HashChanges returns the hex HMAC of the canonical JSON encoding of
// changes. Both sides re-marshal decoded values, so key order in the
// original request body does not matter.
func HashChanges(changes []models.Change) (string, error) {
	data, err := json.Marshal(changes)
	if err != nil {
		return "", fmt.Errorf("error marshaling changes for hashing: %w", err)
	}

	return hex.EncodeToString(Hash(data)), nil
}
