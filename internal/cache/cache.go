// Package cache stores fact-check verdicts so that repeated queries within a
// session do not hit the retrieval provider again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/claimify/internal/model"
)

// Cache defines the interface for verdict caching
type Cache interface {
	Get(key string) (model.FactCheckResult, bool)
	Set(key string, res model.FactCheckResult, ttl time.Duration)
	Delete(key string)
	Clear()
}

// QueryKey derives a cache key from the provider, model and query text.
// Case and surrounding whitespace in the query are ignored.
func QueryKey(provider, modelName, query string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(query), " "))
	hash := sha256.Sum256([]byte(provider + "\x00" + modelName + "\x00" + norm))
	return "claimify:v1:" + hex.EncodeToString(hash[:])
}
