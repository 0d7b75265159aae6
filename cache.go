package strata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory). Values are opaque encoded row sets.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// CacheKey identifies one rendered read statement.
type CacheKey struct {
	Namespace string
	Dialect   string
	SQL       string
	Args      []any
	One       bool // Single-row lookup, cached separately from the full set
}

// Prefix returns the prefix shared by every key of the namespace. The
// namespace is escaped, so the prefix of "a" does not match keys of "a:b".
func (k CacheKey) Prefix() string {
	return "strata:" + url.QueryEscape(k.Namespace) + ":"
}

// String returns the string representation of the cache key. Statement
// text and arguments are hashed to keep keys short.
func (k CacheKey) String() string {
	h := sha256.New()
	h.Write([]byte(k.Dialect))
	h.Write([]byte{0})
	h.Write([]byte(k.SQL))
	for _, a := range k.Args {
		fmt.Fprintf(h, "\x00%T:%v", a, a)
	}
	var sb strings.Builder
	sb.WriteString(k.Prefix())
	if k.One {
		sb.WriteString("one:")
	} else {
		sb.WriteString("all:")
	}
	sb.WriteString(hex.EncodeToString(h.Sum(nil)[:16]))
	return sb.String()
}
