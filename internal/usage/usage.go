// Package usage implements the free-tier usage gate. Each client, identified
// by its resolved network address, gets exactly one free evaluation; further
// requests go through the paid path. The gate is a heuristic rate limit, not
// a security boundary: the client key comes from spoofable proxy headers.
package usage

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Record is the usage state for a single client key.
type Record struct {
	Count    int    `json:"count"`
	LastUsed string `json:"lastUsed"`
}

// CanUseFree reports whether the client still has its free evaluation.
func (r Record) CanUseFree() bool {
	return r.Count == 0
}

// Store tracks per-client usage counts. Implementations must make Increment
// atomic per key so concurrent requests from the same client cannot both be
// granted the free evaluation.
type Store interface {
	// Check returns the current usage record for a key without side effects.
	// Unknown keys yield a zero Record.
	Check(ctx context.Context, key string) (Record, error)
	// Increment records one consumption for the key and returns the new count.
	Increment(ctx context.Context, key string) (int, error)
	// Close releases any resources held by the store.
	Close() error
}

// ClientKey resolves the client identifier from proxy headers, in priority
// order: X-Forwarded-For (first address), X-Real-IP, CF-Connecting-IP. Falls
// back to "unknown" when none is present.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if cfIP := r.Header.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}
	return "unknown"
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
