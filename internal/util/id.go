// Package util provides shared utility functions.
package util

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SessionPrefix starts every session id (e.g., "sess-1a2b3c4d").
	SessionPrefix = "sess-"
	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// Errors returned by ID resolution functions.
var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

// IDPrefixResolver finds ids by prefix.
// This is implemented by session.SQLiteStore.
type IDPrefixResolver interface {
	FindIDsByPrefix(prefix string) ([]string, error)
}

// ResolveSessionID resolves a session id or prefix to a full id.
//
// Resolution rules:
//  1. The "sess-" prefix may be omitted.
//  2. An exact match wins even when it is a prefix of other ids.
//  3. If exactly one id starts with the prefix, return it.
//  4. If several do, return ErrAmbiguousID with candidates.
//  5. If none do, return ErrNotFound.
func ResolveSessionID(resolver IDPrefixResolver, idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("session ID: %w", ErrNotFound)
	}

	normalized := idOrPrefix
	if !strings.HasPrefix(normalized, SessionPrefix) {
		normalized = SessionPrefix + normalized
	}

	candidates, err := resolver.FindIDsByPrefix(normalized)
	if err != nil {
		return "", fmt.Errorf("find session IDs: %w", err)
	}
	for _, c := range candidates {
		if c == normalized {
			return c, nil
		}
	}
	return resolveFromCandidates(normalized, candidates, "session")
}

// resolveFromCandidates handles the common resolution logic.
func resolveFromCandidates(prefix string, candidates []string, entityType string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%s with prefix %q: %w", entityType, prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d %ss: %v",
			ErrAmbiguousID, prefix, len(candidates), entityType, shown)
	}
}
