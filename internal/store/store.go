package store

import (
	"context"
	"crypto/md5" //nolint:gosec // key derivation only
	"encoding/hex"
	"time"
)

// Transient key suffixes.
const (
	SuffixNewVersion = "_new_version"
	SuffixGitHubData = "_github_data"
)

// Store is a key/value transient store with per-key expiry. Get never
// returns an expired value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Clock returns the current time. Backends take one so tests can move time.
type Clock func() time.Time

// TransientKey returns md5hex(slug)+suffix.
func TransientKey(slug, suffix string) string {
	sum := md5.Sum([]byte(slug)) //nolint:gosec
	return hex.EncodeToString(sum[:]) + suffix
}

// Invalidate drops every transient kept for slug.
func Invalidate(ctx context.Context, s Store, slug string) error {
	for _, suffix := range []string{SuffixNewVersion, SuffixGitHubData} {
		if err := s.Delete(ctx, TransientKey(slug, suffix)); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
