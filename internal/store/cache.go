package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/logger"
)

// GetOrCompute returns the cached value for key when present and not
// expired. Otherwise, or when force is set, it calls compute and stores the
// result. A failed compute is returned as is and nothing is stored.
// Store failures only cost a recomputation.
func GetOrCompute[T any](ctx context.Context, s Store, key string, ttl time.Duration, force bool, compute func(ctx context.Context) (T, error)) (T, error) {
	if !force {
		raw, ok, err := s.Get(ctx, key)
		if err != nil {
			logger.Debug("transient read failed for %s: %v", key, err)
		}
		if ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			logger.Debug("discarding undecodable transient %s", key)
		}
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Debug("cannot encode transient %s: %v", key, err)
		return value, nil
	}
	if err := s.Set(ctx, key, raw, ttl); err != nil {
		logger.Debug("transient write failed for %s: %v", key, err)
	}
	return value, nil
}
