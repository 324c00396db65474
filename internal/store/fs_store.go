package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

const transientsFile = "transients.json"

// FS keeps all transients in one JSON file. The file is loaded once into a
// hot copy; every write goes back to disk atomically.
type FS struct {
	path string
	now  Clock

	mu  sync.RWMutex
	hot map[string]entry
}

func NewFS(dataDir string, clock Clock) (*FS, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dataDir, err)
	}
	if clock == nil {
		clock = time.Now
	}
	s := &FS{
		path: filepath.Join(dataDir, transientsFile),
		now:  clock,
		hot:  make(map[string]entry),
	}
	if err := s.loadHotFromDisk(); err != nil {
		// corrupt -> start clean
		logger.Debug("ignoring unreadable transient file %s: %v", s.path, err)
	}
	return s, nil
}

func (s *FS) Path() string { return s.path }

func (s *FS) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.hot[key]
	s.mu.RUnlock()
	if !ok || e.expired(s.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.Value...), true, nil
}

func (s *FS) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hot[key] = entry{Value: append([]byte(nil), value...), ExpiresAt: expiry(s.now(), ttl)}
	return s.flushLocked()
}

func (s *FS) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hot[key]; !ok {
		return nil
	}
	delete(s.hot, key)
	return s.flushLocked()
}

func (s *FS) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hot = make(map[string]entry)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// --- internals ---

// flushLocked drops expired entries and rewrites the file.
func (s *FS) flushLocked() error {
	now := s.now()
	for k, e := range s.hot {
		if e.expired(now) {
			delete(s.hot, k)
		}
	}
	if err := utils.WriteJSONAtomic(s.path, s.hot); err != nil {
		return fmt.Errorf("write transients: %w", err)
	}
	return nil
}

func (s *FS) loadHotFromDisk() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	m := make(map[string]entry)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	// a literal null decodes to a nil map
	if m == nil {
		m = make(map[string]entry)
	}
	s.mu.Lock()
	s.hot = m
	s.mu.Unlock()
	return nil
}
