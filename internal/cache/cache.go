// Package cache persists the small key-value state the loader remembers
// between visits, plus a history of load attempts.
package cache

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/metrics"
)

// Keys remembered by the loader.
const (
	KeyLastURL  = "aquatrack:last-url"
	KeyLastFile = "aquatrack:last-file"
)

// Backend is a persisted key-value store. Get returns apperr.ErrNotFound for
// a missing key.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Store is the best-effort view over a Backend. Failures are treated as "no
// value"; the first one is logged and the rest are only counted.
type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	warned  sync.Once
}

// NewStore wraps b. logger and m may be nil.
func NewStore(b Backend, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: b, logger: logger, metrics: m}
}

// Get returns the value for key and whether one was found.
func (s *Store) Get(key string) (string, bool) {
	v, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.fail("get", key, err)
		}
		return "", false
	}
	return v, true
}

// Set stores value under key and reports success.
func (s *Store) Set(key, value string) bool {
	if err := s.backend.Set(key, value); err != nil {
		s.fail("set", key, err)
		return false
	}
	return true
}

// Remove deletes key and reports success. Removing a missing key succeeds.
func (s *Store) Remove(key string) bool {
	if err := s.backend.Remove(key); err != nil {
		s.fail("remove", key, err)
		return false
	}
	return true
}

func (s *Store) fail(op, key string, err error) {
	s.metrics.StorageFailure(op)
	s.warned.Do(func() {
		s.logger.Warn("cache: unavailable",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("error", err.Error()))
	})
}
