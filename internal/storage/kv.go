package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a key is missing from storage.
var ErrNotFound = errors.New("storage: key not found")

// KV is a durable string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Safe wraps a KV so that every failure is logged and reported as an
// absent value or unsuccessful write instead of an error. State persistence
// is best-effort and must never fail the mutation that triggered it.
type Safe struct {
	kv  KV
	log zerolog.Logger
}

// NewSafe returns a Safe accessor over kv.
func NewSafe(kv KV, log zerolog.Logger) *Safe {
	return &Safe{kv: kv, log: log}
}

// Get returns the value for key, or false if the key is absent or the
// backend failed.
func (s *Safe) Get(key string) (string, bool) {
	v, err := s.kv.Get(context.Background(), key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("storage read failed")
		}
		return "", false
	}
	return v, true
}

// Set writes value under key and reports success.
func (s *Safe) Set(key, value string) bool {
	if err := s.kv.Set(context.Background(), key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("storage write failed")
		return false
	}
	return true
}
