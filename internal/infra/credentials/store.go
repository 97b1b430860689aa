// Package credentials keeps the active generative-service API key. The key can
// be reselected at runtime after the upstream rejects it.
package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"legendemer/internal/domain"
)

const ProviderGemini = "gemini"

// Listener is notified after the key changes.
type Listener func(ctx context.Context, key string) error

type Store struct {
	mu        sync.RWMutex
	key       string
	updatedAt time.Time
	listeners []Listener
}

func NewStore(initial string) *Store {
	return &Store{key: strings.TrimSpace(initial), updatedAt: time.Now()}
}

// GeminiAPIKey returns the active key or domain.ErrMissingCredential.
func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", fmt.Errorf("%s: %w", ProviderGemini, domain.ErrMissingCredential)
	}
	return s.key, nil
}

// SetGeminiAPIKey validates the key through every listener before it becomes
// active. If a listener fails the previous key stays in place.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: gemini api key is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.listeners {
		if err := fn(ctx, key); err != nil {
			return err
		}
	}
	s.key = key
	s.updatedAt = time.Now()
	return nil
}

// OnChange registers fn. Listeners run in registration order under the store
// lock and must not call back into the store.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Fingerprint identifies the active key in logs without revealing it.
func (s *Store) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fingerprint(s.key)
}

func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func fingerprint(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
