package credentials

import (
	"context"
	"errors"
	"testing"

	"legendemer/internal/domain"
)

func TestGeminiAPIKey(t *testing.T) {
	store := NewStore(" abc123 ")
	key, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected trimmed token, got %q", key)
	}
}

func TestGeminiAPIKeyMissing(t *testing.T) {
	store := NewStore("")
	if _, err := store.GeminiAPIKey(context.Background()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
	if store.Fingerprint() != "" {
		t.Fatal("empty key should have no fingerprint")
	}
}

func TestSetGeminiAPIKeyNotifiesListeners(t *testing.T) {
	store := NewStore("old")
	var seen string
	store.OnChange(func(ctx context.Context, key string) error {
		seen = key
		return nil
	})
	before := store.Fingerprint()

	if err := store.SetGeminiAPIKey(context.Background(), " new "); err != nil {
		t.Fatalf("SetGeminiAPIKey error: %v", err)
	}
	if seen != "new" {
		t.Fatalf("listener saw %q, want new", seen)
	}
	if key, _ := store.GeminiAPIKey(context.Background()); key != "new" {
		t.Fatalf("active key = %q, want new", key)
	}
	if store.Fingerprint() == before || len(store.Fingerprint()) != 8 {
		t.Fatalf("fingerprint = %q, want a new 8 char value", store.Fingerprint())
	}
}

func TestSetGeminiAPIKeyKeepsPreviousOnListenerError(t *testing.T) {
	store := NewStore("old")
	store.OnChange(func(context.Context, string) error { return errors.New("rebuild failed") })

	if err := store.SetGeminiAPIKey(context.Background(), "new"); err == nil {
		t.Fatal("expected listener error")
	}
	if key, _ := store.GeminiAPIKey(context.Background()); key != "old" {
		t.Fatalf("active key = %q, want old", key)
	}
}

func TestSetGeminiAPIKeyRejectsBlank(t *testing.T) {
	store := NewStore("old")
	if err := store.SetGeminiAPIKey(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
}
