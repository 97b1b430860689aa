package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"legendemer/internal/http/handlers"
	"legendemer/internal/infra/credentials"
)

func newTestRouter(token string) http.Handler {
	app := handlers.NewApp(handlers.Options{Credentials: credentials.NewStore("old-key")})
	return NewRouter(app, Options{
		Logger:          zerolog.New(io.Discard),
		DefaultLocale:   "fr",
		RateLimitPerMin: 1,
		AdminToken:      token,
	})
}

func TestRouterHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter("").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}
	if rr.Header().Get("Content-Language") != "fr" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
}

func TestRouterCredentialsNeedToken(t *testing.T) {
	router := newTestRouter("s3cret")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/credentials", strings.NewReader(`{"api_key":"k"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/credentials", strings.NewReader(`{"api_key":"k"}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
}

func TestRouterRateLimitsGenerations(t *testing.T) {
	router := newTestRouter("")

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/generations", strings.NewReader(`{}`)))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("status codes = %v, want [400 429]", codes)
	}
}

func TestRouterServesOpenAPI(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter("").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/v1/generations") {
		t.Fatalf("unexpected response: %d", rr.Code)
	}
}
