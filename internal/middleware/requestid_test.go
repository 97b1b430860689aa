package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "client id kept", header: "b7a4c1e2-9f7d-4a51-8a3b-0c6f1d2e3f40", keep: true},
		{name: "short token kept", header: "peche_42", keep: true},
		{name: "missing generated", header: ""},
		{name: "unsafe replaced", header: "<script>"},
		{name: "too long replaced", header: strings.Repeat("a", maxRequestIDLength+1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-ID", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Header().Get("X-Request-ID") != seen {
				t.Fatalf("response header %q differs from context %q", rec.Header().Get("X-Request-ID"), seen)
			}
			if tc.keep {
				if seen != tc.header {
					t.Fatalf("request id = %q, want %q", seen, tc.header)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("request id %q is not a uuid: %v", seen, err)
			}
		})
	}
}
