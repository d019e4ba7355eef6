package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
		wantCreds  string
	}{
		{"explicit origin", []string{"https://a.test"}, "https://a.test", false, http.StatusTeapot, "https://a.test", "true"},
		{"unknown origin", []string{"https://a.test"}, "https://b.test", false, http.StatusTeapot, "", ""},
		{"wildcard has no credentials", []string{"*"}, "https://b.test", false, http.StatusTeapot, "*", ""},
		{"wildcard in a list drops credentials", []string{"https://a.test", "*"}, "https://a.test", false, http.StatusTeapot, "*", ""},
		{"preflight short-circuits", []string{"https://a.test"}, "https://a.test", true, http.StatusNoContent, "https://a.test", "true"},
		{"empty list denies", nil, "https://a.test", false, http.StatusTeapot, "", ""},
		{"no origin", nil, "", false, http.StatusTeapot, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/conversations", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Fatalf("allow credentials = %q, want %q", got, tt.wantCreds)
			}
			if tt.wantOrigin != "" && !strings.Contains(strings.Join(rec.Header().Values("Vary"), ","), "Origin") {
				t.Fatalf("expected Vary: Origin, got %q", rec.Header().Values("Vary"))
			}
		})
	}
}
