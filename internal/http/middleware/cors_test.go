package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSOrigins(t *testing.T) {
	allowed := []string{
		"https://htxdentalimplants.com",
		"https://*.vercel.app",
		"",
	}
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://htxdentalimplants.com", true},
		{"https://htxdentalimplants.com.evil.example", false},
		{"https://preview-123.vercel.app", true},
		{"http://preview-123.vercel.app", false},
		{"https://.vercel.app", false},
		{"https://vercel.app", false},
		{"https://unknown.example", false},
		{"", false},
	}

	h := CORS(allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected request to pass through, got %d", rec.Code)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.want && got != tt.origin {
				t.Fatalf("expected origin echoed, got %q", got)
			}
			if !tt.want && got != "" {
				t.Fatalf("expected no allow-origin header, got %q", got)
			}
			if tt.want && rec.Header().Get("Access-Control-Allow-Methods") != corsAllowedMethods {
				t.Fatalf("unexpected methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	h := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	req.Header.Set("Origin", "https://random.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://random.example" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS([]string{"https://htxdentalimplants.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://htxdentalimplants.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called {
		t.Fatal("preflight should not reach the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") != corsAllowedHeaders {
		t.Fatalf("unexpected allow headers %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}
