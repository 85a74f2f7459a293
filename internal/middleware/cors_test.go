package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		wantStatus     int
		wantHeader     string
	}{
		{
			name:           "no origins configured blocks all",
			allowedOrigins: []string{},
			requestOrigin:  "https://app.enhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "allowed origin gets header",
			allowedOrigins: []string{"https://app.enhancemyseo.com"},
			requestOrigin:  "https://app.enhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://app.enhancemyseo.com",
		},
		{
			name:           "disallowed origin blocked on preflight",
			allowedOrigins: []string{"https://app.enhancemyseo.com"},
			requestOrigin:  "https://evil.example",
			method:         http.MethodOptions,
			wantStatus:     http.StatusForbidden,
			wantHeader:     "",
		},
		{
			name:           "preflight returns no content",
			allowedOrigins: []string{"https://app.enhancemyseo.com"},
			requestOrigin:  "https://app.enhancemyseo.com",
			method:         http.MethodOptions,
			wantStatus:     http.StatusNoContent,
			wantHeader:     "https://app.enhancemyseo.com",
		},
		{
			name:           "case insensitive origin match",
			allowedOrigins: []string{"HTTPS://APP.ENHANCEMYSEO.COM"},
			requestOrigin:  "https://app.enhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://app.enhancemyseo.com",
		},
		{
			name:           "wildcard matches subdomain",
			allowedOrigins: []string{"*.enhancemyseo.com"},
			requestOrigin:  "https://staging.enhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://staging.enhancemyseo.com",
		},
		{
			name:           "wildcard does not match apex",
			allowedOrigins: []string{"*.enhancemyseo.com"},
			requestOrigin:  "https://enhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "wildcard does not match lookalike",
			allowedOrigins: []string{"*.enhancemyseo.com"},
			requestOrigin:  "https://notenhancemyseo.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "no origin header skips CORS",
			allowedOrigins: []string{"https://app.enhancemyseo.com"},
			requestOrigin:  "",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			handler := CORS(cfg)(okHandler())

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.enhancemyseo.com"}

	handler := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/articles/generate", nil)
	req.Header.Set("Origin", "https://app.enhancemyseo.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	for _, h := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers", "Access-Control-Max-Age", "Access-Control-Expose-Headers"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("%s not set on preflight", h)
		}
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
}
