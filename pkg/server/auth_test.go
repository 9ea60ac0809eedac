package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/telemetry/logging"
)

func TestAPIKeyMiddleware(t *testing.T) {
	keys := []config.APIKeyConfig{
		{Name: "billing", Key: "k-billing"},
		{Name: "pricing", Key: "k-pricing"},
	}
	handler := APIKeyMiddleware(keys, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, _ := ClientFromContext(r.Context())
		w.Write([]byte(client))
	}))

	tests := []struct {
		name       string
		header     string
		value      string
		wantCode   int
		wantClient string
	}{
		{name: "bearer", header: "Authorization", value: "Bearer k-pricing", wantCode: http.StatusOK, wantClient: "pricing"},
		{name: "x-api-key", header: "X-API-Key", value: "k-billing", wantCode: http.StatusOK, wantClient: "billing"},
		{name: "missing", wantCode: http.StatusUnauthorized},
		{name: "wrong key", header: "X-API-Key", value: "k-other", wantCode: http.StatusUnauthorized},
		{name: "basic scheme", header: "Authorization", value: "Basic k-billing", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/parameters/discount", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantClient != "" && rec.Body.String() != tt.wantClient {
				t.Errorf("client = %q, want %q", rec.Body.String(), tt.wantClient)
			}
		})
	}
}

func TestAPIKeyMiddleware_Open(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClientFromContext(r.Context()); ok {
			t.Error("open routes should not carry a client")
		}
	})
	rec := httptest.NewRecorder()
	APIKeyMiddleware(nil, nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServerAuthCoversQueriesOnly(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.ListenAddress = "127.0.0.1:0"
	cfg.APIKeys = []config.APIKeyConfig{{Name: "billing", Key: "secret"}}

	srv, err := NewServer(&cfg, newTestEngine(t), nil, logging.Discard())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	handler := srv.Handler()

	tests := []struct {
		name     string
		method   string
		target   string
		key      string
		wantCode int
	}{
		{name: "query without key", method: http.MethodGet, target: "/v1/parameters/strict?level=A", wantCode: http.StatusUnauthorized},
		{name: "query with key", method: http.MethodGet, target: "/v1/parameters/strict?level=A", key: "secret", wantCode: http.StatusOK},
		{name: "function without key", method: http.MethodPost, target: "/v1/functions/greet", wantCode: http.StatusUnauthorized},
		{name: "health stays open", method: http.MethodGet, target: "/health", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.key != "" {
				req.Header.Set("Authorization", "Bearer "+tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}
