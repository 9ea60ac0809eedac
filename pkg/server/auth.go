package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"mercator-hq/paramengine/pkg/config"
)

type clientKey struct{}

// ClientFromContext returns the name of the authenticated API client.
func ClientFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(clientKey{}).(string)
	return name, ok
}

// APIKeyMiddleware admits requests carrying one of keys, either as
// "Authorization: Bearer <key>" or in the X-API-Key header. With no keys
// every request is admitted.
func APIKeyMiddleware(keys []config.APIKeyConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := extractAPIKey(r)
			if presented == "" {
				logger.WarnContext(r.Context(), "missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key")
				return
			}

			client, ok := matchAPIKey(keys, presented)
			if !ok {
				logger.WarnContext(r.Context(), "invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), clientKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if key, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(key)
		}
	}
	return r.Header.Get("X-API-Key")
}

// matchAPIKey compares against every key so the time taken does not depend
// on which one matched.
func matchAPIKey(keys []config.APIKeyConfig, presented string) (string, bool) {
	client := ""
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(presented)) == 1 {
			client = k.Name
		}
	}
	return client, client != ""
}
