package http

import "net/http"

const apiKeyHeader = "X-API-Key"

// AuthService validates the API key carried by submission requests.
type AuthService interface {
	ValidateKey(key string) bool
}

// APIKeyMiddleware rejects requests without a valid X-API-Key header.
func APIKeyMiddleware(authSvc AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authSvc.ValidateKey(r.Header.Get(apiKeyHeader)) {
			writeError(w, http.StatusForbidden, "invalid_api_key", "missing or invalid X-API-Key header")
			return
		}
		next(w, r)
	}
}
