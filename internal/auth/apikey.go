// Package auth provides the optional single-key write protection. There is
// no user or session system here; deployments that want one front this
// service with their own gateway.
package auth

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"wotrack/internal/response"
)

// HashKey returns the bcrypt hash of an API key, for placing in config.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyKey checks a presented key against the configured hash.
func VerifyKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// RequireKey wraps a handler so that mutating requests must present a valid
// X-API-Key header. Reads stay open; with no hash configured everything
// passes through.
func RequireKey(hash string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hash != "" && r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !VerifyKey(hash, r.Header.Get("X-API-Key")) {
				response.Err(w, "invalid or missing API key", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}
