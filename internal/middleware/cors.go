package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

const (
	bootstrapTokenHeader = "X-Bootstrap-Token"
	issuerKeyHeader      = "X-Issuer-Key"
)

// CORS admits the browser client. Callers authenticate with bearer tokens, so
// credentials are never allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader, bootstrapTokenHeader, issuerKeyHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         600,
	}).Handler
}
