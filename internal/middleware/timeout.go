package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-enrollment-server/internal/model"
)

// Timeout bounds the whole request. Handlers that overrun answer 503 with
// the TIMEOUT envelope; their late writes are discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.ErrorResponse{Error: true, Code: "TIMEOUT", Message: "request timed out"})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
