package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-enrollment-server/internal/model"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (model.IdentityClaim, error) {
	switch token {
	case "admin-token":
		return model.IdentityClaim{"email": "admin@example.com"}, nil
	case "student-token":
		return model.IdentityClaim{"email": "student@example.com"}, nil
	case "broken-store-token":
		return model.IdentityClaim{"email": "broken@example.com"}, nil
	default:
		return nil, model.ErrInvalidToken
	}
}

type stubRoles map[string]model.Role

func (s stubRoles) RoleOf(_ context.Context, email string) (model.Role, error) {
	if email == "broken@example.com" {
		return model.RoleNone, errors.New("store down")
	}
	if role, ok := s[email]; ok {
		return role, nil
	}
	return model.RoleNone, nil
}

func newTestAuth() *AuthMiddleware {
	return NewAuthMiddleware(stubVerifier{}, stubRoles{"admin@example.com": model.RoleAdmin, "student@example.com": model.RoleStudent})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	var seen model.IdentityClaim
	handler := newTestAuth().RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", "admin-token", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"basic scheme", "Basic admin-token", http.StatusUnauthorized},
		{"valid", "Bearer admin-token", http.StatusNoContent},
		{"lowercase scheme", "bearer admin-token", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/select", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":true,"message":"unauthorized access"}`, rec.Body.String())
			}
		})
	}

	assert.Equal(t, "admin@example.com", seen.Email())
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	auth := newTestAuth()
	handler := auth.RequireAuth(auth.RequireRoles(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := RoleFromContext(r.Context()); role != model.RoleAdmin {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		token  string
		status int
		body   string
	}{
		{"admin-token", http.StatusOK, ""},
		{"student-token", http.StatusForbidden, `{"error":true,"message":"forbidden access"}`},
		{"broken-store-token", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	t.Parallel()

	handler := newTestAuth().RequireRoles(model.RoleAdmin)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":true,"code":"INTERNAL_ERROR","message":"unexpected server error"}`, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestLogging_SetsRequestID(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Logging(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	Logging(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
}
