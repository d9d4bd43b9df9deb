package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-enrollment-server/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string) (model.IdentityClaim, error)
}

type roleLookup interface {
	RoleOf(ctx context.Context, email string) (model.Role, error)
}

type contextKey string

const (
	claimsContextKey contextKey = "identity_claim"
	roleContextKey   contextKey = "account_role"
)

const (
	unauthorizedMessage = "unauthorized access"
	forbiddenMessage    = "forbidden access"
)

type AuthMiddleware struct {
	verifier tokenVerifier
	roles    roleLookup
}

func NewAuthMiddleware(verifier tokenVerifier, roles roleLookup) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, roles: roles}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			writeAccessDenied(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		token := strings.TrimSpace(header[7:])
		if token == "" {
			writeAccessDenied(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		claim, err := m.verifier.Verify(token)
		if err != nil {
			writeAccessDenied(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claim)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles admits callers whose account holds one of allowedRoles. It
// must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAccessDenied(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			role, err := m.roles.RoleOf(r.Context(), claim.Email())
			if err != nil {
				slog.Error("role lookup failed", "email", claim.Email(), "error", err)
				writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "role lookup failed")
				return
			}

			if _, allowed := roleSet[role]; !allowed {
				writeAccessDenied(w, http.StatusForbidden, forbiddenMessage)
				return
			}

			ctx := context.WithValue(r.Context(), roleContextKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (model.IdentityClaim, bool) {
	claim, ok := ctx.Value(claimsContextKey).(model.IdentityClaim)
	return claim, ok
}

// RoleFromContext returns the role resolved by RequireRoles, if it ran.
func RoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(roleContextKey).(model.Role)
	return role, ok
}

func writeAccessDenied(w http.ResponseWriter, status int, message string) {
	writeErrorJSON(w, status, "", message)
}
