package handler

import (
	"net/http"

	"go-enrollment-server/internal/middleware"
	"go-enrollment-server/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	if claim, ok := middleware.ClaimsFromContext(r.Context()); ok {
		actor.Email = claim.Email()
	}
	if role, ok := middleware.RoleFromContext(r.Context()); ok {
		actor.Role = role
	}

	return actor
}

// callerEmail is the email of the authenticated caller, or empty.
func callerEmail(r *http.Request) string {
	claim, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claim.Email()
}
