package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

const bootstrapTokenHeader = "X-Bootstrap-Token"

type RoleHandler struct {
	roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, model.RoleAdmin, "admin")
}

func (h *RoleHandler) IsInstructor(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, model.RoleInstructor, "instructor")
}

func (h *RoleHandler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	h.promote(w, r, model.RoleAdmin)
}

func (h *RoleHandler) PromoteInstructor(w http.ResponseWriter, r *http.Request) {
	h.promote(w, r, model.RoleInstructor)
}

func (h *RoleHandler) query(w http.ResponseWriter, r *http.Request, role model.Role, key string) {
	holds, err := h.roles.QueryRole(r.Context(), chi.URLParam(r, "email"), role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{key: holds})
}

func (h *RoleHandler) promote(w http.ResponseWriter, r *http.Request, role model.Role) {
	accountID := strings.TrimSpace(chi.URLParam(r, "id"))
	bootstrapToken := strings.TrimSpace(r.Header.Get(bootstrapTokenHeader))

	result, err := h.roles.Promote(r.Context(), accountID, role, actorFromRequest(r), bootstrapToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
