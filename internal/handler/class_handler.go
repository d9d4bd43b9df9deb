package handler

import (
	"net/http"
	"strings"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

type ClassHandler struct {
	classes *service.ClassService
}

func NewClassHandler(classes *service.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var class model.Class
	if err := decodeJSON(w, r, &class); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.classes.Create(r.Context(), class, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Mine lists the classes of ?email=, defaulting to the caller.
func (h *ClassHandler) Mine(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		email = callerEmail(r)
	}

	classes, err := h.classes.ListByInstructor(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classes)
}
