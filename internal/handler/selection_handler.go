package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

type SelectionHandler struct {
	selections *service.SelectionService
}

func NewSelectionHandler(selections *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selections: selections}
}

func (h *SelectionHandler) List(w http.ResponseWriter, r *http.Request) {
	selections, err := h.selections.List(r.Context(), callerEmail(r), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, selections)
}

func (h *SelectionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var selection model.Selection
	if err := decodeJSON(w, r, &selection); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.selections.Add(r.Context(), selection, callerEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *SelectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	result, err := h.selections.Remove(r.Context(), chi.URLParam(r, "id"), callerEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
