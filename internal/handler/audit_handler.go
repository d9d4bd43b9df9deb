package handler

import (
	"net/http"
	"strings"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:     strings.TrimSpace(query.Get("action")),
		ActorEmail: strings.TrimSpace(query.Get("actor")),
		Status:     strings.TrimSpace(query.Get("status")),
		Resource:   strings.TrimSpace(query.Get("resource")),
		From:       strings.TrimSpace(query.Get("from")),
		To:         strings.TrimSpace(query.Get("to")),
		Page:       parseIntOrDefault(query.Get("page"), 1),
		Limit:      parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuditListData{Items: items, Meta: meta})
}
