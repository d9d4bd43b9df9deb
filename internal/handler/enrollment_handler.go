package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
	"go-enrollment-server/pkg/apierror"
)

type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := parsePage(query.Get("limit"), query.Get("offset"))
	if err != nil {
		writeError(w, err)
		return
	}

	payments, err := h.enrollments.ListEnrollments(r.Context(), query.Get("email"), page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

func parsePage(rawLimit string, rawOffset string) (model.Page, error) {
	var page model.Page

	for _, field := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"limit", rawLimit, &page.Limit},
		{"offset", rawOffset, &page.Offset},
	} {
		trimmed := strings.TrimSpace(field.raw)
		if trimmed == "" {
			continue
		}
		value, err := strconv.Atoi(trimmed)
		if err != nil || value < 0 {
			return model.Page{}, apierror.Wrap(model.ErrInvalidInput, "BAD_REQUEST", "invalid "+field.name, trimmed, http.StatusBadRequest)
		}
		*field.dst = value
	}

	return page, nil
}
