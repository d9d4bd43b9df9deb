package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{
		Error:   true,
		Code:    "INTERNAL_ERROR",
		Message: "unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUnauthenticated) || errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "unauthorized access"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "forbidden access"
	} else if errors.Is(err, model.ErrAccountNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "account not found"
	} else if errors.Is(err, model.ErrClassNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "class not found"
	} else if errors.Is(err, model.ErrSelectionNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "selection not found"
	} else if errors.Is(err, model.ErrInvalidAmount) {
		status = http.StatusBadRequest
		body.Code = "INVALID_AMOUNT"
		body.Message = "price must be a positive number"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrPaymentNotVerified) {
		status = http.StatusPaymentRequired
		body.Code = "PAYMENT_NOT_VERIFIED"
		body.Message = "payment could not be verified with the processor"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrTimeout) {
		body.Code = "TIMEOUT"
		body.Message = "upstream timed out"
		slog.Error("collaborator timeout", "error", err.Error())
	} else if errors.Is(err, model.ErrUpstream) {
		body.Code = "UPSTREAM_FAILURE"
		body.Message = "upstream failure"
		slog.Error("collaborator failure", "error", err.Error())
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.New("BAD_REQUEST", "request body is required", "", http.StatusBadRequest)
		}
		return apierror.Wrap(err, "BAD_REQUEST", "invalid JSON payload", err.Error(), http.StatusBadRequest)
	}

	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}

	return value
}
