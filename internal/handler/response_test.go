package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
	"go-enrollment-server/pkg/apierror"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.New("BAD_REQUEST", "bad", "", http.StatusBadRequest), http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid token", model.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", fmt.Errorf("cart: %w", model.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"account missing", model.ErrAccountNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"class missing", model.ErrClassNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid amount", model.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"invalid input", model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{"not verified", model.ErrPaymentNotVerified, http.StatusPaymentRequired, "PAYMENT_NOT_VERIFIED"},
		{"timeout", model.ErrTimeout, http.StatusInternalServerError, "TIMEOUT"},
		{"upstream", fmt.Errorf("insert payment: %w: %w", model.ErrUpstream, errors.New("conn reset")), http.StatusInternalServerError, "UPSTREAM_FAILURE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst map[string]any

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := decodeJSON(httptest.NewRecorder(), req, &dst)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request body is required", apiErr.Message)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	err = decodeJSON(httptest.NewRecorder(), req, &dst)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid JSON payload", apiErr.Message)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "a@b.com", dst["email"])
}

func TestParsePage(t *testing.T) {
	page, err := parsePage("", "")
	require.NoError(t, err)
	assert.Equal(t, model.Page{}, page)

	page, err = parsePage(" 10 ", "20")
	require.NoError(t, err)
	assert.Equal(t, model.Page{Limit: 10, Offset: 20}, page)

	for _, raw := range [][2]string{{"-1", ""}, {"", "abc"}, {"1.5", "0"}} {
		_, err := parsePage(raw[0], raw[1])
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 7, parseIntOrDefault("", 7))
	assert.Equal(t, 7, parseIntOrDefault("x", 7))
	assert.Equal(t, 3, parseIntOrDefault(" 3 ", 7))
}

func TestTokenHandler_Issue(t *testing.T) {
	tokens := service.NewTokenService("handler-secret", time.Hour, "go-enrollment-server")
	h := NewTokenHandler(tokens, "")

	rec := httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"Learner@Example.com","name":"L"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claim, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "learner@example.com", claim.Email())
	assert.Equal(t, "L", claim["name"])

	rec = httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`[1,2]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}, time.Second).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}, time.Second).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocsHandler_OpenAPIConditional(t *testing.T) {
	h := NewDocsHandler()

	rec := httptest.NewRecorder()
	h.OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi:")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.OpenAPI(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	h.SwaggerUI(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Contains(t, rec.Body.String(), "openapi.yaml")
}
