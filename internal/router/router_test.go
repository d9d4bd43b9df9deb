package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-enrollment-server/internal/config"
	"go-enrollment-server/internal/handler"
	"go-enrollment-server/internal/middleware"
	"go-enrollment-server/internal/processor"
	"go-enrollment-server/internal/repository/memory"
	"go-enrollment-server/internal/service"
)

const (
	bootstrapToken = "first-admin-token"
	issuerKey      = "token-issuer-key"
)

type testServer struct {
	handler http.Handler
	proc    *processor.MockProcessor
	store   *memory.Store
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrapToken), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		IOTimeout:          time.Second,
		CORSOrigins:        []string{"*"},
		StrictRateLimitRPM: 100,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := memory.New()
	proc := &processor.MockProcessor{}

	tokens := service.NewTokenService("router-test-secret", time.Hour, "go-enrollment-server")
	audit := service.NewAuditService(store.Audit(), cfg.IOTimeout)
	roles := service.NewRoleService(store.Accounts(), audit, string(hash), cfg.IOTimeout)
	payments := service.NewPaymentService(proc, store.Payments(), service.PaymentConfig{
		Currency:           "usd",
		PaymentMethodTypes: []string{"card"},
		IOTimeout:          cfg.IOTimeout,
	})

	h := New(cfg, middleware.NewAuthMiddleware(tokens, roles), Handlers{
		Health:     handler.NewHealthHandler(store, time.Second),
		Docs:       handler.NewDocsHandler(),
		Token:      handler.NewTokenHandler(tokens, cfg.TokenIssuerKeyHash),
		Account:    handler.NewAccountHandler(service.NewAccountService(store.Accounts(), cfg.IOTimeout)),
		Role:       handler.NewRoleHandler(roles),
		Class:      handler.NewClassHandler(service.NewClassService(store.Classes(), cfg.IOTimeout)),
		Selection:  handler.NewSelectionHandler(service.NewSelectionService(store.Selections(), store.Classes(), cfg.IOTimeout)),
		Payment:    handler.NewPaymentHandler(payments),
		Enrollment: handler.NewEnrollmentHandler(service.NewEnrollmentService(store.Payments(), cfg.IOTimeout)),
		Audit:      handler.NewAuditHandler(audit),
	})

	return &testServer{handler: h, proc: proc, store: store}
}

func (s *testServer) do(t *testing.T, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, email string) map[string]string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/jwt", map[string]any{"email": email, "name": "Test"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return map[string]string{"Authorization": "Bearer " + resp.Token}
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users", map[string]any{"email": email, "name": "Test"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		InsertedID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.InsertedID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Banner(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Adventure server listening", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_BootstrapAdmin(t *testing.T) {
	s := newTestServer(t)
	auth := s.token(t, "boss@example.com")
	id := s.register(t, "boss@example.com")

	rec := s.do(t, http.MethodGet, "/users/admin/boss@example.com", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["admin"])

	rec = s.do(t, http.MethodGet, "/users", nil, auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, "/users/admin/"+id, nil, auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	withBootstrap := map[string]string{"Authorization": auth["Authorization"], "X-Bootstrap-Token": bootstrapToken}
	rec = s.do(t, http.MethodPatch, "/users/admin/"+id, nil, withBootstrap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["modifiedCount"])

	rec = s.do(t, http.MethodGet, "/users/admin/BOSS@example.com", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["admin"])

	rec = s.do(t, http.MethodGet, "/users", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	// Bootstrap is single use once an admin exists.
	studentID := s.register(t, "student@example.com")
	studentAuth := s.token(t, "student@example.com")
	rec = s.do(t, http.MethodPatch, "/users/admin/"+studentID, nil, map[string]string{
		"Authorization":     studentAuth["Authorization"],
		"X-Bootstrap-Token": bootstrapToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/audit?action=role.promote", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := decodeBody(t, rec)["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func TestRouter_PaymentFlow(t *testing.T) {
	s := newTestServer(t)

	s.proc.On("CreateIntent", mock.Anything, processor.IntentRequest{
		Amount:             5000,
		Currency:           "usd",
		PaymentMethodTypes: []string{"card"},
	}).Return(processor.Intent{ID: "pi_flow", ClientSecret: "pi_flow_secret"}, nil).Once()
	s.proc.On("RetrieveIntent", mock.Anything, "pi_flow").Return(processor.Intent{
		ID: "pi_flow", Amount: 5000, Currency: "usd", Status: processor.StatusSucceeded,
	}, nil)

	rec := s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": "50.00"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_flow_secret", decodeBody(t, rec)["clientSecret"])

	payment := map[string]any{
		"email":         "learner@example.com",
		"price":         50,
		"transactionId": "pi_flow",
		"classIds":      []string{"c1", "c2"},
	}

	rec = s.do(t, http.MethodPost, "/payments", payment, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	firstID := decodeBody(t, rec)["insertedId"]

	rec = s.do(t, http.MethodPost, "/payments", payment, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstID, decodeBody(t, rec)["insertedId"])

	rec = s.do(t, http.MethodGet, "/enrolled?email=learner@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var enrolled []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrolled))
	require.Len(t, enrolled, 1)
	assert.Equal(t, "pi_flow", enrolled[0]["transactionId"])
	assert.Equal(t, []any{"c1", "c2"}, enrolled[0]["classIds"])

	rec = s.do(t, http.MethodGet, "/enrolled?email=nobody@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	s.proc.AssertExpectations(t)
}

func TestRouter_PaymentRejectsUnverified(t *testing.T) {
	s := newTestServer(t)
	s.proc.On("RetrieveIntent", mock.Anything, "pi_pending").Return(processor.Intent{
		ID: "pi_pending", Amount: 5000, Currency: "usd", Status: "requires_payment_method",
	}, nil)

	rec := s.do(t, http.MethodPost, "/payments", map[string]any{
		"email":         "learner@example.com",
		"price":         50,
		"transactionId": "pi_pending",
	}, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "PAYMENT_NOT_VERIFIED", decodeBody(t, rec)["code"])

	rec = s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_AMOUNT", decodeBody(t, rec)["code"])
}

func TestRouter_PaymentIntentRejectsExtremeExponent(t *testing.T) {
	s := newTestServer(t)

	for _, price := range []string{`1e-10000000`, `1e3000000`, `"1e-3000000"`} {
		start := time.Now()
		rec := s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": json.RawMessage(price)}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code, price)
		assert.Equal(t, "INVALID_AMOUNT", decodeBody(t, rec)["code"], price)
		assert.Less(t, rec.Body.Len(), 512, price)
		assert.Less(t, time.Since(start), 250*time.Millisecond, price)
	}

	s.proc.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestRouter_Unauthenticated(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/select"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/admin/a@b.com"},
		{http.MethodPatch, "/users/instructor/abc"},
		{http.MethodPost, "/class"},
		{http.MethodGet, "/myclass"},
		{http.MethodDelete, "/select/abc"},
		{http.MethodGet, "/audit"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":true,"message":"unauthorized access"}`, rec.Body.String())
		})
	}

	rec := s.do(t, http.MethodGet, "/select", nil, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ClassesAndSelections(t *testing.T) {
	s := newTestServer(t)
	studentAuth := s.token(t, "student@example.com")
	s.register(t, "student@example.com")

	rec := s.do(t, http.MethodPost, "/class", map[string]any{"className": "Rock Climbing", "price": 40}, studentAuth)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":true,"message":"forbidden access"}`, rec.Body.String())

	outsiderAuth := s.token(t, "outsider@example.com")
	rec = s.do(t, http.MethodPost, "/class", map[string]any{"className": "Kayaking", "price": 40}, outsiderAuth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/class", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/select", map[string]any{"classId": "c-1", "className": "Kayaking", "price": 40}, studentAuth)
	require.Equal(t, http.StatusCreated, rec.Code)
	selectionID, _ := decodeBody(t, rec)["insertedId"].(string)
	require.NotEmpty(t, selectionID)

	rec = s.do(t, http.MethodGet, "/select?email=someone@example.com", nil, studentAuth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/select?email=student@example.com", nil, studentAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	var selections []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &selections))
	assert.Len(t, selections, 1)

	rec = s.do(t, http.MethodDelete, "/select/"+selectionID, nil, outsiderAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["deletedCount"])

	rec = s.do(t, http.MethodDelete, "/select/"+selectionID, nil, studentAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["deletedCount"])
}

func TestRouter_Docs(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/openapi.yaml", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/create-payment-intent")

	rec = s.do(t, http.MethodGet, "/swagger", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_TokenIssuanceGatedByIssuerKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(issuerKey), bcrypt.MinCost)
	require.NoError(t, err)

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.TokenIssuerKeyHash = string(hash)
	})
	claim := map[string]any{"email": "boss@example.com"}

	rec := s.do(t, http.MethodPost, "/jwt", claim, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeBody(t, rec)["code"])

	rec = s.do(t, http.MethodPost, "/jwt", claim, map[string]string{"X-Issuer-Key": "guess"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/jwt", claim, map[string]string{"X-Issuer-Key": issuerKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["token"])
}

// Without an issuer key, /jwt signs any email, so an anonymous caller can
// act as an existing admin. Deployments close this with TOKEN_ISSUER_KEY_HASH.
func TestRouter_OpenIssuanceTrustsClaimedEmail(t *testing.T) {
	s := newTestServer(t)
	bossID := s.register(t, "boss@example.com")
	bossAuth := s.token(t, "boss@example.com")

	rec := s.do(t, http.MethodPatch, "/users/admin/"+bossID, nil, map[string]string{
		"Authorization":     bossAuth["Authorization"],
		"X-Bootstrap-Token": bootstrapToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	malloryID := s.register(t, "mallory@example.com")
	rec = s.do(t, http.MethodPatch, "/users/admin/"+malloryID, nil, s.token(t, "boss@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
