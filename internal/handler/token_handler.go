package handler

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

const issuerKeyHeader = "X-Issuer-Key"

type TokenHandler struct {
	tokens        *service.TokenService
	issuerKeyHash []byte
}

// NewTokenHandler builds the /jwt handler. When issuerKeyHash (a bcrypt hash)
// is set, only callers presenting the matching X-Issuer-Key get a token;
// otherwise issuance is open.
func NewTokenHandler(tokens *service.TokenService, issuerKeyHash string) *TokenHandler {
	h := &TokenHandler{tokens: tokens}
	if issuerKeyHash != "" {
		h.issuerKeyHash = []byte(issuerKeyHash)
	}
	return h
}

// Issue signs whatever identity object the client posts.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if !h.issuerAllowed(r) {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	var claim model.IdentityClaim
	if err := decodeJSON(w, r, &claim); err != nil {
		writeError(w, err)
		return
	}
	if claim == nil {
		claim = model.IdentityClaim{}
	}

	token, err := h.tokens.Issue(claim)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}

func (h *TokenHandler) issuerAllowed(r *http.Request) bool {
	if len(h.issuerKeyHash) == 0 {
		return true
	}

	key := strings.TrimSpace(r.Header.Get(issuerKeyHeader))
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.issuerKeyHash, []byte(key)) == nil
}
