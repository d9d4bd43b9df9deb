package handler

import (
	"net/http"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var account model.Account
	if err := decodeJSON(w, r, &account); err != nil {
		writeError(w, err)
		return
	}

	result, created, err := h.accounts.Register(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, model.MessageResponse{Message: "user exists"})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
