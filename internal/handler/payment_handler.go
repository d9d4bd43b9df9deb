package handler

import (
	"net/http"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.payments.CreateIntent(r.Context(), req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Record stores a confirmed payment. Replays of an already recorded
// transaction answer 200 with the original id instead of 201.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var payment model.Payment
	if err := decodeJSON(w, r, &payment); err != nil {
		writeError(w, err)
		return
	}

	persisted, err := h.payments.RecordPayment(r.Context(), payment)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if persisted.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, model.InsertResult{Acknowledged: true, InsertedID: persisted.Payment.ID})
}
