package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// CreateCheckoutSession handles POST /payment-checkout-session
// Returns the hosted checkout redirect URL.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !h.bind(w, r, &req) {
		return
	}
	resp, err := h.payments.CreateCheckoutSession(r.Context(), callerOf(r), req)
	if err != nil {
		h.fail(w, r, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReconcilePayment handles PATCH /payment-success?session_id=
// Safe to repeat: later calls report the payment as already completed.
func (h *Handler) ReconcilePayment(w http.ResponseWriter, r *http.Request) {
	res, err := h.payments.ReconcilePayment(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.fail(w, r, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PaymentHistory handles GET /my-payment-history?email=
func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListPaymentHistory(r.Context(), callerOf(r), r.URL.Query().Get("email"))
	if err != nil {
		h.fail(w, r, err, "payments not found")
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
