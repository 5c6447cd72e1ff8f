package http

import (
	"fmt"
	"net/http"
	"time"

	"khata/internal/core"
)

type paymentRequest struct {
	BillID    string `json:"bill_id"`
	ShopID    string `json:"shop_id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
	Date      string `json:"date"`
	IsAdvance bool   `json:"is_advance"`
}

type paymentResponse struct {
	ID          string `json:"id"`
	BillID      string `json:"bill_id,omitempty"`
	ShopID      string `json:"shop_id"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date"`
	IsAdvance   bool   `json:"is_advance"`
	CreatedAt   string `json:"created_at"`
}

func toPaymentResponse(payment core.Payment) paymentResponse {
	return paymentResponse{
		ID:          payment.ID,
		BillID:      payment.BillID,
		ShopID:      payment.ShopID,
		AmountPaise: payment.Amount.Paise,
		Amount:      core.FormatRupees(payment.Amount.Paise),
		Method:      string(payment.Method),
		Reference:   payment.Reference,
		Notes:       payment.Notes,
		Date:        payment.Date.String(),
		IsAdvance:   payment.IsAdvance,
		CreatedAt:   payment.CreatedAt.Format(time.RFC3339),
	}
}

func paymentFromRequest(req paymentRequest) (core.Payment, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Payment{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.Payment{}, err
	}
	return core.Payment{
		BillID:    req.BillID,
		ShopID:    req.ShopID,
		Amount:    amount,
		Method:    core.PaymentMethod(req.Method),
		Reference: sanitizeInput(req.Reference),
		Notes:     sanitizeInput(req.Notes),
		Date:      date,
		IsAdvance: req.IsAdvance,
	}, nil
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []core.Payment
		err      error
	)
	if shopID := r.URL.Query().Get("shop_id"); shopID != "" {
		payments, err = s.store.ListPaymentsByShop(r.Context(), shopID)
	} else {
		payments, err = s.store.ListPayments(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, toPaymentResponse(payment))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.store.GetPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	payment, err := paymentFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := payment.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.billing.CreatePayment(r.Context(), payment)
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	payment, err := paymentFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	payment.ID = r.PathValue("id")
	if err := payment.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := s.billing.UpdatePayment(r.Context(), payment)
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.billing.DeletePayment(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
