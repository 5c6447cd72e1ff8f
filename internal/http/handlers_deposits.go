package http

import (
	"fmt"
	"net/http"
	"time"

	"khata/internal/core"
)

type bankDepositRequest struct {
	Amount      string `json:"amount"`
	FromAccount string `json:"from_account"`
	BankName    string `json:"bank_name"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type bankDepositResponse struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	FromAccount string `json:"from_account"`
	BankName    string `json:"bank_name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

func toBankDepositResponse(deposit core.BankDeposit) bankDepositResponse {
	return bankDepositResponse{
		ID:          deposit.ID,
		AmountPaise: deposit.Amount.Paise,
		Amount:      core.FormatRupees(deposit.Amount.Paise),
		FromAccount: string(deposit.FromAccount),
		BankName:    deposit.BankName,
		Description: deposit.Description,
		Date:        deposit.Date.String(),
		CreatedAt:   deposit.CreatedAt.Format(time.RFC3339),
	}
}

func bankDepositFromRequest(req bankDepositRequest) (core.BankDeposit, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.BankDeposit{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.BankDeposit{}, err
	}
	return core.BankDeposit{
		Amount:      amount,
		FromAccount: core.PaymentMethod(req.FromAccount),
		BankName:    sanitizeInput(req.BankName),
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, nil
}

func (s *Server) handleListBankDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := s.store.ListBankDeposits(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bankDepositResponse, 0, len(deposits))
	for _, deposit := range deposits {
		out = append(out, toBankDepositResponse(deposit))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBankDeposit(w http.ResponseWriter, r *http.Request) {
	var req bankDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	deposit, err := bankDepositFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := deposit.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateBankDeposit(r.Context(), deposit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toBankDepositResponse(created))
}

func (s *Server) handleUpdateBankDeposit(w http.ResponseWriter, r *http.Request) {
	var req bankDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	deposit, err := bankDepositFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	deposit.ID = r.PathValue("id")
	if err := deposit.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.store.UpdateBankDeposit(r.Context(), deposit); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toBankDepositResponse(deposit))
}

func (s *Server) handleDeleteBankDeposit(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBankDeposit(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
