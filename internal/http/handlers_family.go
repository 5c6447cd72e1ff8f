package http

import (
	"fmt"
	"net/http"
	"time"

	"khata/internal/core"
)

type familyMemberRequest struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

type familyMemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Relation  string `json:"relation"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

func toFamilyMemberResponse(member core.FamilyMember) familyMemberResponse {
	return familyMemberResponse{
		ID:        member.ID,
		Name:      member.Name,
		Relation:  string(member.Relation),
		IsActive:  member.IsActive,
		CreatedAt: member.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListFamilyMembers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]familyMemberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, toFamilyMemberResponse(member))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req familyMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	member := core.FamilyMember{
		Name:     sanitizeInput(req.Name),
		Relation: core.Relation(req.Relation),
		IsActive: true,
	}
	if err := member.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateFamilyMember(r.Context(), member)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFamilyMemberResponse(created))
}

func (s *Server) handleUpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req familyMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	member := core.FamilyMember{
		ID:       r.PathValue("id"),
		Name:     sanitizeInput(req.Name),
		Relation: core.Relation(req.Relation),
		IsActive: true,
	}
	if err := member.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.store.UpdateFamilyMember(r.Context(), member); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyMemberResponse(member))
}

// handleDeactivateFamilyMember marks a member inactive. The row stays so
// past expense and income entries keep resolving their person.
func (s *Server) handleDeactivateFamilyMember(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeactivateFamilyMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type familyExpenseRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	PaidBy      string `json:"paid_by"`
	Method      string `json:"method"`
}

type familyExpenseResponse struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	PaidBy      string `json:"paid_by"`
	Method      string `json:"method"`
	CreatedAt   string `json:"created_at"`
}

func toFamilyExpenseResponse(expense core.FamilyExpense) familyExpenseResponse {
	return familyExpenseResponse{
		ID:          expense.ID,
		Category:    string(expense.Category),
		Description: expense.Description,
		AmountPaise: expense.Amount.Paise,
		Amount:      core.FormatRupees(expense.Amount.Paise),
		Date:        expense.Date.String(),
		PaidBy:      expense.PaidBy,
		Method:      string(expense.Method),
		CreatedAt:   expense.CreatedAt.Format(time.RFC3339),
	}
}

func familyExpenseFromRequest(req familyExpenseRequest) (core.FamilyExpense, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.FamilyExpense{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.FamilyExpense{}, err
	}
	return core.FamilyExpense{
		Category:    core.ExpenseCategory(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		PaidBy:      sanitizeInput(req.PaidBy),
		Method:      core.PaymentMethod(req.Method),
	}, nil
}

func (s *Server) handleListFamilyExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListFamilyExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]familyExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		out = append(out, toFamilyExpenseResponse(expense))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFamilyExpense(w http.ResponseWriter, r *http.Request) {
	var req familyExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	expense, err := familyExpenseFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := expense.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateFamilyExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toFamilyExpenseResponse(created))
}

func (s *Server) handleUpdateFamilyExpense(w http.ResponseWriter, r *http.Request) {
	var req familyExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	expense, err := familyExpenseFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	expense.ID = r.PathValue("id")
	if err := expense.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.store.UpdateFamilyExpense(r.Context(), expense); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toFamilyExpenseResponse(expense))
}

func (s *Server) handleDeleteFamilyExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFamilyExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type familyIncomeRequest struct {
	Source      string `json:"source"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	ReceivedBy  string `json:"received_by"`
	Method      string `json:"method"`
}

type familyIncomeResponse struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Description string `json:"description"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	ReceivedBy  string `json:"received_by"`
	Method      string `json:"method"`
	CreatedAt   string `json:"created_at"`
}

func toFamilyIncomeResponse(income core.FamilyIncome) familyIncomeResponse {
	return familyIncomeResponse{
		ID:          income.ID,
		Source:      string(income.Source),
		Description: income.Description,
		AmountPaise: income.Amount.Paise,
		Amount:      core.FormatRupees(income.Amount.Paise),
		Date:        income.Date.String(),
		ReceivedBy:  income.ReceivedBy,
		Method:      string(income.Method),
		CreatedAt:   income.CreatedAt.Format(time.RFC3339),
	}
}

func familyIncomeFromRequest(req familyIncomeRequest) (core.FamilyIncome, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.FamilyIncome{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.FamilyIncome{}, err
	}
	return core.FamilyIncome{
		Source:      core.IncomeSource(req.Source),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		ReceivedBy:  sanitizeInput(req.ReceivedBy),
		Method:      core.PaymentMethod(req.Method),
	}, nil
}

func (s *Server) handleListFamilyIncome(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListFamilyIncome(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]familyIncomeResponse, 0, len(entries))
	for _, income := range entries {
		out = append(out, toFamilyIncomeResponse(income))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFamilyIncome(w http.ResponseWriter, r *http.Request) {
	var req familyIncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	income, err := familyIncomeFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := income.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateFamilyIncome(r.Context(), income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toFamilyIncomeResponse(created))
}

func (s *Server) handleUpdateFamilyIncome(w http.ResponseWriter, r *http.Request) {
	var req familyIncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	income, err := familyIncomeFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	income.ID = r.PathValue("id")
	if err := income.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.store.UpdateFamilyIncome(r.Context(), income); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toFamilyIncomeResponse(income))
}

func (s *Server) handleDeleteFamilyIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFamilyIncome(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
