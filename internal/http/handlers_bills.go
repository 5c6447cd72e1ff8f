package http

import (
	"fmt"
	"net/http"
	"time"

	"khata/internal/core"
)

type billItemRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type billRequest struct {
	ShopID     string            `json:"shop_id"`
	BillNumber string            `json:"bill_number"`
	BillDate   string            `json:"bill_date"`
	DueDate    string            `json:"due_date"`
	Items      []billItemRequest `json:"items"`
}

type billItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
}

type billResponse struct {
	ID             string             `json:"id"`
	ShopID         string             `json:"shop_id"`
	BillNumber     string             `json:"bill_number"`
	BillDate       string             `json:"bill_date"`
	DueDate        string             `json:"due_date"`
	Items          []billItemResponse `json:"items"`
	TotalPaise     int64              `json:"total_paise"`
	Total          string             `json:"total"`
	PaidPaise      int64              `json:"paid_paise"`
	Paid           string             `json:"paid"`
	RemainingPaise int64              `json:"remaining_paise"`
	Remaining      string             `json:"remaining"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
}

func toBillResponse(bill core.Bill) billResponse {
	items := make([]billItemResponse, 0, len(bill.Items))
	for _, item := range bill.Items {
		items = append(items, billItemResponse{
			ID:          item.ID,
			Description: item.Description,
			AmountPaise: item.Amount.Paise,
			Amount:      core.FormatRupees(item.Amount.Paise),
		})
	}
	return billResponse{
		ID:             bill.ID,
		ShopID:         bill.ShopID,
		BillNumber:     bill.BillNumber,
		BillDate:       bill.BillDate.String(),
		DueDate:        bill.DueDate.String(),
		Items:          items,
		TotalPaise:     bill.Total.Paise,
		Total:          core.FormatRupees(bill.Total.Paise),
		PaidPaise:      bill.Paid.Paise,
		Paid:           core.FormatRupees(bill.Paid.Paise),
		RemainingPaise: bill.Remaining.Paise,
		Remaining:      core.FormatRupees(bill.Remaining.Paise),
		Status:         string(bill.Status),
		CreatedAt:      bill.CreatedAt.Format(time.RFC3339),
	}
}

// billFromRequest parses a bill. Unlike shop amounts, bill item amounts are
// strict: a typo in a line item must fail loudly, not silently zero a charge.
func billFromRequest(req billRequest) (core.Bill, error) {
	billDate, err := parseDateField("bill_date", req.BillDate)
	if err != nil {
		return core.Bill{}, err
	}
	dueDate, err := parseDateField("due_date", req.DueDate)
	if err != nil {
		return core.Bill{}, err
	}

	items := make([]core.BillItem, 0, len(req.Items))
	for i, item := range req.Items {
		amount, err := core.ParseAmount(item.Amount)
		if err != nil {
			return core.Bill{}, fmt.Errorf("items[%d].amount %q: %w", i, item.Amount, err)
		}
		items = append(items, core.BillItem{
			Description: sanitizeInput(item.Description),
			Amount:      amount,
		})
	}

	return core.Bill{
		ShopID:     req.ShopID,
		BillNumber: sanitizeInput(req.BillNumber),
		BillDate:   billDate,
		DueDate:    dueDate,
		Items:      items,
	}, nil
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	var (
		bills []core.Bill
		err   error
	)
	if shopID := r.URL.Query().Get("shop_id"); shopID != "" {
		bills, err = s.store.ListBillsByShop(r.Context(), shopID)
	} else {
		bills, err = s.store.ListBills(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]billResponse, 0, len(bills))
	for _, bill := range bills {
		out = append(out, toBillResponse(bill))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.store.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	bill, err := billFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := bill.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.billing.CreateBill(r.Context(), bill)
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toBillResponse(created))
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	existing, err := s.store.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	bill, err := billFromRequest(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	bill.ID = existing.ID
	if bill.ShopID == "" {
		bill.ShopID = existing.ShopID
	}
	if err := bill.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := s.store.UpdateBill(r.Context(), bill)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toBillResponse(updated))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type penaltyResponse struct {
	Bill          billResponse `json:"bill"`
	HasPenalty    bool         `json:"has_penalty"`
	PenaltyPaise  int64        `json:"penalty_paise"`
	PenaltyAmount string       `json:"penalty_amount"`
	OverdueDays   int          `json:"overdue_days"`
	WarningType   string       `json:"warning_type"`
	Message       string       `json:"message"`
}

func (s *Server) handleBillPenalty(w http.ResponseWriter, r *http.Request) {
	bill, info, err := s.billing.BillPenalty(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, penaltyResponse{
		Bill:          toBillResponse(bill),
		HasPenalty:    info.HasPenalty,
		PenaltyPaise:  info.PenaltyAmount.Paise,
		PenaltyAmount: core.FormatRupees(info.PenaltyAmount.Paise),
		OverdueDays:   info.OverdueDays,
		WarningType:   string(info.WarningType),
		Message:       info.Message,
	})
}
