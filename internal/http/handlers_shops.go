package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"khata/internal/core"
)

type shopRequest struct {
	Name            string `json:"name"`
	Owner           string `json:"owner"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	MonthlyRent     string `json:"monthly_rent"`
	ElectricityRate string `json:"electricity_rate"`
	RentStartDate   string `json:"rent_start_date"`
	YearlyIncrease  string `json:"yearly_increase_percent"`
}

type shopResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Owner                string `json:"owner"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	MonthlyRentPaise     int64  `json:"monthly_rent_paise"`
	MonthlyRent          string `json:"monthly_rent"`
	ElectricityRatePaise int64  `json:"electricity_rate_paise"`
	ElectricityRate      string `json:"electricity_rate"`
	RentStartDate        string `json:"rent_start_date"`
	LastRentUpdate       string `json:"last_rent_update"`
	YearlyIncreaseBps    int64  `json:"yearly_increase_bps"`
	CreatedAt            string `json:"created_at"`
}

func toShopResponse(shop core.Shop) shopResponse {
	return shopResponse{
		ID:                   shop.ID,
		Name:                 shop.Name,
		Owner:                shop.Owner,
		Phone:                shop.Phone,
		Address:              shop.Address,
		MonthlyRentPaise:     shop.MonthlyRent.Paise,
		MonthlyRent:          core.FormatRupees(shop.MonthlyRent.Paise),
		ElectricityRatePaise: shop.ElectricityRate.Paise,
		ElectricityRate:      core.FormatRupees(shop.ElectricityRate.Paise),
		RentStartDate:        shop.RentStartDate.String(),
		LastRentUpdate:       shop.LastRentUpdate.String(),
		YearlyIncreaseBps:    shop.YearlyIncreaseBps,
		CreatedAt:            shop.CreatedAt.Format(time.RFC3339),
	}
}

// shopFromRequest builds a Shop from user input. Shop money fields use the
// lenient coercion rule: bad input becomes zero with an audit log instead of
// failing the request, because historic records were imported with blanks.
func (s *Server) shopFromRequest(r *http.Request, req shopRequest) (core.Shop, error) {
	rent, coerced := core.CoerceAmount(req.MonthlyRent)
	if coerced {
		slog.WarnContext(r.Context(), "Coerced unparseable shop amount to zero",
			"field", "monthly_rent", "input", req.MonthlyRent)
	}
	rate, coerced := core.CoerceAmount(req.ElectricityRate)
	if coerced {
		slog.WarnContext(r.Context(), "Coerced unparseable shop amount to zero",
			"field", "electricity_rate", "input", req.ElectricityRate)
	}

	startDate, err := parseDateField("rent_start_date", req.RentStartDate)
	if err != nil {
		return core.Shop{}, err
	}

	// An omitted percentage stays negative, meaning never set; escalation
	// is skipped for such shops.
	bps := int64(-1)
	if strings.TrimSpace(req.YearlyIncrease) != "" {
		bps, err = core.ParsePercentBps(req.YearlyIncrease)
		if err != nil {
			return core.Shop{}, err
		}
	}

	return core.Shop{
		Name:              sanitizeInput(req.Name),
		Owner:             sanitizeInput(req.Owner),
		Phone:             sanitizeInput(req.Phone),
		Address:           sanitizeInput(req.Address),
		MonthlyRent:       rent,
		ElectricityRate:   rate,
		RentStartDate:     startDate,
		LastRentUpdate:    startDate,
		YearlyIncreaseBps: bps,
	}, nil
}

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.store.ListShops(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]shopResponse, 0, len(shops))
	for _, shop := range shops {
		out = append(out, toShopResponse(shop))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := s.store.GetShop(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShopResponse(shop))
}

func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	shop, err := s.shopFromRequest(r, req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := shop.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateShop(r.Context(), shop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusCreated, toShopResponse(created))
}

func (s *Server) handleUpdateShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	existing, err := s.store.GetShop(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	shop, err := s.shopFromRequest(r, req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	shop.ID = existing.ID
	// The escalation clock is owned by bill creation, not by edits.
	shop.LastRentUpdate = existing.LastRentUpdate
	shop.CreatedAt = existing.CreatedAt
	if err := shop.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := s.store.UpdateShop(r.Context(), shop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, toShopResponse(updated))
}

func (s *Server) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteShop(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.purgeBalances()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type rentIncreaseResponse struct {
	ShouldIncrease   bool   `json:"should_increase"`
	NewRentPaise     int64  `json:"new_rent_paise"`
	NewRent          string `json:"new_rent"`
	IncreasePaise    int64  `json:"increase_paise"`
	Increase         string `json:"increase"`
	PeriodsElapsed   int    `json:"periods_elapsed"`
	NextIncreaseDate string `json:"next_increase_date"`
}

func (s *Server) handleRentIncrease(w http.ResponseWriter, r *http.Request) {
	info, err := s.billing.RentIncreasePreview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentIncreaseResponse{
		ShouldIncrease:   info.ShouldIncrease,
		NewRentPaise:     info.NewRent.Paise,
		NewRent:          core.FormatRupees(info.NewRent.Paise),
		IncreasePaise:    info.IncreaseAmount.Paise,
		Increase:         core.FormatRupees(info.IncreaseAmount.Paise),
		PeriodsElapsed:   info.PeriodsElapsed,
		NextIncreaseDate: info.NextIncreaseDate.String(),
	})
}
