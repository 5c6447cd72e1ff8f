package http

import (
	"net/http"

	"khata/internal/core"
	"khata/internal/services"
)

const balanceCacheKey = "dashboard"

type accountBalance struct {
	Paise  int64  `json:"paise"`
	Amount string `json:"amount"`
}

type balancesResponse struct {
	Cash     accountBalance `json:"cash"`
	Online   accountBalance `json:"online"`
	Family   accountBalance `json:"family"`
	Personal accountBalance `json:"personal"`
	Total    accountBalance `json:"total"`
}

func toBalance(m core.Money) accountBalance {
	return accountBalance{Paise: m.Paise, Amount: core.FormatRupees(m.Paise)}
}

func toBalancesResponse(snap services.BalanceSnapshot) balancesResponse {
	return balancesResponse{
		Cash:     toBalance(snap.Cash),
		Online:   toBalance(snap.Online),
		Family:   toBalance(snap.Family),
		Personal: toBalance(snap.Personal),
		Total:    toBalance(snap.Total),
	}
}

// handleDashboardBalances serves the account snapshot, cached briefly since
// it recomputes from the full books. With account and exclude_id query
// parameters it instead answers an uncached edit-preview balance for one
// account with a single record left out.
func (s *Server) handleDashboardBalances(w http.ResponseWriter, r *http.Request) {
	if account := r.URL.Query().Get("account"); account != "" {
		available, err := s.balances.AvailableExcluding(r.Context(),
			core.PaymentMethod(account), r.URL.Query().Get("exclude_id"))
		if err != nil {
			if isValidationError(err) {
				writeValidationError(w, err)
				return
			}
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]accountBalance{"available": toBalance(available)})
		return
	}

	if snap, ok := s.balanceCache.Get(balanceCacheKey); ok {
		balanceCacheHits.WithLabelValues("hit").Inc()
		writeJSON(w, http.StatusOK, toBalancesResponse(snap))
		return
	}
	balanceCacheHits.WithLabelValues("miss").Inc()

	snap, err := s.balances.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.balanceCache.Set(balanceCacheKey, snap)
	writeJSON(w, http.StatusOK, toBalancesResponse(snap))
}
