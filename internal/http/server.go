package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"khata/internal/cache"
	"khata/internal/config"
	"khata/internal/middleware/ratelimit"
	"khata/internal/middleware/security"
	"khata/internal/middleware/trace"
	"khata/internal/services"
	"khata/internal/storage"
)

// Server exposes the bookkeeping API over JSON. Handlers stay thin: they
// decode, validate, call a service or the store, and translate errors.
type Server struct {
	httpServer *http.Server

	billing  *services.BillingService
	balances *services.BalanceService
	store    *storage.SQLiteStore

	limiter      *ratelimit.Limiter
	clientIP     *security.ClientIPExtractor
	balanceCache *cache.LRUCache[services.BalanceSnapshot]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(cfg *config.Config, billing *services.BillingService, balances *services.BalanceService, store *storage.SQLiteStore) *Server {
	s := &Server{
		billing:      billing,
		balances:     balances,
		store:        store,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		clientIP:     security.NewClientIPExtractor(),
		balanceCache: cache.NewLRUCache[services.BalanceSnapshot](1, 30*time.Second),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.buildHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Reads are unthrottled; the limiter guards writes only.
	limited := s.limiter.Middleware(s.clientIP.ExtractClientIP, s.onRateLimited)(mux)
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			mux.ServeHTTP(w, r)
		}
	})
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(s.clientIP.ExtractClientIP).Middleware(handler)
	return handler
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	route := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, instrument(pattern, handler))
	}

	route("GET /api/shops", s.handleListShops)
	route("POST /api/shops", s.handleCreateShop)
	route("GET /api/shops/{id}", s.handleGetShop)
	route("PUT /api/shops/{id}", s.handleUpdateShop)
	route("DELETE /api/shops/{id}", s.handleDeleteShop)
	route("GET /api/shops/{id}/rent-increase", s.handleRentIncrease)

	route("GET /api/bills", s.handleListBills)
	route("POST /api/bills", s.handleCreateBill)
	route("GET /api/bills/{id}", s.handleGetBill)
	route("PUT /api/bills/{id}", s.handleUpdateBill)
	route("DELETE /api/bills/{id}", s.handleDeleteBill)
	route("GET /api/bills/{id}/penalty", s.handleBillPenalty)

	route("GET /api/payments", s.handleListPayments)
	route("POST /api/payments", s.handleCreatePayment)
	route("GET /api/payments/{id}", s.handleGetPayment)
	route("PUT /api/payments/{id}", s.handleUpdatePayment)
	route("DELETE /api/payments/{id}", s.handleDeletePayment)

	route("GET /api/family-members", s.handleListFamilyMembers)
	route("POST /api/family-members", s.handleCreateFamilyMember)
	route("PUT /api/family-members/{id}", s.handleUpdateFamilyMember)
	route("DELETE /api/family-members/{id}", s.handleDeactivateFamilyMember)

	route("GET /api/family-expenses", s.handleListFamilyExpenses)
	route("POST /api/family-expenses", s.handleCreateFamilyExpense)
	route("PUT /api/family-expenses/{id}", s.handleUpdateFamilyExpense)
	route("DELETE /api/family-expenses/{id}", s.handleDeleteFamilyExpense)

	route("GET /api/family-income", s.handleListFamilyIncome)
	route("POST /api/family-income", s.handleCreateFamilyIncome)
	route("PUT /api/family-income/{id}", s.handleUpdateFamilyIncome)
	route("DELETE /api/family-income/{id}", s.handleDeleteFamilyIncome)

	route("GET /api/bank-deposits", s.handleListBankDeposits)
	route("POST /api/bank-deposits", s.handleCreateBankDeposit)
	route("PUT /api/bank-deposits/{id}", s.handleUpdateBankDeposit)
	route("DELETE /api/bank-deposits/{id}", s.handleDeleteBankDeposit)

	route("GET /api/dashboard/balances", s.handleDashboardBalances)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	rateLimitedTotal.Inc()
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

// purgeBalances drops the cached dashboard snapshot after any mutation so
// the next read recomputes from the book streams.
func (s *Server) purgeBalances() {
	s.balanceCache.Purge()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Handler returns the assembled middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	slog.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops background workers. Safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
