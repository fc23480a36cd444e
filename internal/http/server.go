package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budget/internal/analytics"
	"budget/internal/auth"
	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/services"
	"budget/internal/storage"
)

// Store is the slice of the repository the handlers read and write
// directly. Expense writes go through the ExpenseService instead so
// the mirror pipeline sees them.
type Store interface {
	AddIncome(ctx context.Context, userID int64, in core.Income) (int64, error)
	ListIncome(ctx context.Context, userID int64, from, to time.Time) ([]core.Income, error)
	DeleteIncome(ctx context.Context, userID, id int64) error

	UpsertBudgetPlan(ctx context.Context, userID int64, p core.BudgetPlan) error
	ListBudgetPlans(ctx context.Context, userID int64, month, year int) ([]core.BudgetPlan, error)
	ListAllBudgetPlans(ctx context.Context, userID int64) ([]core.BudgetPlan, error)
	DeleteBudgetPlan(ctx context.Context, userID int64, category, subcategory string, month, year int) error
	CopyBudgetPlans(ctx context.Context, userID int64, fromMonth, fromYear, toMonth, toYear int) (int64, error)

	MonthlyBalance(ctx context.Context, userID int64, month, year int) (core.MonthlyBalance, error)
	GetUsername(ctx context.Context, userID int64) (string, error)

	GetPreferences(ctx context.Context, userID int64) (storage.Preferences, error)
	SavePreferences(ctx context.Context, userID int64, p storage.Preferences) error
}

type Server struct {
	http.Server

	auth      *auth.Service
	expenses  *services.ExpenseService
	store     Store
	analytics *analytics.Service

	rateLimiter *rateLimiter

	// Bearer token -> user ID. Entries expire with the session TTL.
	sessions *cache.LRUCache[int64]
	// Marshaled insights responses, keyed per user and period.
	insightsCache *cache.LRUCache[[]byte]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, authSvc *auth.Service, expenses *services.ExpenseService, store Store, analyticsSvc *analytics.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		auth:          authSvc,
		expenses:      expenses,
		store:         store,
		analytics:     analyticsSvc,
		rateLimiter:   newRateLimiter(),
		sessions:      cache.NewLRUCache[int64](10000, 24*time.Hour),
		insightsCache: cache.NewLRUCache[[]byte](500, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.sessions)
	s.cacheManager.Register(s.insightsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("/api/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("/api/expenses", s.withMiddleware(s.requireAuth(s.handleExpenses)))
	mux.HandleFunc("/api/expenses/", s.withMiddleware(s.requireAuth(s.handleExpenseByID)))
	mux.HandleFunc("/api/income", s.withMiddleware(s.requireAuth(s.handleIncome)))
	mux.HandleFunc("/api/income/", s.withMiddleware(s.requireAuth(s.handleIncomeByID)))
	mux.HandleFunc("/api/budget", s.withMiddleware(s.requireAuth(s.handleBudget)))
	mux.HandleFunc("/api/budget/copy", s.withMiddleware(s.requireAuth(s.handleBudgetCopy)))
	mux.HandleFunc("/api/balance", s.withMiddleware(s.requireAuth(s.handleBalance)))
	mux.HandleFunc("/api/settings", s.withMiddleware(s.requireAuth(s.handleSettings)))

	mux.HandleFunc("/api/insights/reconciliation", s.withMiddleware(s.requireAuth(s.handleReconciliation)))
	mux.HandleFunc("/api/insights/forecast", s.withMiddleware(s.requireAuth(s.handleForecast)))
	mux.HandleFunc("/api/insights/anomalies", s.withMiddleware(s.requireAuth(s.handleAnomalies)))
	mux.HandleFunc("/api/insights/recommendations", s.withMiddleware(s.requireAuth(s.handleRecommendations)))

	mux.HandleFunc("/api/taxonomy", s.withMiddleware(s.handleTaxonomy))

	mux.HandleFunc("/api/import/backup", s.withMiddleware(s.requireAuth(s.handleImportBackup)))

	mux.HandleFunc("/api/export/expenses.csv", s.withMiddleware(s.requireAuth(s.handleExportCSV)))
	mux.HandleFunc("/api/export/report.xlsx", s.withMiddleware(s.requireAuth(s.handleExportWorkbook)))
	mux.HandleFunc("/api/export/backup.json", s.withMiddleware(s.requireAuth(s.handleExportBackup)))

	return s
}

// Shutdown stops the server and its background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
