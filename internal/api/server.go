// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/tradejournal/internal/api/handler/api"
	"github.com/newthinker/tradejournal/internal/config"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/report"
	"github.com/newthinker/tradejournal/internal/storage/trade"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the trade journal API
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// Dependencies holds the collaborators the handlers read from. Archiver,
// Monitor and Metrics are optional.
type Dependencies struct {
	Config   *config.Config
	Store    trade.Store
	Archiver *report.Archiver
	Monitor  apihandler.Monitor
	Metrics  *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("trade store is required")
	}
	if deps.Config == nil {
		deps.Config = config.Defaults()
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	c := deps.Config
	account := apihandler.Account{ID: c.Account.ID, StartingBalance: c.Account.StartingBalance}
	settings := c.RiskSettings()

	trades := apihandler.NewTradesHandler(deps.Store, account, deps.Metrics)
	perf := apihandler.NewPerformanceHandler(deps.Store, account, deps.Metrics)
	setups := apihandler.NewSetupsHandler(c.PlaybookRubric(), deps.Metrics)
	riskHandler := apihandler.NewRiskHandler(deps.Store, account, settings, c.Kelly.MinSample, deps.Monitor, deps.Metrics)
	reports := apihandler.NewReportsHandler(deps.Store, account, settings, c.Kelly.MinSample, deps.Archiver, deps.Metrics)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/trades", trades.List)
	s.mux.HandleFunc("POST /api/v1/trades", trades.Create)
	s.mux.HandleFunc("GET /api/v1/trades/{id}", func(w http.ResponseWriter, r *http.Request) {
		trades.GetByID(w, r, r.PathValue("id"))
	})

	s.mux.HandleFunc("GET /api/v1/performance", perf.Get)
	s.mux.HandleFunc("POST /api/v1/performance", perf.Calculate)
	s.mux.HandleFunc("GET /api/v1/score", perf.Score)

	s.mux.HandleFunc("POST /api/v1/setups/grade", setups.Grade)

	s.mux.HandleFunc("GET /api/v1/risk", riskHandler.Get)
	s.mux.HandleFunc("GET /api/v1/risk/kelly", riskHandler.Kelly)
	s.mux.HandleFunc("POST /api/v1/risk/check", riskHandler.Check)
	s.mux.HandleFunc("GET /api/v1/risk/monitor", riskHandler.Monitor)

	s.mux.HandleFunc("POST /api/v1/reports", reports.Create)
	s.mux.HandleFunc("GET /api/v1/reports", reports.List)
	s.mux.HandleFunc("GET /api/v1/reports/{path...}", func(w http.ResponseWriter, r *http.Request) {
		reports.Get(w, r, r.PathValue("path"))
	})

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
