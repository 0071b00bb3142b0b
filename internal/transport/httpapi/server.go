// Package httpapi exposes the portfolio engine over a small JSON API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/internal/engine"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/service/portfolioService"
)

type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID string) (model.PortfolioView, error)
	SavePortfolio(ctx context.Context, userID string, assets []model.Asset, settings model.Settings)
	LogTransaction(ctx context.Context, kind model.TransactionKind, entry engine.Entry) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error
	GetHistory(ctx context.Context, userID, assetID string, subAssetID *string) ([]model.Transaction, error)
	RefreshPrices(ctx context.Context) error
	ExportReport(ctx context.Context, userID string) (portfolioService.Report, error)
}

type Server struct {
	router     *mux.Router
	httpServer *http.Server
	service    PortfolioService
	cfg        *config.Config
}

func NewServer(cfg *config.Config, service PortfolioService) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		cfg:     cfg,
	}

	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/{userID}/portfolio", s.handleGetPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/portfolio", s.handleSavePortfolio).Methods(http.MethodPut)

	api.HandleFunc("/users/{userID}/transactions", s.handleGetHistory).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/transactions", s.handleLogTransaction).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/users/{userID}/report", s.handleExportReport).Methods(http.MethodGet)

	api.HandleFunc("/prices/refresh", s.handleRefreshPrices).Methods(http.MethodPost)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "portfolio-tracker",
	})
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
