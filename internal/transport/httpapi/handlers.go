package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/natthaphong/portfolio_tracker/internal/engine"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/service"
	"github.com/natthaphong/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("can't encode response", slog.String("err", err.Error()))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-level sentinel errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	view, err := s.service.GetPortfolio(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

type portfolioRequest struct {
	Assets   []model.Asset  `json:"assets"`
	Settings model.Settings `json:"settings"`
}

func (s *Server) handleSavePortfolio(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.service.SavePortfolio(r.Context(), userID, req.Assets, req.Settings)

	// The write is debounced; acknowledge acceptance, not completion.
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	assetID := r.URL.Query().Get("assetId")
	if assetID == "" {
		respondError(w, http.StatusBadRequest, "assetId query parameter is required")
		return
	}

	var subAssetID *string
	if v := r.URL.Query().Get("subAssetId"); v != "" {
		subAssetID = &v
	}

	txs, err := s.service.GetHistory(r.Context(), userID, assetID, subAssetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, txs)
}

type transactionRequest struct {
	Type       string           `json:"type"`
	AssetID    string           `json:"assetId"`
	SubAssetID *string          `json:"subAssetId,omitempty"`
	Currency   string           `json:"currency"`
	AmountTHB  decimal.Decimal  `json:"amountThb"`
	AmountUSD  *decimal.Decimal `json:"amountUsd,omitempty"`
	Units      *decimal.Decimal `json:"units,omitempty"`
	Qty        *decimal.Decimal `json:"qty,omitempty"`
	Date       *time.Time       `json:"date,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

func (s *Server) handleLogTransaction(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry := engine.Entry{
		UserID:     userID,
		AssetID:    req.AssetID,
		SubAssetID: req.SubAssetID,
		Currency:   model.Currency(req.Currency),
		AmountTHB:  req.AmountTHB,
		AmountUSD:  req.AmountUSD,
		Units:      req.Units,
		Qty:        req.Qty,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}

	tx, err := s.service.LogTransaction(r.Context(), model.TransactionKind(req.Type), entry)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.service.DeleteTransaction(r.Context(), userID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	report, err := s.service.ExportReport(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if report.DownloadLink != "" {
		w.Header().Set("X-Download-Link", report.DownloadLink)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(report.Content); err != nil {
		slog.Error("can't write report response", slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())), slog.String("err", err.Error()))
	}
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RefreshPrices(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
