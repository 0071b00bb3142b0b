package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/internal/engine"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/service"
	"github.com/natthaphong/portfolio_tracker/internal/service/portfolioService"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	view model.PortfolioView

	savedUserID   string
	savedAssets   []model.Asset
	savedSettings model.Settings

	loggedKind  model.TransactionKind
	loggedEntry engine.Entry
	logErr      error

	deleteErr  error
	refreshErr error

	report portfolioService.Report
}

func (f *fakeService) GetPortfolio(_ context.Context, _ string) (model.PortfolioView, error) {
	return f.view, nil
}

func (f *fakeService) SavePortfolio(_ context.Context, userID string, assets []model.Asset, settings model.Settings) {
	f.savedUserID = userID
	f.savedAssets = assets
	f.savedSettings = settings
}

func (f *fakeService) LogTransaction(_ context.Context, kind model.TransactionKind, entry engine.Entry) (model.Transaction, error) {
	if f.logErr != nil {
		return model.Transaction{}, f.logErr
	}
	f.loggedKind = kind
	f.loggedEntry = entry
	return model.Transaction{ID: 1, UserID: entry.UserID, AssetID: entry.AssetID, Kind: kind}, nil
}

func (f *fakeService) DeleteTransaction(_ context.Context, _ string, _ int64) error {
	return f.deleteErr
}

func (f *fakeService) GetHistory(_ context.Context, _, _ string, _ *string) ([]model.Transaction, error) {
	return nil, nil
}

func (f *fakeService) RefreshPrices(_ context.Context) error {
	return f.refreshErr
}

func (f *fakeService) ExportReport(_ context.Context, _ string) (portfolioService.Report, error) {
	return f.report, nil
}

func newTestServer(svc *fakeService) *Server {
	return NewServer(&config.Config{HTTP: config.HTTP{Port: 0}}, svc)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetPortfolio(t *testing.T) {
	svc := &fakeService{
		view: model.PortfolioView{
			Rate: decimal.NewFromInt(35),
			Summary: model.PortfolioSummary{
				NetWorth: decimal.NewFromInt(1200),
			},
		},
	}
	srv := newTestServer(svc)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u1/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.PortfolioView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(35)))
	assert.True(t, got.Summary.NetWorth.Equal(decimal.NewFromInt(1200)))
}

func TestSavePortfolioAccepted(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	body := `{"assets":[{"id":"a1","name":"Gold","category":"gold","currency":"THB"}],"settings":{"dca":"500","specCapPct":"10"}}`

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/u1/portfolio", strings.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "u1", svc.savedUserID)
	require.Len(t, svc.savedAssets, 1)
	assert.Equal(t, "Gold", svc.savedAssets[0].Name)
}

func TestLogTransaction(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	body := `{"type":"buy","assetId":"a1","currency":"THB","amountThb":"1000","units":"50"}`

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/u1/transactions", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.KindBuy, svc.loggedKind)
	assert.Equal(t, "u1", svc.loggedEntry.UserID)
	assert.True(t, svc.loggedEntry.AmountTHB.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, svc.loggedEntry.Units)
	assert.True(t, svc.loggedEntry.Units.Equal(decimal.NewFromInt(50)))
}

func TestLogTransactionInvalidInput(t *testing.T) {
	svc := &fakeService{logErr: service.ErrInvalidInput}
	srv := newTestServer(svc)

	body := `{"type":"swap","assetId":"a1","currency":"THB"}`

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/u1/transactions", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogTransactionMalformedBody(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/u1/transactions", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/u1/transactions/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	srv := newTestServer(&fakeService{deleteErr: service.ErrNotFound})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/u1/transactions/7", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTransactionBadID(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/u1/transactions/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryRequiresAssetID(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u1/transactions", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportReport(t *testing.T) {
	svc := &fakeService{
		report: portfolioService.Report{
			FileName:     "portfolio_u1.xlsx",
			Content:      []byte("xlsx-bytes"),
			DownloadLink: "https://drive.google.com/file/d/abc/view",
		},
	}
	srv := newTestServer(svc)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u1/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio_u1.xlsx")
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", rec.Header().Get("X-Download-Link"))
}

func TestRefreshPrices(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prices/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
