package portfolioService

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/data/repository"
	"github.com/natthaphong/portfolio_tracker/internal/engine"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/model/marketModel"
	"github.com/natthaphong/portfolio_tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fakeRepo struct {
	mu sync.Mutex

	assets   []model.Asset
	settings model.Settings
	noDoc    bool

	txs    []model.Transaction
	nextID int64

	priceCache map[string]model.PriceCacheEntry
	tracked    []model.SymbolRef

	saveCalls     int
	savedAssets   []model.Asset
	savedSettings model.Settings

	upserted []model.PriceCacheEntry
}

func (r *fakeRepo) LoadPortfolio(_ context.Context, _ string) ([]model.Asset, model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.noDoc {
		return nil, model.Settings{}, repository.ErrNotFound
	}
	return r.assets, r.settings, nil
}

func (r *fakeRepo) SavePortfolio(_ context.Context, _ string, assets []model.Asset, settings model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	r.savedAssets = assets
	r.savedSettings = settings
	return nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txs, nil
}

func (r *fakeRepo) AddTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	tx.ID = r.nextID
	tx.CreatedAt = time.Now().UTC()
	r.txs = append(r.txs, tx)
	return tx, nil
}

func (r *fakeRepo) DeleteTransaction(_ context.Context, _ string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tx := range r.txs {
		if tx.ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) GetPriceCache(_ context.Context, symbols []string) (map[string]model.PriceCacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[string]model.PriceCacheEntry)
	for _, symbol := range symbols {
		if entry, ok := r.priceCache[symbol]; ok {
			res[symbol] = entry
		}
	}
	return res, nil
}

func (r *fakeRepo) UpsertPriceCache(_ context.Context, entries []model.PriceCacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, entries...)
	return nil
}

func (r *fakeRepo) GetTrackedSymbols(_ context.Context) ([]model.SymbolRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracked, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]model.PriceCacheEntry
}

func (c *fakeCache) SetPrices(_ context.Context, entries []model.PriceCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]model.PriceCacheEntry)
	}
	for _, entry := range entries {
		c.entries[entry.Symbol] = entry
	}
	return nil
}

func (c *fakeCache) GetPrices(_ context.Context, symbols []string) (map[string]model.PriceCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[string]model.PriceCacheEntry)
	for _, symbol := range symbols {
		if entry, ok := c.entries[symbol]; ok {
			res[symbol] = entry
		}
	}
	return res, nil
}

type fakeQuoteApi struct {
	quotes map[string]marketModel.Quote
	fx     decimal.Decimal
	fxErr  error
}

func (a *fakeQuoteApi) GetQuote(_ context.Context, symbol string) (marketModel.Quote, error) {
	quote, ok := a.quotes[symbol]
	if !ok {
		return marketModel.Quote{}, errors.New("unknown symbol")
	}
	return quote, nil
}

func (a *fakeQuoteApi) GetExchangeRate(_ context.Context) (decimal.Decimal, error) {
	if a.fxErr != nil {
		return decimal.Decimal{}, a.fxErr
	}
	return a.fx, nil
}

type fakeFundApi struct {
	navs map[string]marketModel.FundNav
}

func (a *fakeFundApi) GetFundNav(_ context.Context, fundCode string) (marketModel.FundNav, error) {
	nav, ok := a.navs[fundCode]
	if !ok {
		return marketModel.FundNav{}, errors.New("unknown fund")
	}
	return nav, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Jobs: config.Jobs{
			RefreshPricesInterval: 6 * time.Hour,
			RefreshPricesDelay:    time.Millisecond,
		},
		Pricing: config.Pricing{
			StaleThreshold:   18 * time.Hour,
			FallbackUsdThb:   33,
			FetchConcurrency: 2,
		},
		Portfolio: config.Portfolio{
			SaveDebounce:  30 * time.Millisecond,
			MonthlyGrowth: 1.008,
		},
	}
}

func newTestService(repo *fakeRepo, quoteApi *fakeQuoteApi, fundApi *fakeFundApi) *PortfolioService {
	return New(testConfig(), repo, &fakeCache{}, quoteApi, fundApi, nil, nil)
}

func freshEntry(symbol string, priceType model.PriceType, price string) model.PriceCacheEntry {
	return model.PriceCacheEntry{
		Symbol:    symbol,
		Type:      priceType,
		Price:     dec(price),
		Currency:  model.THB,
		PriceDate: time.Now().UTC(),
		Source:    model.SourceYahoo,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestGetPortfolioDerivesView(t *testing.T) {
	repo := &fakeRepo{
		assets: []model.Asset{
			{
				ID:       "a1",
				Name:     "SCBNEXT",
				Category: model.CategoryFund,
				Currency: model.THB,
				Invested: dec("1000"),
				Units:    dec("100"),
				FundCode: "SCBNEXT(A)",
			},
		},
		settings: model.Settings{DCA: dec("500"), SpecCapPct: dec("10")},
		priceCache: map[string]model.PriceCacheEntry{
			"SCBNEXT(A)":   freshEntry("SCBNEXT(A)", model.PriceTypeFund, "12"),
			model.FxSymbol: freshEntry(model.FxSymbol, model.PriceTypeFx, "35"),
		},
	}

	svc := newTestService(repo, &fakeQuoteApi{}, &fakeFundApi{})

	view, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, view.Assets, 1)

	assert.True(t, view.Assets[0].CurrentValue.Equal(dec("1200")), "got %s", view.Assets[0].CurrentValue)
	assert.True(t, view.Rate.Equal(dec("35")))
	assert.True(t, view.Summary.NetWorth.Equal(dec("1200")))
	assert.Len(t, view.Summary.Projection, engine.ProjectionMonths+1)
}

func TestGetPortfolioEmptyForNewUser(t *testing.T) {
	repo := &fakeRepo{noDoc: true}
	quoteApi := &fakeQuoteApi{fxErr: errors.New("offline")}

	svc := newTestService(repo, quoteApi, &fakeFundApi{})

	view, err := svc.GetPortfolio(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, view.Assets)
	assert.True(t, view.Rate.Equal(dec("33")), "fallback rate expected, got %s", view.Rate)
}

func TestGetPortfolioRefreshesStaleFund(t *testing.T) {
	stale := freshEntry("SCBNEXT(A)", model.PriceTypeFund, "10")
	stale.UpdatedAt = time.Now().UTC().Add(-24 * time.Hour)

	repo := &fakeRepo{
		assets: []model.Asset{
			{ID: "a1", Name: "fund", Category: model.CategoryFund, Currency: model.THB, Invested: dec("1000"), Units: dec("100"), FundCode: "SCBNEXT(A)"},
		},
		priceCache: map[string]model.PriceCacheEntry{
			"SCBNEXT(A)":   stale,
			model.FxSymbol: freshEntry(model.FxSymbol, model.PriceTypeFx, "35"),
		},
	}
	fundApi := &fakeFundApi{navs: map[string]marketModel.FundNav{
		"SCBNEXT(A)": {Code: "SCBNEXT(A)", Nav: dec("12"), Date: time.Now().UTC()},
	}}

	svc := newTestService(repo, &fakeQuoteApi{}, fundApi)

	view, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, view.Assets, 1)
	assert.True(t, view.Assets[0].CurrentValue.Equal(dec("1200")), "stale NAV should be refetched, got %s", view.Assets[0].CurrentValue)
}

func TestLogTransactionFreezesUsdLeg(t *testing.T) {
	repo := &fakeRepo{
		priceCache: map[string]model.PriceCacheEntry{
			model.FxSymbol: freshEntry(model.FxSymbol, model.PriceTypeFx, "35"),
		},
	}

	svc := newTestService(repo, &fakeQuoteApi{}, &fakeFundApi{})

	tx, err := svc.LogTransaction(context.Background(), model.KindBuy, engine.Entry{
		UserID:    "u1",
		AssetID:   "a1",
		Currency:  model.USD,
		AmountUSD: decPtr("100"),
	})
	require.NoError(t, err)

	assert.True(t, tx.AmountTHB.Equal(dec("3500")), "got %s", tx.AmountTHB)
	require.NotNil(t, tx.AmountUSD)
	assert.True(t, tx.AmountUSD.Equal(dec("100")))
	assert.False(t, tx.Date.IsZero())
}

func TestLogTransactionSellStoresNegative(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeQuoteApi{}, &fakeFundApi{})

	tx, err := svc.LogTransaction(context.Background(), model.KindSell, engine.Entry{
		UserID:    "u1",
		AssetID:   "a1",
		Currency:  model.THB,
		AmountTHB: dec("500"),
		Units:     decPtr("10"),
	})
	require.NoError(t, err)

	assert.True(t, tx.AmountTHB.Equal(dec("-500")))
	require.NotNil(t, tx.Units)
	assert.True(t, tx.Units.Equal(dec("-10")))
}

func TestLogTransactionRejectsUnknownKind(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeQuoteApi{}, &fakeFundApi{})

	_, err := svc.LogTransaction(context.Background(), model.TransactionKind("swap"), engine.Entry{
		UserID:   "u1",
		AssetID:  "a1",
		Currency: model.THB,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLogTransactionRequiresIdentifiers(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeQuoteApi{}, &fakeFundApi{})

	_, err := svc.LogTransaction(context.Background(), model.KindBuy, engine.Entry{Currency: model.THB})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeQuoteApi{}, &fakeFundApi{})

	err := svc.DeleteTransaction(context.Background(), "u1", 42)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSavePortfolioDebounce(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeQuoteApi{}, &fakeFundApi{})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		svc.SavePortfolio(ctx, "u1", []model.Asset{{ID: "a1", Name: "v" + string(rune('0'+i))}}, model.Settings{})
	}

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.saveCalls == 1
	}, time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.savedAssets, 1)
	assert.Equal(t, "v4", repo.savedAssets[0].Name, "last write wins")
}

func TestFlushPendingSaves(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeQuoteApi{}, &fakeFundApi{})
	svc.cfg.Portfolio.SaveDebounce = time.Hour

	svc.SavePortfolio(context.Background(), "u1", []model.Asset{{ID: "a1"}}, model.Settings{})
	svc.FlushPendingSaves(context.Background())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 1, repo.saveCalls)
}

func TestRefreshPricesConvertsUsdQuotes(t *testing.T) {
	repo := &fakeRepo{
		tracked: []model.SymbolRef{{Symbol: "AAPL", Type: model.PriceTypeUSStock}},
	}
	quoteApi := &fakeQuoteApi{
		fx: dec("35"),
		quotes: map[string]marketModel.Quote{
			"AAPL": {Symbol: "AAPL", Price: dec("100"), Currency: "USD", Date: time.Now().UTC()},
		},
	}

	svc := newTestService(repo, quoteApi, &fakeFundApi{})

	err := svc.RefreshPrices(context.Background())
	require.NoError(t, err)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	bySymbol := make(map[string]model.PriceCacheEntry)
	for _, entry := range repo.upserted {
		bySymbol[entry.Symbol] = entry
	}

	require.Contains(t, bySymbol, "AAPL")
	assert.True(t, bySymbol["AAPL"].Price.Equal(dec("3500")), "USD quote stored in THB, got %s", bySymbol["AAPL"].Price)

	require.Contains(t, bySymbol, model.FxSymbol)
	assert.True(t, bySymbol[model.FxSymbol].Price.Equal(dec("35")))
}

func TestRefreshPricesSerialKeepsThaiQuotesUnconverted(t *testing.T) {
	repo := &fakeRepo{
		tracked: []model.SymbolRef{{Symbol: "PTT.BK", Type: model.PriceTypeThaiStock}},
	}
	quoteApi := &fakeQuoteApi{
		fx: dec("35"),
		quotes: map[string]marketModel.Quote{
			"PTT.BK": {Symbol: "PTT.BK", Price: dec("38.5"), Currency: "THB", Date: time.Now().UTC()},
		},
	}

	svc := newTestService(repo, quoteApi, &fakeFundApi{})

	err := svc.RefreshPricesSerial(context.Background())
	require.NoError(t, err)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	bySymbol := make(map[string]model.PriceCacheEntry)
	for _, entry := range repo.upserted {
		bySymbol[entry.Symbol] = entry
	}

	require.Contains(t, bySymbol, "PTT.BK")
	assert.True(t, bySymbol["PTT.BK"].Price.Equal(dec("38.5")))
}

func TestRefreshPricesDiscardsOlderPriceDate(t *testing.T) {
	existing := freshEntry("AAPL", model.PriceTypeUSStock, "3600")
	existing.PriceDate = time.Now().UTC()

	repo := &fakeRepo{
		tracked:    []model.SymbolRef{{Symbol: "AAPL", Type: model.PriceTypeUSStock}},
		priceCache: map[string]model.PriceCacheEntry{"AAPL": existing},
	}
	quoteApi := &fakeQuoteApi{
		fx: dec("35"),
		quotes: map[string]marketModel.Quote{
			"AAPL": {Symbol: "AAPL", Price: dec("100"), Currency: "USD", Date: time.Now().UTC().Add(-48 * time.Hour)},
		},
	}

	svc := newTestService(repo, quoteApi, &fakeFundApi{})

	err := svc.RefreshPrices(context.Background())
	require.NoError(t, err)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, entry := range repo.upserted {
		assert.NotEqual(t, "AAPL", entry.Symbol, "stale fetch must not overwrite a fresher cache row")
	}
}
