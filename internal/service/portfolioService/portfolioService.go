package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/data/repository"
	"github.com/natthaphong/portfolio_tracker/internal/engine"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/model/marketModel"
	"github.com/natthaphong/portfolio_tracker/internal/service"
	"github.com/natthaphong/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type Repository interface {
	LoadPortfolio(ctx context.Context, userID string) (assets []model.Asset, settings model.Settings, err error)
	SavePortfolio(ctx context.Context, userID string, assets []model.Asset, settings model.Settings) error
	GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error
	GetPriceCache(ctx context.Context, symbols []string) (map[string]model.PriceCacheEntry, error)
	UpsertPriceCache(ctx context.Context, entries []model.PriceCacheEntry) error
	GetTrackedSymbols(ctx context.Context) ([]model.SymbolRef, error)
}

type Cache interface {
	SetPrices(ctx context.Context, entries []model.PriceCacheEntry) error
	GetPrices(ctx context.Context, symbols []string) (map[string]model.PriceCacheEntry, error)
}

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (marketModel.Quote, error)
	GetExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

type FundApi interface {
	GetFundNav(ctx context.Context, fundCode string) (marketModel.FundNav, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, view model.PortfolioView, txs []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// Report is a generated portfolio export. DownloadLink is empty when cloud
// upload is disabled or failed; the file bytes are always usable.
type Report struct {
	FileName     string
	Content      []byte
	DownloadLink string
}

type pendingSave struct {
	assets   []model.Asset
	settings model.Settings
}

type PortfolioService struct {
	cfg      *config.Config
	repo     Repository
	cache    Cache
	quoteApi QuoteApi
	fundApi  FundApi
	reports  ReportGenerator
	storage  CloudStorage

	mu      sync.Mutex
	pending map[string]pendingSave
	timers  map[string]*time.Timer
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	quoteApi QuoteApi,
	fundApi FundApi,
	reports ReportGenerator,
	storage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:      cfg,
		repo:     repo,
		cache:    cache,
		quoteApi: quoteApi,
		fundApi:  fundApi,
		reports:  reports,
		storage:  storage,
		pending:  make(map[string]pendingSave),
		timers:   make(map[string]*time.Timer),
	}
}

func fxRef() model.SymbolRef {
	return model.SymbolRef{Symbol: model.FxSymbol, Type: model.PriceTypeFx}
}

func (s *PortfolioService) fallbackRate() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.Pricing.FallbackUsdThb)
}

// GetPortfolio loads the stored portfolio, overlays ledger-derived cost
// basis and cached market prices, and returns the fully derived view. A user
// without a stored document gets an empty portfolio, not an error.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (model.PortfolioView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	assets, settings, err := s.repo.LoadPortfolio(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("got error from repo.LoadPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PortfolioView{}, err
		}
		assets = nil
		settings = model.Settings{}
	}

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioView{}, err
	}

	effective := engine.EffectiveAssets(assets, txs)

	refs := append(model.CollectSymbolRefs(effective), fxRef())
	priceMap := s.getPrices(ctx, refs)

	applied := engine.ApplyCache(effective, priceMap)
	normalized := engine.Normalize(applied)

	views, summary := engine.Summarize(normalized, settings, decimal.NewFromFloat(s.cfg.Portfolio.MonthlyGrowth))

	return model.PortfolioView{
		Assets:   views,
		Settings: settings,
		Summary:  summary,
		Rate:     engine.LiveRate(priceMap, s.fallbackRate()),
	}, nil
}

// SavePortfolio schedules a debounced write of the full portfolio document.
// Rapid successive calls for the same user collapse into one write carrying
// the last state.
func (s *PortfolioService) SavePortfolio(ctx context.Context, userID string, assets []model.Asset, settings model.Settings) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SavePortfolio"

	slog.Debug("SavePortfolio scheduled", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))

	// The flush outlives the request that scheduled it.
	bgCtx := utils.CtxWithRqID(context.WithoutCancel(ctx), rqID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[userID] = pendingSave{assets: assets, settings: settings}

	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
	}
	s.timers[userID] = time.AfterFunc(s.cfg.Portfolio.SaveDebounce, func() {
		s.flush(bgCtx, userID)
	})

	// Cache-on-save: warm the price cache for any bindings the saved state
	// references. Best effort, never blocks the save acknowledgment.
	if refs := model.CollectSymbolRefs(assets); len(refs) > 0 {
		go s.getPrices(bgCtx, refs)
	}
}

// FlushPendingSaves writes out every debounced save immediately. Called on
// shutdown so a pending write is never lost to the debounce window.
func (s *PortfolioService) FlushPendingSaves(ctx context.Context) {
	s.mu.Lock()
	userIDs := make([]string, 0, len(s.pending))
	for userID := range s.pending {
		userIDs = append(userIDs, userID)
	}
	s.mu.Unlock()

	for _, userID := range userIDs {
		s.flush(ctx, userID)
	}
}

func (s *PortfolioService) flush(ctx context.Context, userID string) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.flush"

	s.mu.Lock()
	save, ok := s.pending[userID]
	delete(s.pending, userID)
	if timer, exists := s.timers[userID]; exists {
		timer.Stop()
		delete(s.timers, userID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if err := s.repo.SavePortfolio(ctx, userID, save.assets, save.settings); err != nil {
		slog.Error("got error from repo.SavePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID), slog.String("err", err.Error()))
	}
}

// LogTransaction normalizes, freezes and persists a ledger entry. For USD
// entries the missing leg (THB or USD) is computed once at the current rate
// and stored permanently; later rate moves never rewrite history.
func (s *PortfolioService) LogTransaction(ctx context.Context, kind model.TransactionKind, entry engine.Entry) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.LogTransaction"

	slog.Debug("LogTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("assetID", entry.AssetID), slog.String("kind", string(kind)))
	defer func() {
		slog.Debug("LogTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("assetID", entry.AssetID))
	}()

	if entry.UserID == "" || entry.AssetID == "" {
		return model.Transaction{}, fmt.Errorf("%w: userId and assetId are required", service.ErrInvalidInput)
	}

	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	if entry.Currency == model.USD {
		s.freezeUsdLegs(ctx, &entry)
	}

	var tx model.Transaction
	switch kind {
	case model.KindBuy:
		tx = engine.NewBuy(entry)
	case model.KindSell:
		tx = engine.NewSell(entry)
	case model.KindDividend:
		tx = engine.NewDividend(entry)
	case model.KindFee:
		tx = engine.NewFee(entry)
	default:
		return model.Transaction{}, fmt.Errorf("%w: unknown transaction type %q", service.ErrInvalidInput, kind)
	}

	saved, err := s.repo.AddTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return model.Transaction{}, fmt.Errorf("%w: %s", service.ErrInvalidInput, err.Error())
		}
		slog.Error("got error from repo.AddTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	return saved, nil
}

// freezeUsdLegs fills whichever amount leg the caller omitted using the
// current USD->THB rate.
func (s *PortfolioService) freezeUsdLegs(ctx context.Context, entry *engine.Entry) {
	rate := engine.LiveRate(s.getPrices(ctx, []model.SymbolRef{fxRef()}), s.fallbackRate())

	if entry.AmountTHB.IsZero() && entry.AmountUSD != nil && !entry.AmountUSD.IsZero() {
		entry.AmountTHB = engine.Round2(engine.ToTHB(entry.AmountUSD.Abs(), rate))
		return
	}

	if entry.AmountUSD == nil && !entry.AmountTHB.IsZero() {
		usd := engine.Round2(entry.AmountTHB.Abs().Div(rate))
		entry.AmountUSD = &usd
	}
}

func (s *PortfolioService) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	}()

	err := s.repo.DeleteTransaction(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetHistory returns the ledger entries for one asset (or one sub-asset)
// ordered newest-first.
func (s *PortfolioService) GetHistory(ctx context.Context, userID, assetID string, subAssetID *string) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("assetID", assetID))

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return engine.HistoryFor(txs, assetID, subAssetID), nil
}

// getPrices resolves cache entries for the given refs: hot cache first, then
// the durable table, then a bounded provider fetch for anything missing or
// stale. Always returns a usable map; per-symbol failures degrade to the
// last known entry.
func (s *PortfolioService) getPrices(ctx context.Context, refs []model.SymbolRef) map[string]model.PriceCacheEntry {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getPrices"

	symbols := make([]string, 0, len(refs))
	for _, ref := range refs {
		symbols = append(symbols, ref.Symbol)
	}

	priceMap, err := s.cache.GetPrices(ctx, symbols)
	if err != nil {
		slog.Warn("can't get prices from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		priceMap = make(map[string]model.PriceCacheEntry, len(symbols))
	}

	missing := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if _, ok := priceMap[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}

	if len(missing) > 0 {
		durable, err := s.repo.GetPriceCache(ctx, missing)
		if err != nil {
			slog.Warn("can't get prices from durable cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			for symbol, entry := range durable {
				priceMap[symbol] = entry
			}
		}
	}

	now := time.Now().UTC()
	staleRefs := make([]model.SymbolRef, 0, len(refs))
	for _, ref := range refs {
		entry, ok := priceMap[ref.Symbol]
		if !ok || engine.IsStale(entry.UpdatedAt, now, s.cfg.Pricing.StaleThreshold) {
			staleRefs = append(staleRefs, ref)
		}
	}

	if len(staleRefs) == 0 {
		return priceMap
	}

	fetched := s.fetchSymbols(ctx, staleRefs, engine.LiveRate(priceMap, s.fallbackRate()))
	for symbol, entry := range fetched {
		priceMap[symbol] = entry
	}

	if len(fetched) > 0 {
		entries := make([]model.PriceCacheEntry, 0, len(fetched))
		for _, entry := range fetched {
			entries = append(entries, entry)
		}
		go s.storeEntries(utils.CtxWithRqID(context.WithoutCancel(ctx), rqID), entries)
	}

	return priceMap
}

// fetchSymbols fetches quotes for the given refs with bounded concurrency.
// The fx pseudo-symbol, when present, is fetched first so USD quotes convert
// at the freshest rate. Failed symbols are logged and omitted.
func (s *PortfolioService) fetchSymbols(ctx context.Context, refs []model.SymbolRef, usdThb decimal.Decimal) map[string]model.PriceCacheEntry {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.fetchSymbols"

	fetched := make(map[string]model.PriceCacheEntry, len(refs))

	rest := make([]model.SymbolRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Type == model.PriceTypeFx {
			entry, err := s.fetchSymbol(ctx, ref, usdThb)
			if err != nil {
				slog.Warn("can't fetch exchange rate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
				continue
			}
			fetched[entry.Symbol] = entry
			usdThb = entry.Price
			continue
		}
		rest = append(rest, ref)
	}

	if len(rest) == 0 {
		return fetched
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.Pricing.FetchConcurrency)
	)

	for _, ref := range rest {
		wg.Add(1)
		sem <- struct{}{}
		go func(ref model.SymbolRef) {
			defer wg.Done()
			defer func() { <-sem }()

			entry, err := s.fetchSymbol(ctx, ref, usdThb)
			if err != nil {
				slog.Warn("can't fetch symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", ref.Symbol), slog.String("err", err.Error()))
				return
			}

			mu.Lock()
			fetched[entry.Symbol] = entry
			mu.Unlock()
		}(ref)
	}

	wg.Wait()

	return fetched
}

// fetchSymbol resolves one ref against its provider. Everything except the
// fx pseudo-symbol is stored in THB: USD quotes are converted at usdThb.
func (s *PortfolioService) fetchSymbol(ctx context.Context, ref model.SymbolRef, usdThb decimal.Decimal) (model.PriceCacheEntry, error) {
	now := time.Now().UTC()

	switch ref.Type {
	case model.PriceTypeFund:
		nav, err := s.fundApi.GetFundNav(ctx, ref.Symbol)
		if err != nil {
			return model.PriceCacheEntry{}, err
		}
		return model.PriceCacheEntry{
			Symbol:    ref.Symbol,
			Type:      model.PriceTypeFund,
			Price:     nav.Nav,
			Currency:  model.THB,
			PriceDate: nav.Date,
			Source:    model.SourceFinnomena,
			UpdatedAt: now,
		}, nil

	case model.PriceTypeFx:
		fx, err := s.quoteApi.GetExchangeRate(ctx)
		if err != nil {
			return model.PriceCacheEntry{}, err
		}
		return model.PriceCacheEntry{
			Symbol:    model.FxSymbol,
			Type:      model.PriceTypeFx,
			Price:     fx,
			Currency:  model.THB,
			PriceDate: now,
			Source:    model.SourceYahoo,
			UpdatedAt: now,
		}, nil

	default:
		quote, err := s.quoteApi.GetQuote(ctx, ref.Symbol)
		if err != nil {
			return model.PriceCacheEntry{}, err
		}

		price := quote.Price
		if quote.Currency == string(model.USD) {
			price = engine.ToTHB(price, usdThb)
		}

		return model.PriceCacheEntry{
			Symbol:    ref.Symbol,
			Type:      ref.Type,
			Price:     price,
			Currency:  model.THB,
			PriceDate: quote.Date,
			Source:    model.SourceYahoo,
			UpdatedAt: now,
		}, nil
	}
}

func (s *PortfolioService) storeEntries(ctx context.Context, entries []model.PriceCacheEntry) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.storeEntries"

	if err := s.repo.UpsertPriceCache(ctx, entries); err != nil {
		slog.Error("got error from repo.UpsertPriceCache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if err := s.cache.SetPrices(ctx, entries); err != nil {
		slog.Error("got error from cache.SetPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
}

// RefreshPrices refetches every tracked symbol with bounded concurrency and
// persists the result. Used by the on-demand refresh endpoint. A fetched
// entry whose price date is older than the stored one is discarded.
func (s *PortfolioService) RefreshPrices(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPrices"

	slog.Info("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Info("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	refs, existing, err := s.refreshTargets(ctx)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	fetched := s.fetchSymbols(ctx, refs, engine.LiveRate(existing, s.fallbackRate()))
	if len(fetched) == 0 {
		return errors.New("no symbols refreshed")
	}

	entries := keepFresher(fetched, existing)
	s.storeEntries(ctx, entries)

	slog.Info("prices refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("requested", len(refs)), slog.Int("stored", len(entries)))

	return nil
}

// RefreshPricesSerial refetches every tracked symbol one by one, pacing the
// requests. This is the scheduled-job variant: slower, but gentle on the
// upstream providers.
func (s *PortfolioService) RefreshPricesSerial(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPricesSerial"

	refs, existing, err := s.refreshTargets(ctx)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Every(s.cfg.Jobs.RefreshPricesDelay), 1)
	usdThb := engine.LiveRate(existing, s.fallbackRate())

	fetched := make(map[string]model.PriceCacheEntry, len(refs))
	for _, ref := range orderFxFirst(refs) {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		entry, err := s.fetchSymbol(ctx, ref, usdThb)
		if err != nil {
			slog.Warn("can't fetch symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", ref.Symbol), slog.String("err", err.Error()))
			continue
		}

		if ref.Type == model.PriceTypeFx {
			usdThb = entry.Price
		}
		fetched[entry.Symbol] = entry
	}

	if len(fetched) == 0 {
		return errors.New("no symbols refreshed")
	}

	entries := keepFresher(fetched, existing)
	s.storeEntries(ctx, entries)

	slog.Info("prices refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("requested", len(refs)), slog.Int("stored", len(entries)))

	return nil
}

// refreshTargets lists every tracked symbol plus the fx pseudo-symbol, along
// with the current durable cache for freshness comparison.
func (s *PortfolioService) refreshTargets(ctx context.Context) ([]model.SymbolRef, map[string]model.PriceCacheEntry, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.refreshTargets"

	refs, err := s.repo.GetTrackedSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTrackedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, nil, err
	}
	refs = append(refs, fxRef())

	symbols := make([]string, 0, len(refs))
	for _, ref := range refs {
		symbols = append(symbols, ref.Symbol)
	}

	existing, err := s.repo.GetPriceCache(ctx, symbols)
	if err != nil {
		slog.Warn("can't read durable cache, refreshing blind", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		existing = map[string]model.PriceCacheEntry{}
	}

	return refs, existing, nil
}

func orderFxFirst(refs []model.SymbolRef) []model.SymbolRef {
	ordered := make([]model.SymbolRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Type == model.PriceTypeFx {
			ordered = append(ordered, ref)
		}
	}
	for _, ref := range refs {
		if ref.Type != model.PriceTypeFx {
			ordered = append(ordered, ref)
		}
	}
	return ordered
}

// keepFresher drops fetched entries that would move a symbol's price date
// backwards relative to what is already stored.
func keepFresher(fetched, existing map[string]model.PriceCacheEntry) []model.PriceCacheEntry {
	entries := make([]model.PriceCacheEntry, 0, len(fetched))
	for symbol, entry := range fetched {
		if old, ok := existing[symbol]; ok && entry.PriceDate.Before(old.PriceDate) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// ExportReport builds the xlsx export of the derived portfolio plus the full
// transaction history, and uploads it to cloud storage when configured.
func (s *PortfolioService) ExportReport(ctx context.Context, userID string) (Report, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	view, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Report{}, err
	}

	fileBytes, ext, err := s.reports.Generate(ctx, view, txs)
	if err != nil {
		slog.Error("got error from reports.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Report{}, err
	}

	report := Report{
		FileName: fmt.Sprintf("portfolio_%s_%s%s", userID, time.Now().UTC().Format("20060102_150405"), ext),
		Content:  fileBytes,
	}

	if s.cfg.GoogleDrive.Enabled && s.storage != nil {
		link, err := s.storage.UploadFile(ctx, bytes.NewReader(report.Content), report.FileName)
		if err != nil {
			slog.Error("got error from storage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			report.DownloadLink = link
		}
	}

	return report, nil
}
