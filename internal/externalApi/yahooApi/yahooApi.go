package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi"
	"github.com/natthaphong/portfolio_tracker/internal/model/marketModel"
	"github.com/natthaphong/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

// fxChartSymbol is the Yahoo symbol for the USD->THB exchange rate.
const fxChartSymbol = "THB=X"

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", "portfolio-tracker/1.0")
	return &YahooApi{client: client}
}

type rawChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches the latest market quote for a symbol, in the quote's own
// currency. A symbol Yahoo does not know yields externalApi.ErrNotFound.
func (a *YahooApi) GetQuote(ctx context.Context, symbol string) (marketModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/v8/finance/chart/%s", symbol)
	params := map[string]string{
		"interval": "1d",
		"range":    "1d",
	}

	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return marketModel.Quote{}, externalApi.ErrNotFound
	}

	raw := rawChart{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into rawChart", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.Quote{}, err
	}

	quote, err := a.parseRawChart(symbol, raw)
	if err != nil {
		return marketModel.Quote{}, err
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return quote, nil
}

// GetExchangeRate fetches the current USD->THB rate.
func (a *YahooApi) GetExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	quote, err := a.GetQuote(ctx, fxChartSymbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return quote.Price, nil
}

func (a *YahooApi) parseRawChart(symbol string, raw rawChart) (marketModel.Quote, error) {
	if len(raw.Chart.Result) == 0 {
		return marketModel.Quote{}, externalApi.ErrNotFound
	}

	meta := raw.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return marketModel.Quote{}, externalApi.ErrNotFound
	}

	price := decimal.NewFromFloat(meta.RegularMarketPrice)

	date := time.Unix(meta.RegularMarketTime, 0).UTC()
	if meta.RegularMarketTime == 0 {
		date = time.Now().UTC()
	}

	return marketModel.Quote{
		Symbol:   symbol,
		Price:    price,
		Currency: meta.Currency,
		Date:     date,
	}, nil
}
