package finnomenaApi

import (
	"context"
	"encoding/json"
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

type FinnomenaApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *FinnomenaApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.FinnomenaApi.Url)
	return &FinnomenaApi{client: client}
}

type rawNav struct {
	Status bool `json:"status"`
	Data   struct {
		Value   float64 `json:"value"`
		NavDate string  `json:"nav_date"`
	} `json:"data"`
}

// GetFundNav fetches the latest published NAV for a Thai mutual fund, in
// THB. An unknown fund code yields externalApi.ErrNotFound.
func (a *FinnomenaApi) GetFundNav(ctx context.Context, fundCode string) (marketModel.FundNav, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/fn3/api/fund/v2/public/funds/" + fundCode + "/nav/latest"

	slog.Debug("start FinnomenaApi.GetFundNav request", slog.String("rqID", rqID), slog.String("fundCode", fundCode))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing FinnomenaApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.FundNav{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return marketModel.FundNav{}, externalApi.ErrNotFound
	}

	raw := rawNav{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into rawNav", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.FundNav{}, err
	}

	if !raw.Status || raw.Data.Value <= 0 {
		return marketModel.FundNav{}, externalApi.ErrNotFound
	}

	date, err := time.Parse("2006-01-02", raw.Data.NavDate)
	if err != nil {
		// A NAV without a parseable date is still usable; fall back to now.
		slog.Warn("can't parse nav_date", slog.String("rqID", rqID), slog.String("navDate", raw.Data.NavDate))
		date = time.Now().UTC()
	}

	slog.Debug("FinnomenaApi.GetFundNav request complete", slog.String("rqID", rqID), slog.String("fundCode", fundCode))

	return marketModel.FundNav{
		Code: fundCode,
		Nav:  decimal.NewFromFloat(raw.Data.Value),
		Date: date,
	}, nil
}
