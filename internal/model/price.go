package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceType string

const (
	PriceTypeThaiStock PriceType = "thai_stock"
	PriceTypeUSStock   PriceType = "us_stock"
	PriceTypeFund      PriceType = "fund"
	PriceTypeFx        PriceType = "fx"
)

type PriceSource string

const (
	SourceYahoo     PriceSource = "yahoo"
	SourceFinnomena PriceSource = "finnomena"
)

// FxSymbol is the pseudo-symbol whose cache entry holds the USD->THB rate
// itself rather than a THB price.
const FxSymbol = "USDTHB"

// PriceCacheEntry is a row of the persisted price_cache table. Price is
// already expressed in THB for every type except fx.
type PriceCacheEntry struct {
	Symbol    string          `json:"symbol"`
	Type      PriceType       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Currency  Currency        `json:"currency"`
	PriceDate time.Time       `json:"priceDate"`
	Source    PriceSource     `json:"source"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
