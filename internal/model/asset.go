package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	THB Currency = "THB"
	USD Currency = "USD"
)

type Category string

const (
	CategoryCash       Category = "cash"
	CategoryFund       Category = "fund"
	CategoryBond       Category = "bond"
	CategoryGold       Category = "gold"
	CategoryCrypto     Category = "crypto"
	CategoryThaiStocks Category = "thai_stocks"
	CategoryUSStocks   Category = "us_stocks"
)

// IsGroup reports whether assets of this category hold sub-assets. Group
// categories are the closed set of "stock group" types: their invested and
// currentValue are always computed from the sub-assets, never stored
// authoritatively.
func (c Category) IsGroup() bool {
	return c == CategoryThaiStocks || c == CategoryUSStocks
}

// Asset is a top-level portfolio line item. All canonical amounts are THB;
// InvestedUSD is meaningful only when Currency is USD. When the asset has at
// least one buy transaction the ledger overrides Invested/InvestedUSD/Units
// on every read (see engine.Derive), so the stored fields act as legacy
// manual values only.
type Asset struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     Category         `json:"category"`
	Currency     Currency         `json:"currency"`
	Speculative  bool             `json:"speculative"`
	Invested     decimal.Decimal  `json:"invested"`
	InvestedUSD  *decimal.Decimal `json:"investedUsd,omitempty"`
	CurrentValue decimal.Decimal  `json:"currentValue"`
	Units        decimal.Decimal  `json:"units"`
	FundCode     string           `json:"fundCode,omitempty"`
	SubAssets    []SubAsset       `json:"subAssets,omitempty"`

	// Advisory markers of the last price application, never used in
	// derivation.
	NavUpdatedAt   *time.Time `json:"navUpdatedAt,omitempty"`
	PriceUpdatedAt *time.Time `json:"priceUpdatedAt,omitempty"`
}

// SubAsset is a single holding inside a stock-group asset. Symbol is the
// optional market-quote binding; Qty is the number of shares held.
type SubAsset struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Currency     Currency         `json:"currency"`
	Invested     decimal.Decimal  `json:"invested"`
	InvestedUSD  *decimal.Decimal `json:"investedUsd,omitempty"`
	CurrentValue decimal.Decimal  `json:"currentValue"`
	Qty          decimal.Decimal  `json:"qty"`
	Symbol       string           `json:"symbol,omitempty"`

	PriceUpdatedAt *time.Time `json:"priceUpdatedAt,omitempty"`
}

// Settings are the per-user portfolio settings stored alongside the assets.
type Settings struct {
	DCA        decimal.Decimal `json:"dca"`
	SpecCapPct decimal.Decimal `json:"specCapPct"`
}
