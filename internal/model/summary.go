package model

import "github.com/shopspring/decimal"

// AssetView is an asset enriched with derived analytics for presentation.
// PL fields and SharePct are rounded to 2 decimals.
type AssetView struct {
	Asset
	PL       decimal.Decimal `json:"pl"`
	PLPct    decimal.Decimal `json:"plPct"`
	SharePct decimal.Decimal `json:"sharePct"`
}

type ProjectionPoint struct {
	Month   int             `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

type PortfolioSummary struct {
	TotalInvest   decimal.Decimal `json:"totalInvest"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalSpec     decimal.Decimal `json:"totalSpec"`
	NetWorth      decimal.Decimal `json:"netWorth"`
	TotalPL       decimal.Decimal `json:"totalPl"`
	TotalPLPct    decimal.Decimal `json:"totalPlPct"`
	SpecCapLimit  decimal.Decimal `json:"specCapLimit"`
	SpecOver      decimal.Decimal `json:"specOver"`

	CategoryShares map[Category]decimal.Decimal `json:"categoryShares"`
	Projection     []ProjectionPoint            `json:"projection"`
}

// PortfolioView is the full derived state handed to the presentation layer.
// Rate is the USD->THB rate used for display-time conversion.
type PortfolioView struct {
	Assets   []AssetView      `json:"assets"`
	Settings Settings         `json:"settings"`
	Summary  PortfolioSummary `json:"summary"`
	Rate     decimal.Decimal  `json:"rate"`
}
