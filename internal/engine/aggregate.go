package engine

import (
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// GroupTotals sums invested and currentValue over an asset's sub-assets.
// The empty sum is zero.
func GroupTotals(a model.Asset) (invested, currentValue decimal.Decimal) {
	for _, sub := range a.SubAssets {
		invested = invested.Add(sub.Invested)
		currentValue = currentValue.Add(sub.CurrentValue)
	}
	return invested, currentValue
}

// Normalize replaces every group asset's invested/currentValue with its
// sub-asset rollup; the computed rollup is always trusted over whatever was
// stored. Non-group assets pass through unchanged. Idempotent; must run
// after valuation and cache application so the sub-assets already carry
// ledger and price effects.
func Normalize(assets []model.Asset) []model.Asset {
	res := make([]model.Asset, len(assets))
	for i, a := range assets {
		if a.Category.IsGroup() {
			a.Invested, a.CurrentValue = GroupTotals(a)
		}
		res[i] = a
	}
	return res
}
