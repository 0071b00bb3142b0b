package engine

import (
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type ValuationSource int

const (
	// SourceManual: no buy transactions exist, the stored manual fields are
	// authoritative.
	SourceManual ValuationSource = iota
	// SourceLedger: at least one buy transaction exists, the ledger is the
	// sole source of truth for cost basis and quantity.
	SourceLedger
)

// Valuation is the derived cost basis of a single asset or sub-asset. The
// Source discriminant is selected once per read; callers never re-branch on
// "is the transaction list empty".
type Valuation struct {
	Source      ValuationSource
	Invested    decimal.Decimal
	InvestedUSD *decimal.Decimal
	Units       decimal.Decimal
	Qty         decimal.Decimal
}

func derive(buys []model.Transaction, currency model.Currency, manual Valuation) Valuation {
	if len(buys) == 0 {
		manual.Source = SourceManual
		return manual
	}

	thb, usd := SumBuys(buys)
	v := Valuation{
		Source:   SourceLedger,
		Invested: thb,
		Units:    SumUnits(buys),
		Qty:      SumQty(buys),
	}
	if currency == model.USD {
		v.InvestedUSD = &usd
	}
	return v
}

// DeriveAsset computes the effective valuation of a top-level asset from the
// full transaction set.
func DeriveAsset(a model.Asset, txs []model.Transaction) Valuation {
	buys := Buys(TransactionsFor(txs, a.ID, nil))
	return derive(buys, a.Currency, Valuation{
		Invested:    a.Invested,
		InvestedUSD: a.InvestedUSD,
		Units:       a.Units,
	})
}

// DeriveSubAsset computes the effective valuation of a holding inside a
// stock-group asset.
func DeriveSubAsset(assetID string, sub model.SubAsset, txs []model.Transaction) Valuation {
	buys := Buys(TransactionsFor(txs, assetID, &sub.ID))
	return derive(buys, sub.Currency, Valuation{
		Invested:    sub.Invested,
		InvestedUSD: sub.InvestedUSD,
		Qty:         sub.Qty,
	})
}

// EffectiveAssets returns a copy of the asset list with every asset and
// sub-asset's invested/investedUSD/units/qty replaced by its derived
// valuation. CurrentValue is never touched here: it is owned by price
// updates, not the ledger. The inputs are left unmodified so the derivation
// can be recomputed on every read.
func EffectiveAssets(assets []model.Asset, txs []model.Transaction) []model.Asset {
	res := make([]model.Asset, len(assets))
	for i, a := range assets {
		v := DeriveAsset(a, txs)
		a.Invested = v.Invested
		a.InvestedUSD = v.InvestedUSD
		a.Units = v.Units

		if len(a.SubAssets) > 0 {
			subs := make([]model.SubAsset, len(a.SubAssets))
			for j, sub := range a.SubAssets {
				sv := DeriveSubAsset(a.ID, sub, txs)
				sub.Invested = sv.Invested
				sub.InvestedUSD = sv.InvestedUSD
				sub.Qty = sv.Qty
				subs[j] = sub
			}
			a.SubAssets = subs
		}

		res[i] = a
	}
	return res
}
