package engine

import (
	"sort"
	"time"

	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Entry carries the caller-facing magnitudes of a new ledger operation. All
// amounts are non-negative; the kind constructors own the sign convention so
// it can never leak into calling code.
type Entry struct {
	UserID     string
	AssetID    string
	SubAssetID *string
	Currency   model.Currency
	AmountTHB  decimal.Decimal
	AmountUSD  *decimal.Decimal
	Units      *decimal.Decimal
	Qty        *decimal.Decimal
	Date       time.Time
	Notes      string
}

func NewBuy(e Entry) model.Transaction      { return e.toTransaction(model.KindBuy, false) }
func NewSell(e Entry) model.Transaction     { return e.toTransaction(model.KindSell, true) }
func NewDividend(e Entry) model.Transaction { return e.toTransaction(model.KindDividend, false) }
func NewFee(e Entry) model.Transaction      { return e.toTransaction(model.KindFee, false) }

// toTransaction normalizes magnitudes into the stored sign convention:
// sells are persisted as negative values, everything else as non-negative.
func (e Entry) toTransaction(kind model.TransactionKind, negate bool) model.Transaction {
	sign := func(d decimal.Decimal) decimal.Decimal {
		d = d.Abs()
		if negate {
			return d.Neg()
		}
		return d
	}
	signPtr := func(d *decimal.Decimal) *decimal.Decimal {
		if d == nil {
			return nil
		}
		v := sign(*d)
		return &v
	}

	return model.Transaction{
		UserID:     e.UserID,
		AssetID:    e.AssetID,
		SubAssetID: e.SubAssetID,
		Kind:       kind,
		AmountTHB:  sign(e.AmountTHB),
		AmountUSD:  signPtr(e.AmountUSD),
		Units:      signPtr(e.Units),
		Qty:        signPtr(e.Qty),
		Currency:   e.Currency,
		Date:       e.Date,
		Notes:      e.Notes,
	}
}

// TransactionsFor returns the entries targeting the given asset, and when
// subAssetID is non-nil the given sub-asset, in insertion order. Order does
// not affect the sums below.
func TransactionsFor(txs []model.Transaction, assetID string, subAssetID *string) []model.Transaction {
	res := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.AssetID != assetID {
			continue
		}
		if subAssetID == nil {
			if tx.SubAssetID != nil {
				continue
			}
		} else if tx.SubAssetID == nil || *tx.SubAssetID != *subAssetID {
			continue
		}
		res = append(res, tx)
	}
	return res
}

// HistoryFor returns the same subsequence as TransactionsFor ordered
// newest-first by (date, created_at) for history display.
func HistoryFor(txs []model.Transaction, assetID string, subAssetID *string) []model.Transaction {
	res := TransactionsFor(txs, assetID, subAssetID)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}

// Buys filters a subsequence down to kind=buy. Dividends and fees never
// contribute to cost basis, and sells are deliberately excluded: partial
// sells do not reduce the derived invested cost or quantity.
func Buys(txs []model.Transaction) []model.Transaction {
	res := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Kind == model.KindBuy {
			res = append(res, tx)
		}
	}
	return res
}

// SumBuys sums amount_thb and amount_usd (where present) over buy entries.
func SumBuys(txs []model.Transaction) (thb decimal.Decimal, usd decimal.Decimal) {
	for _, tx := range Buys(txs) {
		thb = thb.Add(tx.AmountTHB)
		if tx.AmountUSD != nil {
			usd = usd.Add(*tx.AmountUSD)
		}
	}
	return thb, usd
}

// SumUnits sums fund units over buy entries.
func SumUnits(txs []model.Transaction) decimal.Decimal {
	var units decimal.Decimal
	for _, tx := range Buys(txs) {
		if tx.Units != nil {
			units = units.Add(*tx.Units)
		}
	}
	return units
}

// SumQty sums share quantities over buy entries.
func SumQty(txs []model.Transaction) decimal.Decimal {
	var qty decimal.Decimal
	for _, tx := range Buys(txs) {
		if tx.Qty != nil {
			qty = qty.Add(*tx.Qty)
		}
	}
	return qty
}
