package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindBuy      TransactionKind = "buy"
	KindSell     TransactionKind = "sell"
	KindDividend TransactionKind = "dividend"
	KindFee      TransactionKind = "fee"
)

// Transaction is an immutable ledger entry. AmountTHB is always populated;
// for USD assets it is the conversion at the rate in effect when the entry
// was recorded, permanently frozen. Exactly one of Units/Qty is populated,
// chosen by the target's auto-price binding. Sell entries store negative
// magnitudes (see engine.NewSell); everything else stores non-negative.
type Transaction struct {
	ID         int64            `json:"id"`
	UserID     string           `json:"userId"`
	AssetID    string           `json:"assetId"`
	SubAssetID *string          `json:"subAssetId,omitempty"`
	Kind       TransactionKind  `json:"type"`
	AmountTHB  decimal.Decimal  `json:"amountThb"`
	AmountUSD  *decimal.Decimal `json:"amountUsd,omitempty"`
	Units      *decimal.Decimal `json:"units,omitempty"`
	Qty        *decimal.Decimal `json:"qty,omitempty"`
	Currency   Currency         `json:"currency"`
	Date       time.Time        `json:"date"`
	Notes      string           `json:"notes"`
	CreatedAt  time.Time        `json:"createdAt"`
}
