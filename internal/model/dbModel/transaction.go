package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID         int64               `db:"id"`
	UserID     string              `db:"user_id"`
	AssetID    string              `db:"asset_id"`
	SubAssetID *string             `db:"sub_asset_id"`
	Type       string              `db:"type"`
	AmountTHB  decimal.Decimal     `db:"amount_thb"`
	AmountUSD  decimal.NullDecimal `db:"amount_usd"`
	Units      decimal.NullDecimal `db:"units"`
	Qty        decimal.NullDecimal `db:"qty"`
	Currency   string              `db:"currency"`
	Date       time.Time           `db:"date"`
	Notes      *string             `db:"notes"`
	CreatedAt  time.Time           `db:"created_at"`
}
