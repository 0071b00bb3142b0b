package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceCacheEntry struct {
	Symbol    string          `db:"symbol"`
	Type      string          `db:"type"`
	Price     decimal.Decimal `db:"price"`
	Currency  string          `db:"currency"`
	PriceDate time.Time       `db:"price_date"`
	Source    string          `db:"source"`
	UpdatedAt time.Time       `db:"updated_at"`
}
