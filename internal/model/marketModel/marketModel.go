package marketModel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single market quote in the quote's own currency.
type Quote struct {
	Symbol   string
	Price    decimal.Decimal
	Currency string
	Date     time.Time
}

// FundNav is the latest published NAV of a mutual fund, in THB.
type FundNav struct {
	Code string
	Nav  decimal.Decimal
	Date time.Time
}
