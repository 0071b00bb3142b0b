// Package engine implements the valuation core: ledger summation, cost-basis
// derivation with legacy fallback, price-cache application, group rollups and
// portfolio analytics. Every function is a pure derivation over the inputs it
// is given; the package holds no state and never touches I/O.
package engine

import (
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary value to 2 decimal places. Applied only at
// persistence and display boundaries; internal arithmetic stays unrounded.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToDisplayAmount converts a canonical THB value into the target display
// currency using the supplied USD->THB rate. THB values pass through. The
// rate must come from the live fx cache entry or the configured fallback,
// never a hidden literal.
func ToDisplayAmount(thb decimal.Decimal, target model.Currency, rate decimal.Decimal) decimal.Decimal {
	if target != model.USD || !rate.IsPositive() {
		return Round2(thb)
	}
	return Round2(thb.Div(rate))
}

// ToTHB converts a raw USD amount into THB at the supplied rate.
func ToTHB(usd decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return Round2(usd.Mul(rate))
}
