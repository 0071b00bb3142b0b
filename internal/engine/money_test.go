package engine

import (
	"testing"

	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToDisplayAmount(t *testing.T) {
	tests := []struct {
		name   string
		thb    string
		target model.Currency
		rate   string
		want   string
	}{
		{name: "THB passes through", thb: "1234.567", target: model.THB, rate: "35", want: "1234.57"},
		{name: "USD divides by rate", thb: "500", target: model.USD, rate: "35", want: "14.29"},
		{name: "zero rate falls back to THB", thb: "500", target: model.USD, rate: "0", want: "500"},
		{name: "exact division", thb: "330", target: model.USD, rate: "33", want: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDisplayAmount(dec(tt.thb), tt.target, dec(tt.rate))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ToDisplayAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToTHB(t *testing.T) {
	got := ToTHB(dec("14.29"), dec("35"))
	if !got.Equal(dec("500.15")) {
		t.Errorf("ToTHB() = %s, want 500.15", got)
	}
}
