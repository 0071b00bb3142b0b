package engine

import (
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// ProjectionMonths is the horizon of the forward projection: month 0 plus
// one year.
const ProjectionMonths = 12

// Summarize computes the portfolio-level analytics over a normalized asset
// list. Ratios are computed from unrounded internals and rounded to 2
// decimals only on the way out.
func Summarize(assets []model.Asset, settings model.Settings, monthlyGrowth decimal.Decimal) ([]model.AssetView, model.PortfolioSummary) {
	var totalInvest, totalInvested, totalSpec decimal.Decimal

	for _, a := range assets {
		if a.Speculative {
			totalSpec = totalSpec.Add(a.CurrentValue)
			continue
		}
		totalInvest = totalInvest.Add(a.CurrentValue)
		totalInvested = totalInvested.Add(a.Invested)
	}

	views := make([]model.AssetView, len(assets))
	categoryTotals := make(map[model.Category]decimal.Decimal)
	for i, a := range assets {
		pl := a.CurrentValue.Sub(a.Invested)

		// Speculative assets and assets with zero invested report plPct = 0
		// even when pl is non-zero; a percentage against nothing is
		// meaningless.
		var plPct decimal.Decimal
		if !a.Speculative && a.Invested.IsPositive() {
			plPct = pl.Div(a.Invested).Mul(hundred)
		}

		var share decimal.Decimal
		if !a.Speculative && totalInvest.IsPositive() {
			share = a.CurrentValue.Div(totalInvest).Mul(hundred)
			categoryTotals[a.Category] = categoryTotals[a.Category].Add(a.CurrentValue)
		}

		views[i] = model.AssetView{
			Asset:    a,
			PL:       Round2(pl),
			PLPct:    Round2(plPct),
			SharePct: Round2(share),
		}
	}

	totalPL := totalInvest.Sub(totalInvested)
	var totalPLPct decimal.Decimal
	if totalInvested.IsPositive() {
		totalPLPct = totalPL.Div(totalInvested).Mul(hundred)
	}

	specCapLimit := totalInvest.Mul(settings.SpecCapPct).Div(hundred)
	specOver := totalSpec.Sub(specCapLimit)

	categoryShares := make(map[model.Category]decimal.Decimal, len(categoryTotals))
	for cat, total := range categoryTotals {
		categoryShares[cat] = Round2(total.Div(totalInvest).Mul(hundred))
	}

	summary := model.PortfolioSummary{
		TotalInvest:    Round2(totalInvest),
		TotalInvested:  Round2(totalInvested),
		TotalSpec:      Round2(totalSpec),
		NetWorth:       Round2(totalInvest.Add(totalSpec)),
		TotalPL:        Round2(totalPL),
		TotalPLPct:     Round2(totalPLPct),
		SpecCapLimit:   Round2(specCapLimit),
		SpecOver:       Round2(specOver),
		CategoryShares: categoryShares,
		Projection:     Project(totalInvest, settings.DCA, monthlyGrowth, ProjectionMonths),
	}

	return views, summary
}

// Project runs the deterministic forward recurrence b = b*growth + dca for
// the given number of months. The first point is the starting balance
// unmodified; the recurrence iterates on unrounded balances and rounds per
// point for presentation.
func Project(start, dca, monthlyGrowth decimal.Decimal, months int) []model.ProjectionPoint {
	points := make([]model.ProjectionPoint, 0, months+1)
	points = append(points, model.ProjectionPoint{Month: 0, Balance: Round2(start)})

	balance := start
	for m := 1; m <= months; m++ {
		balance = balance.Mul(monthlyGrowth).Add(dca)
		points = append(points, model.ProjectionPoint{Month: m, Balance: Round2(balance)})
	}
	return points
}
