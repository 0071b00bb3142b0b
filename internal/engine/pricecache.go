package engine

import (
	"time"

	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// IsStale reports whether a cache entry updated at updatedAt is older than
// threshold as of now. Monotonic in elapsed time: once stale, always stale
// for the same updatedAt.
func IsStale(updatedAt, now time.Time, threshold time.Duration) bool {
	return now.Sub(updatedAt) > threshold
}

// LiveRate returns the USD->THB rate from the fx pseudo-symbol entry, or the
// configured fallback when the cache has no usable entry.
func LiveRate(cache map[string]model.PriceCacheEntry, fallback decimal.Decimal) decimal.Decimal {
	if entry, ok := cache[model.FxSymbol]; ok && entry.Price.IsPositive() {
		return entry.Price
	}
	return fallback
}

// ApplyCache overlays cached market prices onto the asset list and returns
// the result as a copy. Fund-code bound assets get currentValue = units *
// cached NAV; sub-assets of group assets get currentValue = qty * cached
// price, both rounded to 2 decimals and only when the held quantity is
// positive (a zero holding keeps its last value rather than collapsing to a
// meaningless zero). Assets without a binding, or whose binding is absent
// from the cache, pass through unchanged: the function is total and never
// fails on missing data.
func ApplyCache(assets []model.Asset, cache map[string]model.PriceCacheEntry) []model.Asset {
	res := make([]model.Asset, len(assets))
	for i, a := range assets {
		if a.FundCode != "" {
			if entry, ok := cache[a.FundCode]; ok && a.Units.IsPositive() {
				a.CurrentValue = Round2(a.Units.Mul(entry.Price))
				updated := entry.UpdatedAt
				a.NavUpdatedAt = &updated
			}
		}

		if a.Category.IsGroup() && len(a.SubAssets) > 0 {
			subs := make([]model.SubAsset, len(a.SubAssets))
			for j, sub := range a.SubAssets {
				if sub.Symbol != "" {
					if entry, ok := cache[sub.Symbol]; ok && sub.Qty.IsPositive() {
						sub.CurrentValue = Round2(sub.Qty.Mul(entry.Price))
						updated := entry.UpdatedAt
						sub.PriceUpdatedAt = &updated
					}
				}
				subs[j] = sub
			}
			a.SubAssets = subs

			updated := latestSubUpdate(subs)
			if updated != nil {
				a.PriceUpdatedAt = updated
			}
		}

		res[i] = a
	}
	return res
}

func latestSubUpdate(subs []model.SubAsset) *time.Time {
	var latest *time.Time
	for _, sub := range subs {
		if sub.PriceUpdatedAt == nil {
			continue
		}
		if latest == nil || sub.PriceUpdatedAt.After(*latest) {
			t := *sub.PriceUpdatedAt
			latest = &t
		}
	}
	return latest
}
