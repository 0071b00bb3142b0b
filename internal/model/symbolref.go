package model

import "strings"

// SymbolRef is a distinct auto-price binding found in a portfolio: either a
// fund code (NAV lookup) or a market symbol (quote lookup).
type SymbolRef struct {
	Symbol string
	Type   PriceType
}

// PriceTypeForSymbol classifies a market symbol by its exchange suffix:
// Thai SET listings carry the ".BK" Yahoo suffix, everything else is
// treated as a US listing.
func PriceTypeForSymbol(symbol string) PriceType {
	if strings.HasSuffix(strings.ToUpper(symbol), ".BK") {
		return PriceTypeThaiStock
	}
	return PriceTypeUSStock
}

// CollectSymbolRefs gathers every auto-price binding referenced by the
// asset list: fund codes on assets and market symbols on sub-assets of
// group assets. Duplicates are collapsed, order follows first appearance.
func CollectSymbolRefs(assets []Asset) []SymbolRef {
	seen := make(map[string]struct{})
	refs := make([]SymbolRef, 0)

	add := func(ref SymbolRef) {
		if ref.Symbol == "" {
			return
		}
		if _, ok := seen[ref.Symbol]; ok {
			return
		}
		seen[ref.Symbol] = struct{}{}
		refs = append(refs, ref)
	}

	for _, a := range assets {
		if a.FundCode != "" {
			add(SymbolRef{Symbol: a.FundCode, Type: PriceTypeFund})
		}
		for _, sub := range a.SubAssets {
			if sub.Symbol != "" {
				add(SymbolRef{Symbol: sub.Symbol, Type: PriceTypeForSymbol(sub.Symbol)})
			}
		}
	}

	return refs
}
