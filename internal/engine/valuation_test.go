package engine

import (
	"testing"

	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDeriveAssetManualFallback(t *testing.T) {
	asset := model.Asset{
		ID:       "a1",
		Currency: model.USD,
		Invested: dec("9900"),
		InvestedUSD: decPtr("300"),
		Units:    dec("120.5"),
	}

	v := DeriveAsset(asset, nil)

	require.Equal(t, SourceManual, v.Source)
	require.True(t, v.Invested.Equal(dec("9900")))
	require.NotNil(t, v.InvestedUSD)
	require.True(t, v.InvestedUSD.Equal(dec("300")))
	require.True(t, v.Units.Equal(dec("120.5")))
}

func TestDeriveAssetLedgerOverridesManual(t *testing.T) {
	asset := model.Asset{
		ID:       "a1",
		Currency: model.THB,
		Invested: dec("99999"), // stale manual value, must be ignored
		Units:    dec("7"),
	}
	txs := []model.Transaction{
		{AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("1000"), Units: decPtr("10")},
		{AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("2000"), Units: decPtr("18.5")},
		{AssetID: "a1", Kind: model.KindDividend, AmountTHB: dec("55")},
	}

	v := DeriveAsset(asset, txs)

	require.Equal(t, SourceLedger, v.Source)
	require.True(t, v.Invested.Equal(dec("3000")))
	require.True(t, v.Units.Equal(dec("28.5")))
	require.Nil(t, v.InvestedUSD, "THB asset must not carry a USD cost basis")
}

func TestDeriveAssetUSDCostBasis(t *testing.T) {
	asset := model.Asset{ID: "a1", Currency: model.USD}
	txs := []model.Transaction{
		{AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("3500"), AmountUSD: decPtr("100")},
		{AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("3300"), AmountUSD: decPtr("100")},
	}

	v := DeriveAsset(asset, txs)

	require.True(t, v.Invested.Equal(dec("6800")), "THB legs frozen at their recorded rates")
	require.NotNil(t, v.InvestedUSD)
	require.True(t, v.InvestedUSD.Equal(dec("200")))
}

func TestDeriveFallbackReactivatesAfterDelete(t *testing.T) {
	asset := model.Asset{ID: "a1", Currency: model.THB, Invested: dec("1500"), Units: dec("3")}
	txs := []model.Transaction{
		{ID: 10, AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("800"), Units: decPtr("2")},
	}

	v := DeriveAsset(asset, txs)
	require.Equal(t, SourceLedger, v.Source)
	require.True(t, v.Invested.Equal(dec("800")))

	// Deleting the only buy brings the manual fields back verbatim on the
	// next read, with no migration step in between.
	v = DeriveAsset(asset, nil)
	require.Equal(t, SourceManual, v.Source)
	require.True(t, v.Invested.Equal(dec("1500")))
	require.True(t, v.Units.Equal(dec("3")))
}

func TestDeriveSubAssetScopedToParent(t *testing.T) {
	sub := model.SubAsset{ID: "s1", Currency: model.USD, Invested: dec("777"), Qty: dec("1")}
	txs := []model.Transaction{
		{AssetID: "g1", SubAssetID: strPtr("s1"), Kind: model.KindBuy, AmountTHB: dec("3500"), AmountUSD: decPtr("100"), Qty: decPtr("10")},
		// Same sub-asset id under a different parent must not leak in.
		{AssetID: "g2", SubAssetID: strPtr("s1"), Kind: model.KindBuy, AmountTHB: dec("9999"), Qty: decPtr("99")},
		// Parent-level entry must not leak into the sub-asset.
		{AssetID: "g1", Kind: model.KindBuy, AmountTHB: dec("1234")},
	}

	v := DeriveSubAsset("g1", sub, txs)

	require.Equal(t, SourceLedger, v.Source)
	require.True(t, v.Invested.Equal(dec("3500")))
	require.True(t, v.Qty.Equal(dec("10")))
	require.NotNil(t, v.InvestedUSD)
	require.True(t, v.InvestedUSD.Equal(dec("100")))
}

func TestEffectiveAssetsDoesNotMutateInput(t *testing.T) {
	assets := []model.Asset{
		{ID: "a1", Currency: model.THB, Invested: dec("100"), CurrentValue: dec("150")},
		{
			ID:       "g1",
			Category: model.CategoryUSStocks,
			SubAssets: []model.SubAsset{
				{ID: "s1", Currency: model.USD, Invested: dec("50"), Qty: dec("1")},
			},
		},
	}
	txs := []model.Transaction{
		{AssetID: "a1", Kind: model.KindBuy, AmountTHB: dec("900")},
		{AssetID: "g1", SubAssetID: strPtr("s1"), Kind: model.KindBuy, AmountTHB: dec("700"), Qty: decPtr("4")},
	}

	effective := EffectiveAssets(assets, txs)

	require.True(t, effective[0].Invested.Equal(dec("900")))
	require.True(t, effective[0].CurrentValue.Equal(dec("150")), "currentValue is never derived from the ledger")
	require.True(t, effective[1].SubAssets[0].Invested.Equal(dec("700")))
	require.True(t, effective[1].SubAssets[0].Qty.Equal(dec("4")))

	// Inputs stay untouched so the derivation can be recomputed per read.
	require.True(t, assets[0].Invested.Equal(dec("100")))
	require.True(t, assets[1].SubAssets[0].Invested.Equal(dec("50")))
}
