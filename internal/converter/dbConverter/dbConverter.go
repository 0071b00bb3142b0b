package dbConverter

import (
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

func nullToPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func ConvertTransaction(tx dbModel.Transaction) model.Transaction {
	notes := ""
	if tx.Notes != nil {
		notes = *tx.Notes
	}

	return model.Transaction{
		ID:         tx.ID,
		UserID:     tx.UserID,
		AssetID:    tx.AssetID,
		SubAssetID: tx.SubAssetID,
		Kind:       model.TransactionKind(tx.Type),
		AmountTHB:  tx.AmountTHB,
		AmountUSD:  nullToPtr(tx.AmountUSD),
		Units:      nullToPtr(tx.Units),
		Qty:        nullToPtr(tx.Qty),
		Currency:   model.Currency(tx.Currency),
		Date:       tx.Date,
		Notes:      notes,
		CreatedAt:  tx.CreatedAt,
	}
}

func ConvertPriceCacheEntry(entry dbModel.PriceCacheEntry) model.PriceCacheEntry {
	return model.PriceCacheEntry{
		Symbol:    entry.Symbol,
		Type:      model.PriceType(entry.Type),
		Price:     entry.Price,
		Currency:  model.Currency(entry.Currency),
		PriceDate: entry.PriceDate,
		Source:    model.PriceSource(entry.Source),
		UpdatedAt: entry.UpdatedAt,
	}
}
