package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/utils"
	"github.com/xuri/excelize/v2"
)

const (
	assetsSheet  = "Portfolio"
	historySheet = "History"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, view model.PortfolioView, txs []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillAssetsSheet(f, view); err != nil {
		slog.Error("got error while filling assets sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillHistorySheet(f, txs); err != nil {
		slog.Error("got error while filling history sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillAssetsSheet(f *excelize.File, view model.PortfolioView) error {
	if _, err := f.NewSheet(assetsSheet); err != nil {
		return err
	}

	if err := f.MergeCell(assetsSheet, "A1", "H1"); err != nil {
		return err
	}
	f.SetCellValue(assetsSheet, "A1", "Assets")

	styleID, err := headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(assetsSheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(assetsSheet, "A2", "name")
	_ = f.SetCellStr(assetsSheet, "B2", "category")
	_ = f.SetCellStr(assetsSheet, "C2", "currency")
	_ = f.SetCellStr(assetsSheet, "D2", "invested (THB)")
	_ = f.SetCellStr(assetsSheet, "E2", "current value (THB)")
	_ = f.SetCellStr(assetsSheet, "F2", "P/L (THB)")
	_ = f.SetCellStr(assetsSheet, "G2", "P/L %")
	_ = f.SetCellStr(assetsSheet, "H2", "share %")

	for i, asset := range view.Assets {
		row := i + 3
		_ = f.SetCellStr(assetsSheet, fmt.Sprintf("A%d", row), asset.Name)
		_ = f.SetCellStr(assetsSheet, fmt.Sprintf("B%d", row), string(asset.Category))
		_ = f.SetCellStr(assetsSheet, fmt.Sprintf("C%d", row), string(asset.Currency))
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("D%d", row), asset.Invested.InexactFloat64())
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("E%d", row), asset.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("F%d", row), asset.PL.InexactFloat64())
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("G%d", row), asset.PLPct.InexactFloat64())
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("H%d", row), asset.SharePct.InexactFloat64())
	}

	rowNum := len(view.Assets) + 5

	if err := f.MergeCell(assetsSheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}
	f.SetCellValue(assetsSheet, fmt.Sprintf("A%d", rowNum), "Summary")

	styleID, err = headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(assetsSheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	summaryRows := []struct {
		label string
		value float64
	}{
		{"net worth (THB)", view.Summary.NetWorth.InexactFloat64()},
		{"invested, non-speculative (THB)", view.Summary.TotalInvest.InexactFloat64()},
		{"invested, total (THB)", view.Summary.TotalInvested.InexactFloat64()},
		{"speculative value (THB)", view.Summary.TotalSpec.InexactFloat64()},
		{"total P/L (THB)", view.Summary.TotalPL.InexactFloat64()},
		{"total P/L %", view.Summary.TotalPLPct.InexactFloat64()},
		{"speculation cap (THB)", view.Summary.SpecCapLimit.InexactFloat64()},
		{"over cap (THB)", view.Summary.SpecOver.InexactFloat64()},
		{"USD/THB rate", view.Rate.InexactFloat64()},
	}

	for _, r := range summaryRows {
		rowNum++
		_ = f.SetCellStr(assetsSheet, fmt.Sprintf("A%d", rowNum), r.label)
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("B%d", rowNum), r.value)
	}

	rowNum += 2

	if err := f.MergeCell(assetsSheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}
	f.SetCellValue(assetsSheet, fmt.Sprintf("A%d", rowNum), "Projection")

	styleID, err = headerStyle(f, "#f9cb9c")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(assetsSheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	rowNum++
	_ = f.SetCellStr(assetsSheet, fmt.Sprintf("A%d", rowNum), "month")
	_ = f.SetCellStr(assetsSheet, fmt.Sprintf("B%d", rowNum), "balance (THB)")

	for _, point := range view.Summary.Projection {
		rowNum++
		_ = f.SetCellInt(assetsSheet, fmt.Sprintf("A%d", rowNum), int(point.Month))
		_ = f.SetCellValue(assetsSheet, fmt.Sprintf("B%d", rowNum), point.Balance.InexactFloat64())
	}

	return nil
}

func (g *XLSXGenerator) fillHistorySheet(f *excelize.File, txs []model.Transaction) error {
	if _, err := f.NewSheet(historySheet); err != nil {
		return err
	}

	if err := f.MergeCell(historySheet, "A1", "H1"); err != nil {
		return err
	}
	f.SetCellValue(historySheet, "A1", "Transaction history")

	styleID, err := headerStyle(f, "#cccccc")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(historySheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(historySheet, "A2", "date")
	_ = f.SetCellStr(historySheet, "B2", "asset")
	_ = f.SetCellStr(historySheet, "C2", "sub-asset")
	_ = f.SetCellStr(historySheet, "D2", "type")
	_ = f.SetCellStr(historySheet, "E2", "amount (THB)")
	_ = f.SetCellStr(historySheet, "F2", "amount (USD)")
	_ = f.SetCellStr(historySheet, "G2", "units / qty")
	_ = f.SetCellStr(historySheet, "H2", "notes")

	for i, tx := range txs {
		row := i + 3
		_ = f.SetCellStr(historySheet, fmt.Sprintf("A%d", row), tx.Date.UTC().Format(time.DateOnly))
		_ = f.SetCellStr(historySheet, fmt.Sprintf("B%d", row), tx.AssetID)
		if tx.SubAssetID != nil {
			_ = f.SetCellStr(historySheet, fmt.Sprintf("C%d", row), *tx.SubAssetID)
		}
		_ = f.SetCellStr(historySheet, fmt.Sprintf("D%d", row), string(tx.Kind))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("E%d", row), tx.AmountTHB.InexactFloat64())
		if tx.AmountUSD != nil {
			_ = f.SetCellValue(historySheet, fmt.Sprintf("F%d", row), tx.AmountUSD.InexactFloat64())
		}
		if tx.Units != nil {
			_ = f.SetCellValue(historySheet, fmt.Sprintf("G%d", row), tx.Units.InexactFloat64())
		} else if tx.Qty != nil {
			_ = f.SetCellValue(historySheet, fmt.Sprintf("G%d", row), tx.Qty.InexactFloat64())
		}
		_ = f.SetCellStr(historySheet, fmt.Sprintf("H%d", row), tx.Notes)
	}

	return nil
}
