package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/internal/converter/dbConverter"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/internal/model/dbModel"
	"github.com/natthaphong/portfolio_tracker/utils"
)

type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

func (r *Postgres) LoadPortfolio(ctx context.Context, userID string) (assets []model.Asset, settings model.Settings, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, assets, settings, updated_at FROM portfolios WHERE user_id = $1`

	slog.Debug("LoadPortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Error("LoadPortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("LoadPortfolio completed", slog.String("rqID", rqID))
		}
	}()

	doc := dbModel.PortfolioDoc{}
	err = r.db.QueryRowxContext(ctx, query, userID).StructScan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.Settings{}, ErrNotFound
		}
		return nil, model.Settings{}, err
	}

	if err = json.Unmarshal(doc.Assets, &assets); err != nil {
		return nil, model.Settings{}, fmt.Errorf("unmarshal assets doc: %w", err)
	}
	if err = json.Unmarshal(doc.Settings, &settings); err != nil {
		return nil, model.Settings{}, fmt.Errorf("unmarshal settings doc: %w", err)
	}

	return assets, settings, nil
}

func (r *Postgres) SavePortfolio(ctx context.Context, userID string, assets []model.Asset, settings model.Settings) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO portfolios(user_id, assets, settings, updated_at)
		VALUES($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			assets = EXCLUDED.assets,
			settings = EXCLUDED.settings,
			updated_at = now()
	`

	slog.Debug("SavePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("SavePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("SavePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	assetsJson, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("marshal assets doc: %w", err)
	}
	settingsJson, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings doc: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, userID, assetsJson, settingsJson)
	return err
}

func (r *Postgres) GetTransactions(ctx context.Context, userID string) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT id, user_id, asset_id, sub_asset_id, type, amount_thb, amount_usd, units, qty, currency, date, notes, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id
	`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var tx dbModel.Transaction
		err = rows.StructScan(&tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, dbConverter.ConvertTransaction(tx))
	}

	return txs, nil
}

func (r *Postgres) AddTransaction(ctx context.Context, tx model.Transaction) (saved model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(user_id, asset_id, sub_asset_id, type, amount_thb, amount_usd, units, qty, currency, date, notes)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("AddTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddTransaction completed", slog.String("rqID", rqID))
		}
	}()

	err = r.db.QueryRowxContext(
		ctx,
		query,
		tx.UserID,
		tx.AssetID,
		tx.SubAssetID,
		tx.Kind,
		tx.AmountTHB,
		tx.AmountUSD,
		tx.Units,
		tx.Qty,
		tx.Currency,
		tx.Date,
		tx.Notes,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23514" { // check_violation
				return model.Transaction{}, fmt.Errorf("%w: %s", ErrInvalidInput, pgErr.Message)
			}
		}
		return model.Transaction{}, err
	}

	return tx, nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, userID string, id int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Postgres) GetPriceCache(ctx context.Context, symbols []string) (cache map[string]model.PriceCacheEntry, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT symbol, type, price, currency, price_date, source, updated_at
		FROM price_cache
		WHERE symbol = ANY($1)
	`

	slog.Debug("GetPriceCache start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPriceCache failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPriceCache completed", slog.String("rqID", rqID))
		}
	}()

	cache = make(map[string]model.PriceCacheEntry, len(symbols))
	if len(symbols) == 0 {
		return cache, nil
	}

	rows, err := r.db.QueryxContext(ctx, query, symbols)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var entry dbModel.PriceCacheEntry
		err = rows.StructScan(&entry)
		if err != nil {
			return nil, err
		}
		cache[entry.Symbol] = dbConverter.ConvertPriceCacheEntry(entry)
	}

	return cache, nil
}

func (r *Postgres) UpsertPriceCache(ctx context.Context, entries []model.PriceCacheEntry) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("UpsertPriceCache start", slog.String("rqID", rqID), slog.Int("entries", len(entries)))
	defer func() {
		if err != nil {
			slog.Error("UpsertPriceCache failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertPriceCache completed", slog.String("rqID", rqID))
		}
	}()

	if len(entries) == 0 {
		return nil
	}

	sb := strings.Builder{}
	args := make([]any, 0, len(entries)*6)

	sb.WriteString(`INSERT INTO price_cache (symbol, type, price, currency, price_date, source, updated_at) VALUES `)

	for i, entry := range entries {
		args = append(args, entry.Symbol, entry.Type, entry.Price, entry.Currency, entry.PriceDate, entry.Source)

		start := i*6 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, now())",
			start, start+1, start+2, start+3, start+4, start+5,
		))

		if i < len(entries)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(`
		ON CONFLICT (symbol) DO UPDATE SET
			type = EXCLUDED.type,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			price_date = EXCLUDED.price_date,
			source = EXCLUDED.source,
			updated_at = now();
	`)

	_, err = r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetTrackedSymbols walks every stored portfolio document and collects the
// distinct auto-price bindings: fund codes on assets and market symbols on
// sub-assets. Used by the scheduled refresher to know what to fetch.
func (r *Postgres) GetTrackedSymbols(ctx context.Context) (symbols []model.SymbolRef, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, assets, settings, updated_at FROM portfolios`

	slog.Debug("GetTrackedSymbols start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTrackedSymbols failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTrackedSymbols completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var doc dbModel.PortfolioDoc
		err = rows.StructScan(&doc)
		if err != nil {
			return nil, err
		}

		var assets []model.Asset
		if err := json.Unmarshal(doc.Assets, &assets); err != nil {
			slog.Warn("skipping unreadable portfolio doc", slog.String("rqID", rqID), slog.String("userID", doc.UserID))
			continue
		}

		for _, ref := range model.CollectSymbolRefs(assets) {
			if _, ok := seen[ref.Symbol]; ok {
				continue
			}
			seen[ref.Symbol] = struct{}{}
			symbols = append(symbols, ref)
		}
	}

	return symbols, nil
}
