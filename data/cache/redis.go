package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/internal/model"
	"github.com/natthaphong/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

// RedisCache is the hot price cache sitting in front of the providers and
// the durable price_cache table. Entries expire after the configured TTL;
// the durable table keeps the last known value past that.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetPrices(ctx context.Context, entries []model.PriceCacheEntry) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetPrices start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for _, entry := range entries {
		entryJson, err := json.Marshal(entry)
		if err != nil {
			slog.Error(
				"can't marshall entry in SetPrices",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("entry", entry),
			)
			return errors.New("can't marshall price cache entry")
		}

		pipe.Set(ctx, priceKey(entry.Symbol), entryJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetPrices completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetPrice(ctx context.Context, symbol string) (model.PriceCacheEntry, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPrice start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, priceKey(symbol)).Result()
	if err != nil {
		return model.PriceCacheEntry{}, err
	}

	entry := model.PriceCacheEntry{}
	err = json.Unmarshal([]byte(res), &entry)
	if err != nil {
		slog.Error(
			"can't unmarshall entry in GetPrice",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.PriceCacheEntry{}, errors.New("can't unmarshall price cache entry")
	}

	slog.Debug("GetPrice finished", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return entry, nil
}

// GetPrices returns the cached entries found for the given symbols. Missing
// or unreadable symbols are skipped, not failed: the caller decides whether
// to fall through to the durable cache or the providers.
func (r *RedisCache) GetPrices(ctx context.Context, symbols []string) (map[string]model.PriceCacheEntry, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPrices start", slog.String("rqID", rqID))

	if len(symbols) == 0 {
		return map[string]model.PriceCacheEntry{}, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, priceKey(symbol))
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	res := make(map[string]model.PriceCacheEntry, len(symbols))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		entry := model.PriceCacheEntry{}
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			slog.Warn("can't unmarshall entry in GetPrices", slog.String("rqID", rqID), slog.String("symbol", symbols[i]))
			continue
		}
		res[symbols[i]] = entry
	}

	slog.Debug("GetPrices finished", slog.String("rqID", rqID))

	return res, nil
}

func priceKey(symbol string) string {
	return "price:" + symbol
}
