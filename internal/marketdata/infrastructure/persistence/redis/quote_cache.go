// Package redis 提供行情源的 Redis 缓存装饰器
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/pkg/cache"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

const keyPrefix = "quote:"

// CachedQuoteSource 在行情源前加一层短 TTL 缓存，吸收同一批请求内的重复查询。
// 缓存只是加速，任何缓存故障都退化为直查上游。
type CachedQuoteSource struct {
	source domain.QuoteSource
	cache  *cache.RedisCache
	ttl    time.Duration
}

// NewCachedQuoteSource 创建缓存装饰器
func NewCachedQuoteSource(source domain.QuoteSource, c *cache.RedisCache, ttl time.Duration) *CachedQuoteSource {
	return &CachedQuoteSource{source: source, cache: c, ttl: ttl}
}

// GetQuote 先查缓存，miss 则回源并写缓存
func (s *CachedQuoteSource) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)
	key := keyPrefix + symbol

	var cached domain.Quote
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn(ctx, "quote cache read failed", "symbol", symbol, "error", err)
	}

	quote, err := s.source.GetQuote(ctx, symbol)
	if err != nil || quote == nil {
		return quote, err
	}

	if err := s.cache.SetJSON(ctx, key, quote, s.ttl); err != nil {
		logger.Warn(ctx, "quote cache write failed", "symbol", symbol, "error", err)
	}
	return quote, nil
}
