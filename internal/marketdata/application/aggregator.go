// Package application 行情数据的应用服务：单个与批量报价查询
package application

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/pkg/logger"
	"github.com/wyfcoding/brokerage/pkg/metrics"
)

// AggregatorConfig 批量查询的限速参数
type AggregatorConfig struct {
	// 每批并发查询的符号数
	BatchSize int
	// 批与批之间的固定间隔，遵守上游限速
	BatchDelay time.Duration
}

// DefaultAggregatorConfig 与上游约定的默认节奏：5 个一批，批间 100ms
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		BatchSize:  5,
		BatchDelay: 100 * time.Millisecond,
	}
}

// QuoteAggregator 将多符号报价查询切成小批并发执行，单个符号失败不影响其它符号
type QuoteAggregator struct {
	source  domain.QuoteSource
	cfg     AggregatorConfig
	metrics *metrics.Metrics
}

// NewQuoteAggregator 创建报价聚合器
func NewQuoteAggregator(source domain.QuoteSource, cfg AggregatorConfig, m *metrics.Metrics) *QuoteAggregator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &QuoteAggregator{source: source, cfg: cfg, metrics: m}
}

// GetPrice 查询单个符号的报价，未知符号返回 (nil, nil)
func (a *QuoteAggregator) GetPrice(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, nil
	}

	if a.metrics != nil {
		a.metrics.QuoteLookupsTotal.Inc()
	}

	quote, err := a.source.GetQuote(ctx, symbol)
	if err != nil {
		if a.metrics != nil {
			a.metrics.QuoteFailuresTotal.Inc()
		}
		return nil, err
	}
	return quote, nil
}

// GetPrices 批量查询报价。返回映射只含解析成功的符号；失败或未知的符号被
// 静默跳过，绝不让单个符号拖垮整个视图。
func (a *QuoteAggregator) GetPrices(ctx context.Context, symbols []string) map[string]*domain.Quote {
	results := make(map[string]*domain.Quote)
	if len(symbols) == 0 {
		return results
	}

	// 去重并规范化，保持首次出现的顺序
	seen := make(map[string]struct{}, len(symbols))
	normalized := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := domain.NormalizeSymbol(s)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		normalized = append(normalized, sym)
	}

	var mu sync.Mutex
	for start := 0; start < len(normalized); start += a.cfg.BatchSize {
		end := min(start+a.cfg.BatchSize, len(normalized))
		batch := normalized[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, symbol := range batch {
			symbol := symbol
			g.Go(func() error {
				quote, err := a.GetPrice(gctx, symbol)
				if err != nil {
					logger.Warn(gctx, "quote lookup failed", "symbol", symbol, "error", err)
					return nil
				}
				if quote == nil {
					return nil
				}
				mu.Lock()
				results[symbol] = quote
				mu.Unlock()
				return nil
			})
		}
		// goroutine 永远返回 nil，Wait 只用于同步
		_ = g.Wait()

		// 批间停顿，且对调用方取消保持响应
		if end < len(normalized) && a.cfg.BatchDelay > 0 {
			select {
			case <-time.After(a.cfg.BatchDelay):
			case <-ctx.Done():
				return results
			}
		}
	}

	return results
}
