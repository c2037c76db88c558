// Package yahoo 实现基于 Yahoo Finance 公开接口的行情源
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

const (
	defaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"

	// Yahoo 拒绝无浏览器 UA 的请求
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client Yahoo Finance 行情客户端
type Client struct {
	chartURL  string
	searchURL string
	http      *http.Client
}

// Option 客户端可选配置
type Option func(*Client)

// WithBaseURLs 覆盖上游地址，用于测试
func WithBaseURLs(chartURL, searchURL string) Option {
	return func(c *Client) {
		c.chartURL = chartURL
		c.searchURL = searchURL
	}
}

// NewClient 创建 Yahoo 行情客户端，timeout 约束单次上游调用
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		chartURL:  defaultChartURL,
		searchURL: defaultSearchURL,
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse Yahoo chart 接口响应。上游字段时有缺失，所有数值都按可缺省解析。
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				LongName            string  `json:"longName"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
				MarketCap           float64 `json:"marketCap"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Open []float64 `json:"open"`
					High []float64 `json:"high"`
					Low  []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// GetQuote 解析单个标的的当前报价。标的不存在返回 (nil, nil)。
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chartURL+"/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s: unexpected status %d", symbol, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("quote response for %s: %w", symbol, err)
	}

	if len(body.Chart.Result) == 0 {
		return nil, nil
	}

	result := body.Chart.Result[0]
	meta := result.Meta

	name := meta.LongName
	if name == "" {
		name = meta.Symbol
	}

	price := decimal.NewFromFloat(meta.RegularMarketPrice)
	prevClose := decimal.NewFromFloat(meta.PreviousClose)
	change := price.Sub(prevClose)
	changePercent := decimal.Zero
	if !prevClose.IsZero() {
		changePercent = change.Div(prevClose).Mul(decimal.NewFromInt(100))
	}

	quote := &domain.Quote{
		Symbol:        meta.Symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		PreviousClose: prevClose,
		Volume:        meta.RegularMarketVolume,
	}
	if meta.MarketCap > 0 {
		quote.MarketCap = decimal.NewFromFloat(meta.MarketCap)
	}

	if len(result.Indicators.Quote) > 0 {
		bars := result.Indicators.Quote[0]
		quote.Open = lastValue(bars.Open)
		quote.High = lastValue(bars.High)
		quote.Low = lastValue(bars.Low)
	}

	return quote, nil
}

// searchResponse Yahoo search 接口响应
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longname"`
		ShortName string `json:"shortname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Search 按关键词搜索股票，只保留 EQUITY 类型。上游故障时返回空结果。
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "stock search failed", "query", query, "error", err)
		return []domain.SearchResult{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn(ctx, "stock search failed", "query", query, "status", resp.StatusCode)
		return []domain.SearchResult{}, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return []domain.SearchResult{}, nil
	}

	results := make([]domain.SearchResult, 0, len(body.Quotes))
	for _, q := range body.Quotes {
		if q.QuoteType != "EQUITY" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		results = append(results, domain.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Type:     q.QuoteType,
			Exchange: q.Exchange,
		})
	}
	return results, nil
}

func lastValue(vals []float64) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(vals[len(vals)-1])
}
