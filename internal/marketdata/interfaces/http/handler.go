package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/brokerage/internal/marketdata/application"
	"github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

// StockHandler 行情查询 HTTP 处理器
type StockHandler struct {
	aggregator *application.QuoteAggregator
	searcher   domain.SymbolSearcher
}

// NewStockHandler 创建行情处理器。searcher 可为 nil（行情源不支持搜索时）。
func NewStockHandler(aggregator *application.QuoteAggregator, searcher domain.SymbolSearcher) *StockHandler {
	return &StockHandler{aggregator: aggregator, searcher: searcher}
}

// RegisterRoutes 注册路由
func (h *StockHandler) RegisterRoutes(api *gin.RouterGroup) {
	stocks := api.Group("/stocks")
	{
		stocks.GET("/search", h.Search)
		stocks.GET("/:symbol", h.GetQuote)
		stocks.POST("/quotes", h.GetQuotes)
	}
}

// Search 按关键词搜索股票
func (h *StockHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
		return
	}
	if h.searcher == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "search is not supported by the configured provider"})
		return
	}

	results, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		logger.Error(c.Request.Context(), "stock search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search stocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetQuote 查询单个标的报价
func (h *StockHandler) GetQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := h.aggregator.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		logger.Error(c.Request.Context(), "quote lookup failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get stock price"})
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// QuotesRequest 批量报价请求
type QuotesRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

// GetQuotes 批量查询报价，结果只含解析成功的标的
func (h *StockHandler) GetQuotes(c *gin.Context) {
	var req QuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols array is required"})
		return
	}

	quotes := h.aggregator.GetPrices(c.Request.Context(), req.Symbols)
	c.JSON(http.StatusOK, quotes)
}
