// Package http 交易引擎的 HTTP 接口层
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/brokerage/internal/trading/application"
	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/contextx"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

// TradeHandler 买卖下单与流水查询处理器
type TradeHandler struct {
	service *application.TradingService
}

// NewTradeHandler 创建交易处理器
func NewTradeHandler(service *application.TradingService) *TradeHandler {
	return &TradeHandler{service: service}
}

// RegisterRoutes 注册路由。调用方需在路由组上挂好 Identity 中间件。
func (h *TradeHandler) RegisterRoutes(api *gin.RouterGroup) {
	portfolio := api.Group("/portfolio")
	{
		portfolio.POST("/buy", h.Buy)
		portfolio.POST("/sell", h.Sell)
	}
	api.GET("/user/trades", h.RecentTrades)
}

// OrderRequest 下单请求体
type OrderRequest struct {
	Ticker   string          `json:"ticker" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// Buy 市价买入
func (h *TradeHandler) Buy(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker and quantity are required"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Buy(ctx, contextx.UserID(ctx), req.Ticker, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sell 市价卖出
func (h *TradeHandler) Sell(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker and quantity are required"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Sell(ctx, contextx.UserID(ctx), req.Ticker, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecentTrades 查询最近 20 条成交流水
func (h *TradeHandler) RecentTrades(c *gin.Context) {
	ctx := c.Request.Context()
	trades, err := h.service.RecentTrades(ctx, contextx.UserID(ctx), 20)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// writeError 将引擎的类型化错误映射到 HTTP 状态码
func (h *TradeHandler) writeError(c *gin.Context, err error) {
	var fundsErr *domain.InsufficientFundsError
	var sharesErr *domain.InsufficientSharesError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSymbolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     fundsErr.Error(),
			"required":  fundsErr.Required,
			"available": fundsErr.Available,
		})
	case errors.As(err, &sharesErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     sharesErr.Error(),
			"requested": sharesErr.Requested,
			"owned":     sharesErr.Owned,
		})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent modification, please retry"})
	case errors.Is(err, domain.ErrQuoteUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "quote service unavailable"})
	default:
		logger.Error(c.Request.Context(), "trade request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
