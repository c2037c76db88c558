// Package http 组合估值的 HTTP 接口层
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/brokerage/internal/portfolio/application"
	tradingdomain "github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/contextx"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

// PortfolioHandler 组合估值处理器
type PortfolioHandler struct {
	service *application.PortfolioService
}

// NewPortfolioHandler 创建组合估值处理器
func NewPortfolioHandler(service *application.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// RegisterRoutes 注册路由。调用方需在路由组上挂好 Identity 中间件。
func (h *PortfolioHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/portfolio", h.GetPortfolio)
}

// GetPortfolio 返回当前用户的组合估值快照
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	ctx := c.Request.Context()

	view, err := h.service.Valuate(ctx, contextx.UserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, tradingdomain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, tradingdomain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			logger.Error(ctx, "portfolio valuation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}
