package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/riskanalytics/internal/marketdata/application"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Handler HTTP 处理器
// 负责处理市场数据相关的 HTTP 请求
type Handler struct {
	service *application.MarketDataService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.MarketDataService) *Handler {
	return &Handler{
		service: service,
	}
}

// GenerateHistory 生成历史行情
// @Summary 生成合成历史行情
// @Description 按几何布朗运动为指定标的生成历史价格序列
// @Tags Market Data
// @Param request body application.GenerateHistoryRequest true "生成参数"
// @Success 200 {object} application.HistoryDTO
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/marketdata/generate [post]
func (h *Handler) GenerateHistory(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.GenerateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid generate history request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	history, err := h.service.GenerateHistory(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to generate history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": history,
	})
}

// GeneratePortfolio 生成样例组合
// @Summary 生成样例组合持仓
// @Description 生成农产品与外汇的样例持仓及期权组合
// @Tags Market Data
// @Param request body application.GeneratePositionsRequest true "生成参数"
// @Success 200 {object} application.PortfolioDTO
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/marketdata/positions [post]
func (h *Handler) GeneratePortfolio(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.GeneratePositionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid generate portfolio request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	portfolio, err := h.service.GeneratePortfolio(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to generate portfolio", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": portfolio,
	})
}

// ListPositions 查询已持久化的持仓
// @Summary 查询已持久化的线性持仓
// @Description 按生成时间倒序返回最近落库的样例持仓
// @Tags Market Data
// @Param limit query int false "返回条数上限，默认 100"
// @Success 200 {array} domain.Position
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/marketdata/positions [get]
func (h *Handler) ListPositions(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.Query("limit"))

	positions, err := h.service.ListPositions(ctx, limit)
	if err != nil {
		logger.Error(ctx, "Failed to list positions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": positions,
	})
}

// ListInstruments 查询标的清单
// @Summary 查询标的清单
// @Tags Market Data
// @Success 200 {array} domain.Instrument
// @Router /api/v1/marketdata/instruments [get]
func (h *Handler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.service.Instruments(),
	})
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/marketdata")
	{
		v1.POST("/generate", h.GenerateHistory)
		v1.POST("/positions", h.GeneratePortfolio)
		v1.GET("/positions", h.ListPositions)
		v1.GET("/instruments", h.ListInstruments)
	}
}
