package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/riskanalytics/internal/risk/application"
	"github.com/wyfcoding/riskanalytics/internal/risk/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Handler HTTP 处理器
// 负责处理 VaR 计算相关的 HTTP 请求
type Handler struct {
	service *application.RiskService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.RiskService) *Handler {
	return &Handler{
		service: service,
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrInvalidConfidence),
		errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrNotPositiveDefinite):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CalculateVaR 计算组合 VaR
// @Summary 计算组合 VaR
// @Description 用历史模拟法、参数法或蒙特卡洛法计算组合 VaR 与 ES
// @Tags Risk
// @Param request body application.CalculateVaRRequest true "计算参数"
// @Success 200 {object} application.VaRResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/risk/var [post]
func (h *Handler) CalculateVaR(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.CalculateVaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid VaR request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.service.CalculateVaR(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate VaR",
			"method", req.Method,
			"error", err,
		)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// ComponentVaR 成分 VaR 分析
// @Summary 成分 VaR 分析
// @Description 分解组合 VaR 到各资产的风险贡献
// @Tags Risk
// @Param request body application.ComponentVaRRequest true "计算参数"
// @Success 200 {array} domain.ComponentVaR
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/risk/var/component [post]
func (h *Handler) ComponentVaR(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.ComponentVaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid component VaR request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	components, err := h.service.ComponentVaR(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate component VaR", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": components,
	})
}

// IncrementalVaR 增量 VaR 分析
// @Summary 增量 VaR 分析
// @Description 计算对指定资产加仓后的 VaR 变化
// @Tags Risk
// @Param request body application.IncrementalVaRRequest true "计算参数"
// @Success 200 {object} domain.IncrementalVaR
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/risk/var/incremental [post]
func (h *Handler) IncrementalVaR(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.IncrementalVaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid incremental VaR request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	result, err := h.service.IncrementalVaR(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate incremental VaR", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// Backtest VaR 回测
// @Summary VaR 回测
// @Description 用滚动窗口回测历史 VaR 的击穿次数
// @Tags Risk
// @Param request body application.BacktestRequest true "回测参数"
// @Success 200 {object} domain.BacktestResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/risk/backtest [post]
func (h *Handler) Backtest(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid backtest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	result, err := h.service.Backtest(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run backtest", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// ListRuns 查询最近的 VaR 计算记录
// @Summary 查询 VaR 计算记录
// @Tags Risk
// @Param limit query int false "返回条数"
// @Success 200 {array} domain.VaRRun
// @Router /api/v1/risk/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	runs, err := h.service.ListRecentRuns(ctx, limit)
	if err != nil {
		logger.Error(ctx, "Failed to list VaR runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
	})
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/risk")
	{
		v1.POST("/var", h.CalculateVaR)
		v1.POST("/var/component", h.ComponentVaR)
		v1.POST("/var/incremental", h.IncrementalVaR)
		v1.POST("/backtest", h.Backtest)
		v1.GET("/runs", h.ListRuns)
	}
}
