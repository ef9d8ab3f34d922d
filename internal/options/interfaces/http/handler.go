package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/riskanalytics/internal/options/application"
	"github.com/wyfcoding/riskanalytics/internal/options/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Handler HTTP 处理器
// 负责处理期权定价相关的 HTTP 请求
type Handler struct {
	service *application.OptionsService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.OptionsService) *Handler {
	return &Handler{
		service: service,
	}
}

func statusFromErr(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Greeks 单一期权希腊字母
// @Summary 计算期权希腊字母
// @Description 用 Black-Scholes 模型计算欧式期权价格与希腊字母
// @Tags Options
// @Param request body application.GreeksRequest true "定价参数"
// @Success 200 {object} domain.Greeks
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/options/greeks [post]
func (h *Handler) Greeks(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.GreeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid greeks request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	greeks, err := h.service.Greeks(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate greeks", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": greeks,
	})
}

// PortfolioGreeks 组合希腊字母
// @Summary 计算组合希腊字母
// @Description 逐仓计算并汇总期权组合的希腊字母
// @Tags Options
// @Param request body application.PortfolioRequest true "组合持仓"
// @Success 200 {object} application.PortfolioResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/options/portfolio [post]
func (h *Handler) PortfolioGreeks(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid portfolio greeks request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.service.PortfolioGreeks(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate portfolio greeks", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// DeltaHedge Delta 对冲
// @Summary 计算 Delta 对冲需求
// @Tags Options
// @Param request body application.HedgeRequest true "头寸参数"
// @Success 200 {object} domain.HedgeResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/options/hedge [post]
func (h *Handler) DeltaHedge(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.HedgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid hedge request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	result, err := h.service.DeltaHedge(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to calculate delta hedge", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// ImpliedVol 隐含波动率
// @Summary 反解隐含波动率
// @Description 用 Newton-Raphson 法由市场价格反解隐含波动率
// @Tags Options
// @Param request body application.ImpliedVolRequest true "市场价格与合约参数"
// @Success 200 {object} application.ImpliedVolResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/options/implied-vol [post]
func (h *Handler) ImpliedVol(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.ImpliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid implied vol request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.service.ImpliedVol(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to solve implied volatility", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// VolSurface 波动率曲面
// @Summary 构建隐含波动率曲面
// @Tags Options
// @Param request body application.VolSurfaceRequest true "价格矩阵"
// @Success 200 {array} domain.SurfacePoint
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/options/vol-surface [post]
func (h *Handler) VolSurface(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.VolSurfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid vol surface request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	points, err := h.service.VolSurface(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to build vol surface", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": points,
	})
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/options")
	{
		v1.POST("/greeks", h.Greeks)
		v1.POST("/portfolio", h.PortfolioGreeks)
		v1.POST("/hedge", h.DeltaHedge)
		v1.POST("/implied-vol", h.ImpliedVol)
		v1.POST("/vol-surface", h.VolSurface)
	}
}
