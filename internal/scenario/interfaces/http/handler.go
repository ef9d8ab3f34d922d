package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/riskanalytics/internal/scenario/application"
	"github.com/wyfcoding/riskanalytics/internal/scenario/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Handler HTTP 处理器
// 负责处理情景分析与压力测试相关的 HTTP 请求
type Handler struct {
	service *application.ScenarioService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.ScenarioService) *Handler {
	return &Handler{
		service: service,
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConverged):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ListScenarios 列出预置历史情景
// @Summary 列出预置历史情景
// @Tags Scenario
// @Success 200 {array} domain.Scenario
// @Router /api/v1/scenario/scenarios [get]
func (h *Handler) ListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": domain.HistoricalScenarios(),
	})
}

// RunScenarios 运行全部历史情景
// @Summary 运行全部历史情景
// @Description 对组合运行内置历史压力情景，按总损益排序
// @Tags Scenario
// @Param request body application.RunScenariosRequest true "运行参数"
// @Success 200 {object} application.RunScenariosResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/scenario/run [post]
func (h *Handler) RunScenarios(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.RunScenariosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid scenario run request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.service.RunHistoricalScenarios(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run historical scenarios", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// ApplyScenario 套用单一情景
// @Summary 套用单一情景
// @Description 按预置情景或自定义冲击计算逐持仓损益
// @Tags Scenario
// @Param request body application.ApplyScenarioRequest true "情景参数"
// @Success 200 {object} application.ApplyScenarioResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/scenario/apply [post]
func (h *Handler) ApplyScenario(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.ApplyScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid apply scenario request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.service.ApplyScenario(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to apply scenario",
			"scenario", req.ScenarioName,
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

// Sensitivity 敏感性分析
// @Summary 敏感性分析
// @Description 对每个标的单独施加分档价格冲击
// @Tags Scenario
// @Param request body application.SensitivityRequest true "分析参数"
// @Success 200 {array} domain.SensitivityPoint
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/scenario/sensitivity [post]
func (h *Handler) Sensitivity(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid sensitivity request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	points, err := h.service.Sensitivity(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run sensitivity analysis", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": points,
	})
}

// CorrelationStress 相关性压力测试
// @Summary 相关性压力测试
// @Description 放大相关系数后重新计算组合 99% VaR
// @Tags Scenario
// @Param request body application.CorrelationStressRequest true "压力参数"
// @Success 200 {object} domain.CorrelationStressResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/scenario/correlation [post]
func (h *Handler) CorrelationStress(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.CorrelationStressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid correlation stress request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	result, err := h.service.CorrelationStress(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run correlation stress", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// LiquidityStress 流动性压力测试
// @Summary 流动性压力测试
// @Description 估算各持仓的清仓天数与冲击成本
// @Tags Scenario
// @Param request body application.LiquidityStressRequest true "压力参数"
// @Success 200 {array} domain.LiquidityImpact
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/scenario/liquidity [post]
func (h *Handler) LiquidityStress(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.LiquidityStressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid liquidity stress request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	impacts, err := h.service.LiquidityStress(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run liquidity stress", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": impacts,
	})
}

// ReverseStress 反向压力测试
// @Summary 反向压力测试
// @Description 反推达到目标亏损所需的统一价格冲击
// @Tags Scenario
// @Param request body application.ReverseStressRequest true "压力参数"
// @Success 200 {object} domain.ReverseStressResult
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/scenario/reverse [post]
func (h *Handler) ReverseStress(c *gin.Context) {
	ctx := c.Request.Context()

	var req application.ReverseStressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "Invalid reverse stress request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	result, err := h.service.ReverseStress(ctx, &req)
	if err != nil {
		logger.Error(ctx, "Failed to run reverse stress",
			"target_loss", req.TargetLoss,
			"error", err,
		)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// ListRuns 查询最近的情景分析记录
// @Summary 查询情景分析记录
// @Tags Scenario
// @Param limit query int false "返回条数"
// @Success 200 {array} domain.ScenarioRun
// @Router /api/v1/scenario/runs [get]
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
		logger.Error(ctx, "Failed to list scenario runs", "error", err)
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
	v1 := router.Group("/api/v1/scenario")
	{
		v1.GET("/scenarios", h.ListScenarios)
		v1.POST("/run", h.RunScenarios)
		v1.POST("/apply", h.ApplyScenario)
		v1.POST("/sensitivity", h.Sensitivity)
		v1.POST("/correlation", h.CorrelationStress)
		v1.POST("/liquidity", h.LiquidityStress)
		v1.POST("/reverse", h.ReverseStress)
		v1.GET("/runs", h.ListRuns)
	}
}
