package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/riskanalytics/internal/report/application"
	"github.com/wyfcoding/riskanalytics/internal/report/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Handler HTTP 处理器
// 负责风险报告相关的 HTTP 请求
type Handler struct {
	service *application.ReportService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.ReportService) *Handler {
	return &Handler{
		service: service,
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrInsufficientData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DailyReport 生成日度风险报告
// @Summary 生成日度风险报告
// @Description 聚合 VaR、情景、成分 VaR 与希腊字母，生成管理层文本报告
// @Tags Report
// @Param num_positions query int false "线性持仓数量"
// @Param num_options query int false "期权持仓数量"
// @Param days query int false "历史天数"
// @Param refresh query bool false "跳过缓存强制重算"
// @Success 200 {object} application.DailyReportResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/report/daily [get]
func (h *Handler) DailyReport(c *gin.Context) {
	ctx := c.Request.Context()

	req := &application.DailyReportRequest{
		NumPositions: intQuery(c, "num_positions"),
		NumOptions:   intQuery(c, "num_options"),
		Days:         intQuery(c, "days"),
		Refresh:      c.Query("refresh") == "true",
	}

	resp, err := h.service.DailyReport(ctx, req)
	if err != nil {
		logger.Error(ctx, "Failed to generate daily report", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// RiskMetrics 计算组合统计指标
// @Summary 计算组合统计指标
// @Description 年化收益与波动率、夏普、索提诺、最大回撤、偏度与峰度
// @Tags Report
// @Param symbols query string false "标的列表，逗号分隔"
// @Param days query int false "历史天数"
// @Success 200 {object} domain.RiskMetrics
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/report/metrics [get]
func (h *Handler) RiskMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	var symbols []string
	if raw := c.Query("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}

	metrics, err := h.service.RiskMetrics(ctx, symbols, nil, intQuery(c, "days"))
	if err != nil {
		logger.Error(ctx, "Failed to calculate risk metrics", "error", err)
		c.JSON(statusFromErr(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": metrics,
	})
}

func intQuery(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/report")
	{
		v1.GET("/daily", h.DailyReport)
		v1.GET("/metrics", h.RiskMetrics)
	}
}
