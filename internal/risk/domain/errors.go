// Package domain 包含 VaR 引擎的领域模型
package domain

import "errors"

var (
	// ErrDimensionMismatch 收益矩阵与权重维度不一致
	ErrDimensionMismatch = errors.New("risk: returns and weights dimension mismatch")
	// ErrNotPositiveDefinite 协方差矩阵非正定，无法做 Cholesky 分解
	ErrNotPositiveDefinite = errors.New("risk: covariance matrix is not positive definite")
	// ErrInsufficientData 观测数不足
	ErrInsufficientData = errors.New("risk: insufficient observations")
	// ErrInvalidConfidence 置信水平不在 (0, 1) 区间
	ErrInvalidConfidence = errors.New("risk: confidence level must be in (0, 1)")
)
