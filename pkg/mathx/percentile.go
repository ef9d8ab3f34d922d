package mathx

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyInput 输入序列为空
var ErrEmptyInput = errors.New("mathx: empty input")

// Percentile 计算 p 分位数（0 到 100），相邻次序统计量间线性插值
func Percentile(xs []float64, p float64) (float64, error) {
	n := len(xs)
	if n == 0 {
		return 0, ErrEmptyInput
	}
	if p < 0 || p > 100 {
		return 0, errors.New("mathx: percentile must be between 0 and 100")
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}
