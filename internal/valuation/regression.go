package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// singularTolerance is the smallest pivot accepted, relative to the largest matrix entry
const singularTolerance = 1e-12

// OLSResult holds fitted coefficients, intercept first
type OLSResult struct {
	Intercept float64
	Betas     []float64
	N         int
}

// FitOLS regresses y on the columns of x with an intercept.
// x is row-major: x[i] holds the regressors of observation i.
func FitOLS(y []float64, x [][]float64) (*OLSResult, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, fmt.Errorf("ols: %d observations, %d rows: %w", n, len(x), contracts.ErrMissingData)
	}
	k := len(x[0]) + 1
	if n < k {
		return nil, fmt.Errorf("ols: %d observations for %d parameters: %w", n, k, contracts.ErrNumericGuard)
	}

	// normal equations (XᵀX) b = Xᵀy with a leading column of ones
	xtx := make([][]float64, k)
	for i := range xtx {
		xtx[i] = make([]float64, k)
	}
	xty := make([]float64, k)

	row := make([]float64, k)
	for i := 0; i < n; i++ {
		if len(x[i]) != k-1 {
			return nil, fmt.Errorf("ols: row %d has %d regressors, want %d", i, len(x[i]), k-1)
		}
		row[0] = 1
		copy(row[1:], x[i])
		for a := 0; a < k; a++ {
			xty[a] += row[a] * y[i]
			for b := 0; b < k; b++ {
				xtx[a][b] += row[a] * row[b]
			}
		}
	}

	coef, err := solve(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("ols: %w", err)
	}

	return &OLSResult{Intercept: coef[0], Betas: coef[1:], N: n}, nil
}

// solve runs Gaussian elimination with partial pivoting on a copy of a|b
func solve(a [][]float64, b []float64) ([]float64, error) {
	k := len(b)
	m := make([][]float64, k)
	scale := 0.0
	for i := range a {
		m[i] = make([]float64, k+1)
		copy(m[i], a[i])
		m[i][k] = b[i]
		for _, v := range a[i] {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	tol := singularTolerance * scale

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) <= tol {
			return nil, fmt.Errorf("singular design matrix: %w", contracts.ErrNumericGuard)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < k; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= k; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	out := make([]float64, k)
	for r := k - 1; r >= 0; r-- {
		sum := m[r][k]
		for c := r + 1; c < k; c++ {
			sum -= m[r][c] * out[c]
		}
		out[r] = sum / m[r][r]
		if math.IsNaN(out[r]) || math.IsInf(out[r], 0) {
			return nil, contracts.ErrNumericGuard
		}
	}
	return out, nil
}
