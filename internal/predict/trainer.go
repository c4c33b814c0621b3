// internal/predict/trainer.go
package predict

import (
	"fmt"
	"time"
)

// TrainingRow is one labeled example: the canonical feature vector plus a
// 0-100 desirability label derived from sold comparables.
type TrainingRow struct {
	Features []float64
	Label    float64
}

// Trainer fits a ridge-regularized linear model with the normal equations.
// The regularization keeps the solve stable on the small, collinear
// datasets a single collector accumulates.
type Trainer struct {
	Lambda  float64
	MinRows int
}

func NewTrainer(minRows int) *Trainer {
	return &Trainer{Lambda: 1.0, MinRows: minRows}
}

// Train fits a model over the rows. Fails when fewer than MinRows examples
// are supplied or any row has the wrong width.
func (t *Trainer) Train(rows []TrainingRow) (*LinearModel, error) {
	if len(rows) < t.MinRows {
		return nil, fmt.Errorf("insufficient training data: %d rows, need %d", len(rows), t.MinRows)
	}
	for i, r := range rows {
		if len(r.Features) != FeatureCount {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, FeatureCount, len(r.Features))
		}
	}

	// Augment with a bias column, then solve (X'X + lambda*I) w = X'y.
	n := FeatureCount + 1
	xtx := make([][]float64, n)
	for i := range xtx {
		xtx[i] = make([]float64, n)
	}
	xty := make([]float64, n)

	for _, r := range rows {
		row := append([]float64{1}, r.Features...)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * r.Label
		}
	}

	for i := 1; i < n; i++ {
		// The intercept is left unregularized.
		xtx[i][i] += t.Lambda
	}

	w, err := solve(xtx, xty)
	if err != nil {
		return nil, err
	}

	return &LinearModel{
		Intercept:    w[0],
		Coefficients: w[1:],
		TrainedAt:    time.Now().UTC(),
		Samples:      len(rows),
	}, nil
}

// solve runs Gaussian elimination with partial pivoting on a copy of the
// inputs.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(m[r][col]) > abs(m[pivot][col]) {
				pivot = r
			}
		}
		if abs(m[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
