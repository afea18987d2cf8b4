package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinStdDev is the smallest training standard deviation treated as non-zero.
const MinStdDev = 1e-12

// Scaler holds per-column statistics frozen over a training prefix.
type Scaler struct {
	Mean []float64
	Std  []float64
	// Split is the number of leading rows the statistics were computed on.
	Split int
	// Degenerate lists columns whose training variance was zero; their Std is
	// replaced by 1 so they are centred but not scaled.
	Degenerate []int
}

// FitScaler computes column means and population standard deviations over
// rows [0, split) of m. A NaN or infinite training value fails with
// *NonFiniteValueError.
func FitScaler(m mat.Matrix, split int) (Scaler, error) {
	rows, cols := m.Dims()
	if split <= 0 || split > rows {
		return Scaler{}, fmt.Errorf("training split %d out of range (1..%d)", split, rows)
	}
	if err := checkFinite(m, split); err != nil {
		return Scaler{}, err
	}

	s := Scaler{
		Mean:  make([]float64, cols),
		Std:   make([]float64, cols),
		Split: split,
	}
	col := make([]float64, split)
	for j := 0; j < cols; j++ {
		for i := range col {
			col[i] = m.At(i, j)
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < MinStdDev {
			s.Degenerate = append(s.Degenerate, j)
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s, nil
}

// Apply returns (m - mean) / std for every row of m, including rows past the
// training split. It fails with *NonFiniteValueError instead of producing
// NaN output.
func (s Scaler) Apply(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkCols(m); err != nil {
		return nil, err
	}
	rows, _ := m.Dims()
	if err := checkFinite(m, rows); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Std[j]
	}, m)
	return &out, nil
}

// Inverse maps scaled values back to the original units.
func (s Scaler) Inverse(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkCols(m); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.Std[j] + s.Mean[j]
	}, m)
	return &out, nil
}

// Warning returns a *DegenerateVarianceWarning when any column had zero
// training variance.
func (s Scaler) Warning() error {
	if len(s.Degenerate) == 0 {
		return nil
	}
	return &DegenerateVarianceWarning{Columns: append([]int(nil), s.Degenerate...), Split: s.Split}
}

func (s Scaler) checkCols(m mat.Matrix) error {
	if _, cols := m.Dims(); cols != len(s.Mean) {
		return fmt.Errorf("matrix has %d columns, scaler was fit on %d", cols, len(s.Mean))
	}
	return nil
}

// checkFinite scans the first rows of m in row-major order.
func checkFinite(m mat.Matrix, rows int) error {
	_, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return &NonFiniteValueError{Row: i, Column: j, Value: v}
			}
		}
	}
	return nil
}

// Normalize fits a scaler on rows [0, split) and applies it to all of m.
func Normalize(m mat.Matrix, split int) (*mat.Dense, Scaler, error) {
	s, err := FitScaler(m, split)
	if err != nil {
		return nil, Scaler{}, err
	}
	out, err := s.Apply(m)
	if err != nil {
		return nil, Scaler{}, err
	}
	return out, s, nil
}
