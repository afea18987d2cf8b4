package domain

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNormalize_UsesTrainingPrefixOnly(t *testing.T) {
	m := mat.NewDense(4, 2, []float64{
		1, 10,
		3, 10,
		5, 10,
		7, 12,
	})

	out, s, err := Normalize(m, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 10}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)
	assert.Equal(t, 2, s.Split)

	assert.Equal(t, []float64{-1, 1, 3, 5}, mat.Col(nil, 0, out))
	assert.Equal(t, []float64{0, 0, 0, 2}, mat.Col(nil, 1, out))
}

func TestNormalize_DegenerateColumn(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		4, 2, 0,
		9, 3, 5,
	})

	out, s, err := Normalize(m, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, s.Degenerate)

	warn := s.Warning()
	require.Error(t, warn)
	assert.True(t, errors.Is(warn, ErrDegenerateVariance))
	var dv *DegenerateVarianceWarning
	require.ErrorAs(t, warn, &dv)
	assert.Equal(t, []int{0, 2}, dv.Columns)
	assert.Contains(t, warn.Error(), "[0,2)")

	r, c := out.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := out.At(i, j)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "out[%d][%d] = %v", i, j, v)
		}
	}
	assert.Equal(t, 5.0, out.At(2, 0))
	assert.Equal(t, 5.0, out.At(2, 2))
}

func TestNormalize_NoWarningForVaryingColumns(t *testing.T) {
	m := mat.NewDense(2, 1, []float64{1, 2})
	_, s, err := Normalize(m, 2)
	require.NoError(t, err)
	assert.NoError(t, s.Warning())
}

func TestNormalize_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	const rows, cols, split = 60, 4, 40
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 1000*rng.Float64() - 200
	}
	m := mat.NewDense(rows, cols, data)

	scaled, s, err := Normalize(m, split)
	require.NoError(t, err)
	back, err := s.Inverse(scaled)
	require.NoError(t, err)

	for i := 0; i < split; i++ {
		for j := 0; j < cols; j++ {
			want := m.At(i, j)
			tol := 1e-9 * math.Max(1, math.Abs(want))
			assert.InDelta(t, want, back.At(i, j), tol)
		}
	}
}

func TestNormalize_StatisticsAreFrozen(t *testing.T) {
	a := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	b := mat.NewDense(4, 1, []float64{1, 2, 300, -4000})

	sa, err := FitScaler(a, 2)
	require.NoError(t, err)
	sb, err := FitScaler(b, 2)
	require.NoError(t, err)
	assert.Equal(t, sa.Mean, sb.Mean)
	assert.Equal(t, sa.Std, sb.Std)
}

func TestNormalize_InvalidSplit(t *testing.T) {
	m := mat.NewDense(3, 1, []float64{1, 2, 3})
	for _, split := range []int{0, -1, 4} {
		_, _, err := Normalize(m, split)
		require.Error(t, err, "split %d", split)
		assert.Contains(t, err.Error(), "out of range")
	}
}

func TestScaler_ColumnMismatch(t *testing.T) {
	s, err := FitScaler(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), 2)
	require.NoError(t, err)

	_, err = s.Apply(mat.NewDense(1, 3, []float64{1, 2, 3}))
	require.Error(t, err)
	_, err = s.Inverse(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
}

func TestNormalize_RejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		value    float64
	}{
		{"nan in training rows", 1, 0, math.NaN()},
		{"inf in training rows", 0, 1, math.Inf(1)},
		{"nan past the split", 3, 1, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mat.NewDense(4, 2, []float64{
				1, 20,
				2, 20,
				3, 20,
				4, 20,
			})
			m.Set(tt.row, tt.col, tt.value)

			out, _, err := Normalize(m, 3)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrNonFinite))

			var nf *NonFiniteValueError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.row, nf.Row)
			assert.Equal(t, tt.col, nf.Column)
		})
	}
}

func TestScaler_ApplyRejectsNaN(t *testing.T) {
	s, err := FitScaler(mat.NewDense(2, 1, []float64{1, 3}), 2)
	require.NoError(t, err)

	_, err = s.Apply(mat.NewDense(2, 1, []float64{2, math.NaN()}))
	require.ErrorIs(t, err, ErrNonFinite)
	assert.Contains(t, err.Error(), "row 1 column 0")
}
