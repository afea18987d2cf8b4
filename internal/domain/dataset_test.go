package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_AppendAndAccess(t *testing.T) {
	ds := NewDataset(2, 3, 1)
	require.NoError(t, ds.Append(DaySample{Date: "01.01.2009", Steps: 2, Features: 3, Values: []float64{1, 2, 3, 4, 5, 6}, Label: 0.7}))

	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, [3]int{1, 2, 3}, ds.Shape())
	assert.Equal(t, 6.0, ds.At(0, 1, 2))
	assert.Equal(t, [][][]float64{{{1, 2, 3}, {4, 5, 6}}}, ds.Tensor())

	s := ds.Sample(0)
	assert.Equal(t, []float64{4, 5, 6}, s.Row(1))
	assert.True(t, s.Rainy())
	s.Values[0] = 100
	assert.Equal(t, 1.0, ds.At(0, 0, 0))
}

func TestDataset_AppendRejectsWrongShape(t *testing.T) {
	ds := NewDataset(2, 3, 0)
	err := ds.Append(DaySample{Date: "01.01.2009", Steps: 2, Features: 3, Values: []float64{1, 2, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01.01.2009")
	assert.Zero(t, ds.Len())

	err = ds.Append(DaySample{Date: "02.01.2009", Steps: 3, Features: 2, Values: make([]float64, 6)})
	require.Error(t, err)
}

func TestDataset_AccessorsReturnCopies(t *testing.T) {
	ds := NewDataset(1, 1, 0)
	require.NoError(t, ds.Append(DaySample{Date: "d", Steps: 1, Features: 1, Values: []float64{1}, Label: 2}))

	labels := ds.Labels()
	labels[0] = 9
	dates := ds.Dates()
	dates[0] = "x"

	assert.Equal(t, 2.0, ds.Label(0))
	assert.Equal(t, "d", ds.Date(0))
}
