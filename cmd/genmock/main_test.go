package main

import (
	"testing"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/mockdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByDays(t *testing.T) {
	opts := mockdata.DefaultOptions()
	opts.Days = 5
	rows, err := mockdata.Rows(opts)
	require.NoError(t, err)

	parts := splitByDays(rows, domain.DefaultStepsPerDay, 2)
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 1+2*domain.DefaultStepsPerDay)
	assert.Len(t, parts[1], 2*domain.DefaultStepsPerDay)
	assert.Len(t, parts[2], domain.DefaultStepsPerDay)

	// Each later file starts with the first step of a day.
	assert.Equal(t, "03.01.2009 00:10:00", parts[1][0].Timestamp)
	assert.Equal(t, "05.01.2009 00:10:00", parts[2][0].Timestamp)

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	assert.Equal(t, len(rows), total)
}

func TestSplitByDays_SingleFile(t *testing.T) {
	opts := mockdata.DefaultOptions()
	opts.Days = 2
	rows, err := mockdata.Rows(opts)
	require.NoError(t, err)

	parts := splitByDays(rows, domain.DefaultStepsPerDay, 0)
	require.Len(t, parts, 1)
	assert.Len(t, parts[0], len(rows))
}
