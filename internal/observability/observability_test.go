package observability

import (
	"log/slog"
	"testing"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_RespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		enabled slog.Level
		below   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"verbose", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "text"})
			assert.True(t, logger.Enabled(t.Context(), tt.enabled))
			assert.False(t, logger.Enabled(t.Context(), tt.below))
		})
	}
}

func TestNewLogger_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})
	assert.Same(t, logger, slog.Default())
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DaysEmitted.Add(3)
	a.ClassDays.WithLabelValues("rain").Set(2)

	assert.InDelta(t, 3, testutil.ToFloat64(a.DaysEmitted), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.DaysEmitted), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(a.ClassDays.WithLabelValues("rain")), 0)
}
