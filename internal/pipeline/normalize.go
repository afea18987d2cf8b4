package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// table is the materialized selection of a source: one row of selected
// features per observation, plus the date and raw rainfall of that row.
type table struct {
	dates    []string
	rain     []float64
	features []float64
}

func (p *Pipeline) materialize(ctx context.Context) (*table, error) {
	wopts := p.opts.window()
	t := &table{}
	err := p.source.Each(ctx, func(obs domain.Observation) error {
		row := len(t.dates)
		if err := wopts.CheckRow(row, obs); err != nil {
			return err
		}
		p.metrics.RowsRead.Inc()
		t.dates = append(t.dates, obs.Date())
		t.rain = append(t.rain, obs.Values[wopts.RainfallColumn])
		for _, j := range wopts.Selected {
			t.features = append(t.features, obs.Values[j])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return t, nil
}

// trainSplit returns the number of leading rows the scaler is fitted on.
func trainSplit(rows int, fraction float64) int {
	split := int(float64(rows) * fraction)
	return max(1, min(split, rows))
}

// windowNormalized loads the whole table, standardizes the selected features
// and then windows the normalized rows. Labels still come from the raw
// rainfall column.
func (p *Pipeline) windowNormalized(ctx context.Context, logger *slog.Logger, report *Report) (*domain.Dataset, domain.WindowStats, error) {
	b, err := domain.NewDatasetBuilder(p.opts.window())
	if err != nil {
		return nil, domain.WindowStats{}, err
	}
	t, err := p.materialize(ctx)
	if err != nil {
		return nil, domain.WindowStats{}, err
	}
	rows := len(t.dates)
	if rows == 0 {
		return nil, domain.WindowStats{StepsPerDay: p.opts.StepsPerDay},
			&domain.EmptyDatasetError{StepsPerDay: p.opts.StepsPerDay}
	}

	cols := len(p.opts.Selected)
	split := trainSplit(rows, p.opts.TrainSplitFraction)
	norm, scaler, err := domain.Normalize(mat.NewDense(rows, cols, t.features), split)
	if err != nil {
		return nil, domain.WindowStats{}, p.normalizeError(t, err)
	}
	report.TrainSplit = split
	p.recordScaler(logger, report, scaler)

	for i := 0; i < rows; i++ {
		if err := b.AddFeatures(t.dates[i], norm.RawRowView(i), t.rain[i]); err != nil {
			return nil, domain.WindowStats{}, err
		}
	}
	return b.Finish()
}

// normalizeError names the feature and timestamp date of a non-finite value.
func (p *Pipeline) normalizeError(t *table, err error) error {
	var nf *domain.NonFiniteValueError
	if !errors.As(err, &nf) {
		return fmt.Errorf("normalize: %w", err)
	}
	keys, kerr := p.opts.Catalog.SelectedKeys(selectedAt(p.opts.Selected, []int{nf.Column}))
	if kerr != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	return fmt.Errorf("normalize: column %q on %s: %w", keys[0], t.dates[nf.Row], err)
}

func (p *Pipeline) recordScaler(logger *slog.Logger, report *Report, scaler domain.Scaler) {
	p.metrics.DegenerateCols.Set(float64(len(scaler.Degenerate)))
	if len(scaler.Degenerate) == 0 {
		return
	}
	keys, _ := p.opts.Catalog.SelectedKeys(selectedAt(p.opts.Selected, scaler.Degenerate))
	report.DegenerateFeatures = keys
	logger.Warn("degenerate feature variance", "error", scaler.Warning(), "features", keys)
}

// selectedAt maps positions within the selection back to catalog indices.
func selectedAt(selected, positions []int) []int {
	out := make([]int, len(positions))
	for i, pos := range positions {
		out[i] = selected[pos]
	}
	return out
}
