package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/config"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Source streams observation rows in time order.
type Source interface {
	Each(ctx context.Context, fn func(domain.Observation) error) error
}

// Sink receives the balanced samples of a run in batches.
type Sink interface {
	LoadBatch(ctx context.Context, runID string, samples []domain.DaySample) error
}

// ErrBuildRunning is returned by Run while another build is in progress.
var ErrBuildRunning = errors.New("dataset build already running")

// Options configures a dataset build.
type Options struct {
	Catalog        catalog.Catalog
	StepsPerDay    int
	Selected       []int
	RainfallColumn int

	// Normalize standardizes the selected features with statistics frozen
	// over the first TrainSplitFraction of rows before windowing.
	Normalize          bool
	TrainSplitFraction float64

	PublishBatchSize     int
	RetryInitialInterval time.Duration
	RetryMaxElapsed      time.Duration
}

// OptionsFromConfig maps the service configuration onto build options for the
// default catalog.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Catalog:              catalog.Default,
		StepsPerDay:          cfg.StepsPerDay,
		Selected:             cfg.SelectedFeatures,
		RainfallColumn:       catalog.RainfallIndex,
		Normalize:            cfg.Normalize,
		TrainSplitFraction:   cfg.TrainSplitFraction,
		PublishBatchSize:     cfg.PublishBatchSize,
		RetryInitialInterval: 200 * time.Millisecond,
		RetryMaxElapsed:      2 * time.Minute,
	}
}

func (o Options) window() domain.WindowOptions {
	return domain.WindowOptions{
		StepsPerDay:    o.StepsPerDay,
		Selected:       o.Selected,
		RainfallColumn: o.RainfallColumn,
	}
}

// Result is the outcome of a successful build.
type Result struct {
	// Dataset is the class-balanced dataset.
	Dataset *domain.Dataset
	Report  *Report
}

// Pipeline runs Source, windowing, balancing and the optional Sink as one
// batch build.
type Pipeline struct {
	source  Source
	sink    Sink
	rng     *rand.Rand
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
	clock   clockwork.Clock

	running atomic.Bool
	ready   atomic.Bool

	mu      sync.RWMutex
	last    *Report
	lastErr error
}

// New creates a Pipeline. sink may be nil to skip publishing. rng drives the
// no-rain draw of class balancing.
func New(src Source, sink Sink, rng *rand.Rand, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		source:  src,
		sink:    sink,
		rng:     rng,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
		clock:   clockwork.NewRealClock(),
	}
}

// SetClock replaces the clock used for report timestamps. Passing nil
// restores the real clock.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	p.clock = c
}

// CheckReadiness returns nil once a build has completed successfully, or an
// error describing why the dataset is not available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastErr != nil {
		return fmt.Errorf("last dataset build failed: %w", p.lastErr)
	}
	if p.running.Load() {
		return errors.New("dataset build in progress")
	}
	return errors.New("dataset has not been built yet")
}

// LastReport returns the report of the most recent build, failed or not.
func (p *Pipeline) LastReport() (*Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.last != nil
}

// Run executes one complete build. Windowing drops and degenerate feature
// variance are logged and reported; they do not fail the build.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBuildRunning
	}
	defer p.running.Store(false)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	report := &Report{
		RunID:          uuid.NewString(),
		CatalogVersion: catalog.Version,
		StartedAt:      p.clock.Now(),
		StepsPerDay:    p.opts.StepsPerDay,
		Normalized:     p.opts.Normalize,
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("dataset build started", "steps_per_day", p.opts.StepsPerDay, "normalize", p.opts.Normalize)

	balanced, err := p.build(ctx, logger, report)
	report.FinishedAt = p.clock.Now()
	p.metrics.BuildDuration.Observe(report.Duration().Seconds())

	if err != nil {
		report.Error = err.Error()
		p.finish(report, err)
		logger.Error("dataset build failed", "error", err)
		return nil, err
	}

	p.finish(report, nil)
	logger.Info("dataset build finished",
		"shape", report.Shape,
		"rain_days", report.Balanced.Rain,
		"no_rain_days", report.Balanced.NoRain,
		"published", report.Published,
	)
	return &Result{Dataset: balanced, Report: report}, nil
}

func (p *Pipeline) finish(report *Report, err error) {
	p.mu.Lock()
	p.last = report
	p.lastErr = err
	p.mu.Unlock()
	p.ready.Store(err == nil)
}

func (p *Pipeline) build(ctx context.Context, logger *slog.Logger, report *Report) (*domain.Dataset, error) {
	titles, err := p.opts.Catalog.Titles(p.opts.Selected)
	if err != nil {
		return nil, fmt.Errorf("feature selection: %w", err)
	}
	report.Features = titles
	logger.Info("selected features", "titles", titles)

	var (
		ds    *domain.Dataset
		stats domain.WindowStats
	)
	if p.opts.Normalize {
		ds, stats, err = p.windowNormalized(ctx, logger, report)
	} else {
		ds, stats, err = p.window(ctx)
	}
	p.recordWindowStats(logger, report, stats)
	if err != nil {
		return nil, err
	}

	report.Classes = countClasses(ds)
	p.metrics.ClassDays.WithLabelValues("rain").Set(float64(report.Classes.Rain))
	p.metrics.ClassDays.WithLabelValues("no_rain").Set(float64(report.Classes.NoRain))
	logger.Info("days per class", "rain", report.Classes.Rain, "no_rain", report.Classes.NoRain)

	balanced, counts, err := domain.Balance(ds, p.rng)
	if err != nil {
		return nil, err
	}
	report.Balanced = counts
	report.Shape = balanced.Shape()
	p.metrics.BalancedDays.Set(float64(balanced.Len()))

	if p.sink != nil {
		n, err := p.publish(ctx, logger, report.RunID, balanced)
		report.Published = n
		if err != nil {
			return nil, err
		}
	}
	return balanced, nil
}

// window streams the source straight into the windowing engine.
func (p *Pipeline) window(ctx context.Context) (*domain.Dataset, domain.WindowStats, error) {
	b, err := domain.NewDatasetBuilder(p.opts.window())
	if err != nil {
		return nil, domain.WindowStats{}, err
	}
	err = p.source.Each(ctx, func(obs domain.Observation) error {
		p.metrics.RowsRead.Inc()
		return b.Add(obs)
	})
	if err != nil {
		return nil, domain.WindowStats{}, fmt.Errorf("read source: %w", err)
	}
	return b.Finish()
}

func (p *Pipeline) recordWindowStats(logger *slog.Logger, report *Report, stats domain.WindowStats) {
	report.Rows = stats.Rows
	report.DaysEmitted = stats.Emitted
	report.Dropped = stats.Dropped
	report.TrailingRows = stats.TrailingRows

	p.metrics.DaysEmitted.Add(float64(stats.Emitted))
	p.metrics.DaysDropped.Add(float64(len(stats.Dropped)))
	p.metrics.TrailingRows.Set(float64(stats.TrailingRows))

	for _, d := range stats.Dropped {
		logger.Debug("day dropped", "date", d.Date, "rows", d.Rows, "first_row", d.FirstRow)
	}
	if err := stats.Err(); err != nil {
		logger.Warn("incomplete days dropped", "error", err, "count", len(stats.Dropped))
	}
	if stats.TrailingRows > 0 {
		logger.Info("trailing partial day not emitted", "rows", stats.TrailingRows)
	}
}

func countClasses(ds *domain.Dataset) domain.ClassCounts {
	var c domain.ClassCounts
	for i := 0; i < ds.Len(); i++ {
		if ds.Label(i) == 0 {
			c.NoRain++
		} else {
			c.Rain++
		}
	}
	return c
}
