package domain

import (
	"errors"
	"fmt"
)

// DefaultStepsPerDay is the number of 10-minute observations in 24 hours.
const DefaultStepsPerDay = 144

type bucketState int

const (
	stateUnseeded bucketState = iota
	stateEmpty
	stateAccumulating
)

// WindowStats summarizes one windowing run.
type WindowStats struct {
	Rows         int          `json:"rows"`
	StepsPerDay  int          `json:"steps_per_day"`
	Emitted      int          `json:"emitted"`
	Dropped      []DroppedDay `json:"dropped,omitempty"`
	TrailingRows int          `json:"trailing_rows"`
}

// Err returns a *MalformedScheduleError when any day was dropped.
func (s WindowStats) Err() error {
	if len(s.Dropped) == 0 {
		return nil
	}
	return &MalformedScheduleError{StepsPerDay: s.StepsPerDay, Dropped: append([]DroppedDay(nil), s.Dropped...)}
}

// Windower folds a row stream into complete day samples. Emitted samples own
// their value buffers.
type Windower struct {
	steps    int
	features int
	emit     func(DaySample) error

	state    bucketState
	date     string
	firstRow int
	buf      []float64
	n        int
	rain     float64

	stats WindowStats
}

// NewWindower returns a Windower for days of steps rows with features values
// per row. emit is called once per complete day.
func NewWindower(steps, features int, emit func(DaySample) error) (*Windower, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps per day must be positive, got %d", steps)
	}
	if features <= 0 {
		return nil, fmt.Errorf("feature count must be positive, got %d", features)
	}
	if emit == nil {
		return nil, errors.New("emit function is required")
	}
	return &Windower{
		steps:    steps,
		features: features,
		emit:     emit,
		buf:      make([]float64, steps*features),
		stats:    WindowStats{StepsPerDay: steps},
	}, nil
}

// Push folds one row, given as its date, its selected feature vector and its
// rainfall amount. The feature vector is copied.
func (w *Windower) Push(date string, features []float64, rain float64) error {
	if len(features) != w.features {
		return fmt.Errorf("row %d: got %d features, want %d", w.stats.Rows, len(features), w.features)
	}
	row := w.stats.Rows
	w.stats.Rows++

	switch w.state {
	case stateUnseeded:
		w.date = date
		w.state = stateEmpty
		return nil
	case stateEmpty:
		w.rain = rain
		w.date = date
		w.firstRow = row
		w.append(features)
		w.state = stateAccumulating
		return nil
	}

	w.rain += rain
	w.append(features)
	if date == w.date {
		return nil
	}
	return w.close()
}

// Stats returns the run summary so far. TrailingRows counts the rows of the
// bucket that is still open.
func (w *Windower) Stats() WindowStats {
	s := w.stats
	s.Dropped = append([]DroppedDay(nil), w.stats.Dropped...)
	if w.state == stateAccumulating {
		s.TrailingRows = w.n
	}
	return s
}

func (w *Windower) append(features []float64) {
	if w.n < w.steps {
		copy(w.buf[w.n*w.features:], features)
	}
	w.n++
}

func (w *Windower) close() error {
	defer w.reset()

	if w.n != w.steps {
		w.stats.Dropped = append(w.stats.Dropped, DroppedDay{Date: w.date, Rows: w.n, FirstRow: w.firstRow})
		return nil
	}

	sample := DaySample{
		Date:     w.date,
		Steps:    w.steps,
		Features: w.features,
		Values:   w.buf,
		Label:    w.rain,
	}
	w.buf = make([]float64, w.steps*w.features)
	w.stats.Emitted++
	return w.emit(sample)
}

func (w *Windower) reset() {
	w.n = 0
	w.rain = 0
	w.state = stateEmpty
}

// WindowOptions configures dataset construction from full observation rows.
type WindowOptions struct {
	StepsPerDay    int
	Selected       []int
	RainfallColumn int
}

func (o WindowOptions) validate() error {
	if o.StepsPerDay <= 0 {
		return fmt.Errorf("steps per day must be positive, got %d", o.StepsPerDay)
	}
	if len(o.Selected) == 0 {
		return errors.New("feature selection is empty")
	}
	for _, i := range o.Selected {
		if i < 0 {
			return fmt.Errorf("negative feature index %d", i)
		}
	}
	if o.RainfallColumn < 0 {
		return fmt.Errorf("negative rainfall column %d", o.RainfallColumn)
	}
	return nil
}

// CheckRow reports whether obs is wide enough for the selected features and
// the rainfall column. row is only used in the error message.
func (o WindowOptions) CheckRow(row int, obs Observation) error {
	width := len(obs.Values)
	if o.RainfallColumn >= width {
		return fmt.Errorf("row %d (%s): rainfall column %d out of range for %d values", row, obs.Timestamp, o.RainfallColumn, width)
	}
	for _, i := range o.Selected {
		if i >= width {
			return fmt.Errorf("row %d (%s): feature index %d out of range for %d values", row, obs.Timestamp, i, width)
		}
	}
	return nil
}

// DatasetBuilder collects the samples of a Windower into a Dataset.
type DatasetBuilder struct {
	opts    WindowOptions
	ds      *Dataset
	w       *Windower
	scratch []float64
}

// NewDatasetBuilder returns a builder for the given options.
func NewDatasetBuilder(opts WindowOptions) (*DatasetBuilder, error) {
	return newDatasetBuilder(opts, 0)
}

func newDatasetBuilder(opts WindowOptions, capacity int) (*DatasetBuilder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	b := &DatasetBuilder{
		opts:    opts,
		ds:      NewDataset(opts.StepsPerDay, len(opts.Selected), capacity),
		scratch: make([]float64, 0, len(opts.Selected)),
	}
	w, err := NewWindower(opts.StepsPerDay, len(opts.Selected), b.ds.Append)
	if err != nil {
		return nil, err
	}
	b.w = w
	return b, nil
}

// Add folds a full observation row, selecting the configured columns and
// reading rainfall from the raw rainfall column.
func (b *DatasetBuilder) Add(obs Observation) error {
	if err := b.opts.CheckRow(b.w.stats.Rows, obs); err != nil {
		return err
	}
	b.scratch = obs.Select(b.scratch, b.opts.Selected)
	return b.w.Push(obs.Date(), b.scratch, obs.Values[b.opts.RainfallColumn])
}

// AddFeatures folds a row whose selected features were already extracted,
// e.g. after normalization.
func (b *DatasetBuilder) AddFeatures(date string, features []float64, rain float64) error {
	return b.w.Push(date, features, rain)
}

// Finish returns the dataset and run statistics. It fails with
// *EmptyDatasetError when no complete day was found.
func (b *DatasetBuilder) Finish() (*Dataset, WindowStats, error) {
	stats := b.w.Stats()
	if b.ds.Len() == 0 {
		err := &EmptyDatasetError{Rows: stats.Rows, StepsPerDay: stats.StepsPerDay}
		if sched, ok := stats.Err().(*MalformedScheduleError); ok {
			err.Schedule = sched
		}
		return nil, stats, err
	}
	return b.ds, stats, nil
}

// BuildDataset windows an in-memory table into a Dataset.
func BuildDataset(rows []Observation, opts WindowOptions) (*Dataset, WindowStats, error) {
	capacity := 0
	if opts.StepsPerDay > 0 {
		capacity = len(rows)/opts.StepsPerDay + 1
	}
	b, err := newDatasetBuilder(opts, capacity)
	if err != nil {
		return nil, WindowStats{}, err
	}
	for _, obs := range rows {
		if err := b.Add(obs); err != nil {
			return nil, b.w.Stats(), err
		}
	}
	return b.Finish()
}
