package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedSchedule matches day buckets dropped for having the wrong
	// number of rows.
	ErrMalformedSchedule = errors.New("malformed day schedule")
	// ErrEmptyDataset matches windowing runs that produced no complete day.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrClassImbalance matches sampler runs that cannot balance the classes.
	ErrClassImbalance = errors.New("class imbalance")
	// ErrDegenerateVariance matches zero-variance feature columns.
	ErrDegenerateVariance = errors.New("degenerate feature variance")
	// ErrNonFinite matches NaN or infinite values handed to the scaler.
	ErrNonFinite = errors.New("non-finite feature value")
)

// DroppedDay describes a day bucket that closed with the wrong row count.
type DroppedDay struct {
	Date     string `json:"date"`
	Rows     int    `json:"rows"`
	FirstRow int    `json:"first_row"`
}

// MalformedScheduleError aggregates every dropped day of a windowing run.
// It is informational: complete days are still emitted.
type MalformedScheduleError struct {
	StepsPerDay int
	Dropped     []DroppedDay
}

func (e *MalformedScheduleError) Error() string {
	first := e.Dropped[0]
	return fmt.Sprintf("%d day buckets dropped (expected %d rows): first %s had %d rows starting at row %d",
		len(e.Dropped), e.StepsPerDay, first.Date, first.Rows, first.FirstRow)
}

func (e *MalformedScheduleError) Is(target error) bool { return target == ErrMalformedSchedule }

// EmptyDatasetError reports a windowing run without a single complete day.
type EmptyDatasetError struct {
	Rows        int
	StepsPerDay int
	Schedule    *MalformedScheduleError
}

func (e *EmptyDatasetError) Error() string {
	msg := fmt.Sprintf("no complete day of %d rows in %d input rows", e.StepsPerDay, e.Rows)
	if e.Schedule != nil {
		msg += ": " + e.Schedule.Error()
	}
	return msg
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

func (e *EmptyDatasetError) Unwrap() error {
	if e.Schedule == nil {
		return nil
	}
	return e.Schedule
}

// ClassImbalanceError reports that the no-rain class is too small to match
// the rain class.
type ClassImbalanceError struct {
	Rain   int
	NoRain int
}

func (e *ClassImbalanceError) Error() string {
	return fmt.Sprintf("cannot balance %d rain days against %d no-rain days", e.Rain, e.NoRain)
}

func (e *ClassImbalanceError) Is(target error) bool { return target == ErrClassImbalance }

// DegenerateVarianceWarning lists feature columns whose standard deviation
// over the training prefix was zero.
type DegenerateVarianceWarning struct {
	Columns []int
	Split   int
}

func (e *DegenerateVarianceWarning) Error() string {
	cols := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		cols[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("zero variance in training rows [0,%d) for columns %s", e.Split, strings.Join(cols, ","))
}

func (e *DegenerateVarianceWarning) Is(target error) bool { return target == ErrDegenerateVariance }

// NonFiniteValueError reports the first NaN or infinite value of a matrix
// passed to the scaler.
type NonFiniteValueError struct {
	Row    int
	Column int
	Value  float64
}

func (e *NonFiniteValueError) Error() string {
	return fmt.Sprintf("row %d column %d: %v is not a finite value", e.Row, e.Column, e.Value)
}

func (e *NonFiniteValueError) Is(target error) bool { return target == ErrNonFinite }
