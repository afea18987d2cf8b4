package domain

import "fmt"

// DaySample is the feature window and rainfall label of one complete day.
// Values is row-major: Steps rows of Features values each.
type DaySample struct {
	Date     string    `json:"date"`
	Steps    int       `json:"steps"`
	Features int       `json:"features"`
	Values   []float64 `json:"values"`
	Label    float64   `json:"label"`
}

// Row returns the feature vector of one intra-day step.
func (s DaySample) Row(step int) []float64 {
	return s.Values[step*s.Features : (step+1)*s.Features]
}

// Rainy reports whether any rain was recorded for the day.
func (s DaySample) Rainy() bool { return s.Label != 0 }

// Dataset is a stack of day windows, shape [days, steps, features], with a
// parallel label vector. Index i of every accessor refers to the same day.
type Dataset struct {
	steps    int
	features int
	values   []float64
	labels   []float64
	dates    []string
}

// NewDataset returns an empty dataset for windows of the given shape.
// capacity is a hint for the number of days.
func NewDataset(steps, features, capacity int) *Dataset {
	if capacity < 0 {
		capacity = 0
	}
	return &Dataset{
		steps:    steps,
		features: features,
		values:   make([]float64, 0, capacity*steps*features),
		labels:   make([]float64, 0, capacity),
		dates:    make([]string, 0, capacity),
	}
}

// Append copies a day sample into the dataset. The sample must match the
// dataset's window shape.
func (d *Dataset) Append(s DaySample) error {
	if s.Steps != d.steps || s.Features != d.features || len(s.Values) != d.steps*d.features {
		return fmt.Errorf("day %s: window shape [%d,%d] (%d values) does not match dataset [%d,%d]",
			s.Date, s.Steps, s.Features, len(s.Values), d.steps, d.features)
	}
	d.values = append(d.values, s.Values...)
	d.labels = append(d.labels, s.Label)
	d.dates = append(d.dates, s.Date)
	return nil
}

// Len returns the number of days.
func (d *Dataset) Len() int { return len(d.labels) }

// Shape returns the tensor dimensions [days, steps, features].
func (d *Dataset) Shape() [3]int { return [3]int{len(d.labels), d.steps, d.features} }

// Window returns the row-major values of day i. The slice aliases the
// dataset and must not be modified.
func (d *Dataset) Window(i int) []float64 {
	n := d.steps * d.features
	return d.values[i*n : (i+1)*n : (i+1)*n]
}

// At returns a single value of the tensor.
func (d *Dataset) At(day, step, feature int) float64 {
	return d.values[(day*d.steps+step)*d.features+feature]
}

// Label returns the rainfall label of day i.
func (d *Dataset) Label(i int) float64 { return d.labels[i] }

// Date returns the calendar date of day i.
func (d *Dataset) Date(i int) string { return d.dates[i] }

// Sample returns an independent copy of day i.
func (d *Dataset) Sample(i int) DaySample {
	return DaySample{
		Date:     d.dates[i],
		Steps:    d.steps,
		Features: d.features,
		Values:   append([]float64(nil), d.Window(i)...),
		Label:    d.labels[i],
	}
}

// Labels returns a copy of the label vector.
func (d *Dataset) Labels() []float64 { return append([]float64(nil), d.labels...) }

// Dates returns a copy of the day dates.
func (d *Dataset) Dates() []string { return append([]string(nil), d.dates...) }

// Tensor returns a freshly allocated [days][steps][features] copy.
func (d *Dataset) Tensor() [][][]float64 {
	out := make([][][]float64, d.Len())
	for i := range out {
		day := make([][]float64, d.steps)
		w := d.Window(i)
		for s := range day {
			day[s] = append([]float64(nil), w[s*d.features:(s+1)*d.features]...)
		}
		out[i] = day
	}
	return out
}
