package pipeline

import (
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
)

// Report summarizes one dataset build. It is served on /report and logged
// at the end of a run.
type Report struct {
	RunID          string    `json:"run_id"`
	CatalogVersion string    `json:"catalog_version"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`

	Rows         int                 `json:"rows"`
	StepsPerDay  int                 `json:"steps_per_day"`
	DaysEmitted  int                 `json:"days_emitted"`
	Dropped      []domain.DroppedDay `json:"dropped,omitempty"`
	TrailingRows int                 `json:"trailing_rows"`

	Features           []string `json:"features"`
	Normalized         bool     `json:"normalized"`
	TrainSplit         int      `json:"train_split,omitempty"`
	DegenerateFeatures []string `json:"degenerate_features,omitempty"`

	// Classes counts days per class before balancing.
	Classes  domain.ClassCounts `json:"classes"`
	Balanced domain.ClassCounts `json:"balanced"`
	Shape    [3]int             `json:"shape"`

	Published int    `json:"published"`
	Error     string `json:"error,omitempty"`
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
