// Command validate checks a directory of weather recordings before a dataset
// build: timestamp ordering, sampling interval, the day schedule seen by the
// windowing engine, sensor sentinel values and class balance. It also prints
// per-chunk summaries of the raw series.
//
// Usage:
//
//	go run ./cmd/validate data --chunk-rows 4320
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/adapter/csvsource"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"github.com/alecthomas/kong"
)

// sentinel marks a missing sensor reading in the archive.
const sentinel = -9999.0

type cli struct {
	Dir       string `arg:"" help:"Directory of source CSV files." type:"existingdir"`
	Encoding  string `help:"Source file encoding." default:"iso-8859-1" enum:"iso-8859-1,latin1,utf-8,utf8"`
	Steps     int    `help:"Observations per day." default:"144"`
	ChunkRows int    `help:"Rows per summary chunk, 0 disables summaries." default:"4320"`
	MaxErrors int    `help:"Errors printed per failed phase." default:"20"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("validate"),
		kong.Description("Integrity checks for weather recordings."),
		kong.UsageOnError(),
	)
	if code := run(c); code != 0 {
		os.Exit(code)
	}
}

func run(c cli) int {
	fmt.Println("=== Weather Recording Validation ===")
	fmt.Println()

	rows, err := csvsource.New(c.Dir, csvsource.WithEncoding(c.Encoding)).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load source: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateOrdering(rows, c.Steps),
		validateSchedule(rows, c.Steps),
		validateSentinels(rows, catalog.Default),
		validateClasses(rows, c.Steps),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == c.MaxErrors {
				fmt.Printf("  ... %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if c.ChunkRows > 0 {
		printChunks(summarizeChunks(rows, c.ChunkRows))
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateOrdering(rows []domain.Observation, steps int) *phase {
	p := &phase{name: "Timestamps ordered at fixed interval"}
	if steps <= 0 {
		p.errorf("steps per day must be positive, got %d", steps)
		return p
	}
	interval := 24 * time.Hour / time.Duration(steps)

	var prev time.Time
	for i, r := range rows {
		ts, err := time.Parse(domain.TimestampLayout, r.Timestamp)
		if err != nil {
			p.errorf("row %d: unparseable timestamp %q", i, r.Timestamp)
			continue
		}
		if i > 0 && !prev.IsZero() {
			switch d := ts.Sub(prev); {
			case d <= 0:
				p.errorf("row %d: %s not after %s", i, r.Timestamp, prev.Format(domain.TimestampLayout))
			case d != interval:
				p.errorf("row %d: gap of %s before %s", i, d, r.Timestamp)
			}
		}
		prev = ts
	}
	return p
}

func validateSchedule(rows []domain.Observation, steps int) *phase {
	p := &phase{name: "Every day has a full schedule"}
	_, stats, err := buildDataset(rows, steps)
	if err != nil && stats.Rows == 0 {
		p.errorf("windowing: %v", err)
		return p
	}
	for _, d := range stats.Dropped {
		p.errorf("%s: %d rows, want %d (first row %d)", d.Date, d.Rows, steps, d.FirstRow)
	}
	if err != nil {
		p.errorf("windowing: %v", err)
	}
	return p
}

func validateSentinels(rows []domain.Observation, cat catalog.Catalog) *phase {
	p := &phase{name: "No missing-value sentinels"}
	keys := cat.Keys()
	for i, r := range rows {
		for j, v := range r.Values {
			if v <= sentinel || math.IsNaN(v) || math.IsInf(v, 0) {
				key := fmt.Sprintf("column %d", j)
				if j < len(keys) {
					key = keys[j]
				}
				p.errorf("row %d (%s): %s = %v", i, r.Timestamp, key, v)
			}
		}
	}
	return p
}

func validateClasses(rows []domain.Observation, steps int) *phase {
	p := &phase{name: "Rain and no-rain days can be balanced"}
	ds, _, err := buildDataset(rows, steps)
	if err != nil {
		p.errorf("windowing: %v", err)
		return p
	}
	rain := 0
	for _, l := range ds.Labels() {
		if l != 0 {
			rain++
		}
	}
	noRain := ds.Len() - rain
	fmt.Printf("Classes: %d rain days, %d no-rain days\n", rain, noRain)
	if rain == 0 || noRain < rain {
		p.errorf("%v", &domain.ClassImbalanceError{Rain: rain, NoRain: noRain})
	}
	return p
}

func buildDataset(rows []domain.Observation, steps int) (*domain.Dataset, domain.WindowStats, error) {
	return domain.BuildDataset(rows, domain.WindowOptions{
		StepsPerDay:    steps,
		Selected:       catalog.DefaultSelected,
		RainfallColumn: catalog.RainfallIndex,
	})
}

// ── Chunk summaries ──

type chunkSummary struct {
	first, last string
	rows        int
	meanTemp    float64
	minPressure float64
	maxPressure float64
	rain        float64
}

const (
	pressureIndex    = 0
	temperatureIndex = 1
)

func summarizeChunks(rows []domain.Observation, size int) []chunkSummary {
	var out []chunkSummary
	for start := 0; start < len(rows); start += size {
		chunk := rows[start:min(start+size, len(rows))]
		s := chunkSummary{
			first:       chunk[0].Timestamp,
			last:        chunk[len(chunk)-1].Timestamp,
			rows:        len(chunk),
			minPressure: math.Inf(1),
			maxPressure: math.Inf(-1),
		}
		for _, r := range chunk {
			s.meanTemp += r.Values[temperatureIndex]
			s.minPressure = math.Min(s.minPressure, r.Values[pressureIndex])
			s.maxPressure = math.Max(s.maxPressure, r.Values[pressureIndex])
			s.rain += r.Values[catalog.RainfallIndex]
		}
		s.meanTemp /= float64(len(chunk))
		out = append(out, s)
	}
	return out
}

func printChunks(chunks []chunkSummary) {
	fmt.Println()
	fmt.Println("=== Chunks ===")
	fmt.Printf("  %-20s %-20s %6s %8s %17s %8s\n", "first", "last", "rows", "T mean", "p range", "rain")
	for _, c := range chunks {
		fmt.Printf("  %-20s %-20s %6d %8.2f %8.1f-%-8.1f %8.1f\n",
			c.first, c.last, c.rows, c.meanTemp, c.minPressure, c.maxPressure, c.rain)
	}
}
