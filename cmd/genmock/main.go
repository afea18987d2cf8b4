// Command genmock writes synthetic weather recordings in the layout of the
// Jena climate archive, for local runs and tests of the dataset build. Files
// are ISO-8859-1 encoded like the archive.
//
// Usage:
//
//	go run ./cmd/genmock --out data/mock --days 120 --file-days 30 --seed 7
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/mockdata"
	"github.com/alecthomas/kong"
)

type cli struct {
	Out             string  `help:"Output directory." default:"data/mock" type:"path"`
	Start           string  `help:"First date, YYYY-MM-DD." default:"2009-01-01"`
	Days            int     `help:"Number of days to generate." default:"60"`
	FileDays        int     `help:"Days per output file, 0 writes a single file." default:"0"`
	Steps           int     `help:"Observations per day." default:"144"`
	RainProbability float64 `help:"Chance that a day has rain." default:"0.3"`
	Seed            uint64  `help:"Random seed." default:"1"`
	Skip            []int   `help:"Row indices to leave out, to simulate gaps." sep:","`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("genmock"),
		kong.Description("Generate synthetic Jena-style weather recordings."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(run(c))
}

func run(c cli) error {
	start, err := time.Parse(time.DateOnly, c.Start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	rows, err := mockdata.Rows(mockdata.Options{
		Start:           start,
		Days:            c.Days,
		StepsPerDay:     c.Steps,
		RainProbability: c.RainProbability,
		Seed:            c.Seed,
		Skip:            c.Skip,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, part := range splitByDays(rows, c.Steps, c.FileDays) {
		path := filepath.Join(c.Out, fmt.Sprintf("mock_%03d.csv", i))
		if err := writeCSV(path, part); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s: %d rows", path, len(part))
	}
	log.Printf("total: %d rows", len(rows))

	printStats(rows, c.Steps)
	return nil
}

// splitByDays cuts rows into files of daysPerFile days. The opening midnight
// row stays in the first file.
func splitByDays(rows []domain.Observation, steps, daysPerFile int) [][]domain.Observation {
	if daysPerFile <= 0 || len(rows) == 0 {
		return [][]domain.Observation{rows}
	}
	size := daysPerFile * steps
	parts := [][]domain.Observation{}
	first := min(len(rows), 1+size)
	parts = append(parts, rows[:first])
	for i := first; i < len(rows); i += size {
		parts = append(parts, rows[i:min(i+size, len(rows))])
	}
	return parts
}

func writeCSV(path string, rows []domain.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mockdata.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(rows []domain.Observation, steps int) {
	ds, stats, err := domain.BuildDataset(rows, domain.WindowOptions{
		StepsPerDay:    steps,
		Selected:       catalog.DefaultSelected,
		RainfallColumn: catalog.RainfallIndex,
	})
	if err != nil {
		log.Printf("windowing: %v", err)
		return
	}

	rain := 0
	for _, l := range ds.Labels() {
		if l != 0 {
			rain++
		}
	}
	fmt.Println()
	fmt.Println("=== Windowing ===")
	fmt.Printf("  complete days: %d\n", stats.Emitted)
	fmt.Printf("  dropped days:  %d\n", len(stats.Dropped))
	for _, d := range stats.Dropped {
		fmt.Printf("    %s: %d rows (first row %d)\n", d.Date, d.Rows, d.FirstRow)
	}
	fmt.Printf("  trailing rows: %d\n", stats.TrailingRows)
	fmt.Println()
	fmt.Println("=== Classes ===")
	fmt.Printf("  rain:    %d\n", rain)
	fmt.Printf("  no rain: %d\n", ds.Len()-rain)
	if rain == 0 || ds.Len()-rain < rain {
		fmt.Println("  warning: classes cannot be balanced")
	}
}
