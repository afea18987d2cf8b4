// Package mockdata generates synthetic recordings in the layout of the Jena
// climate archive: one row per intra-day step, where a day's rows run from
// the first step after midnight up to midnight of the next date.
package mockdata

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// SourceHeader is the header line of the archive files, before the columns
// are renamed to catalog keys.
var SourceHeader = []string{
	"Date Time", "p (mbar)", "T (degC)", "Tpot (K)", "Tdew (degC)", "rh (%)",
	"VPmax (mbar)", "VPact (mbar)", "VPdef (mbar)", "sh (g/kg)", "H2OC (mmol/mol)",
	"rho (g/m**3)", "wv (m/s)", "max. wv (m/s)", "wd (deg)", "rain (mm)",
	"raining (s)", "SWDR (W/m²)", "PAR (µmol/m²/s)", "max. PAR (µmol/m²/s)",
	"Tlog (degC)", "CO2 (ppm)",
}

// Options configures generation.
type Options struct {
	// Start is the first date.
	Start       time.Time
	Days        int
	StepsPerDay int
	// RainProbability is the chance that a day has rain.
	RainProbability float64
	Seed            uint64
	// Skip lists row indices to leave out, to simulate gaps. Index 0 is the
	// opening midnight row; step k of day d is d*StepsPerDay+k.
	Skip []int
}

// DefaultOptions returns one month at 10-minute resolution.
func DefaultOptions() Options {
	return Options{
		Start:           time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:            30,
		StepsPerDay:     domain.DefaultStepsPerDay,
		RainProbability: 0.3,
		Seed:            1,
	}
}

// Rows generates the observation table. The first row is stamped at midnight
// of Start and only opens the series; every day after it is complete. Row
// values are deterministic for a given Seed.
func Rows(opts Options) ([]domain.Observation, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", opts.Days)
	}
	if opts.StepsPerDay <= 0 {
		return nil, fmt.Errorf("steps per day must be positive, got %d", opts.StepsPerDay)
	}
	if opts.RainProbability < 0 || opts.RainProbability > 1 {
		return nil, fmt.Errorf("rain probability %v out of range [0,1]", opts.RainProbability)
	}

	skip := make(map[int]bool, len(opts.Skip))
	for _, i := range opts.Skip {
		skip[i] = true
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	step := 24 * time.Hour / time.Duration(opts.StepsPerDay)
	width := catalog.Default.Len()

	rows := make([]domain.Observation, 0, 1+opts.Days*opts.StepsPerDay)
	add := func(idx int, ts time.Time, values []float64) {
		if skip[idx] {
			return
		}
		rows = append(rows, domain.Observation{
			Timestamp: ts.Format(domain.TimestampLayout),
			Values:    values,
		})
	}

	start := opts.Start.Truncate(24 * time.Hour)
	add(0, start, observe(rng, start, 0, false, width))
	for d := 0; d < opts.Days; d++ {
		midnight := start.AddDate(0, 0, d)
		rainy := rng.Float64() < opts.RainProbability
		for k := 1; k <= opts.StepsPerDay; k++ {
			ts := midnight.Add(time.Duration(k) * step)
			add(d*opts.StepsPerDay+k, ts, observe(rng, ts, float64(k)/float64(opts.StepsPerDay), rainy, width))
		}
	}
	return rows, nil
}

// observe produces one row of plausible values. phase is the fraction of the
// day elapsed.
func observe(rng *rand.Rand, ts time.Time, phase float64, rainy bool, width int) []float64 {
	season := math.Cos(2 * math.Pi * float64(ts.YearDay()-200) / 365)
	diurnal := math.Sin(2 * math.Pi * (phase - 0.25))

	t := 9 + 9*season + 4*diurnal + rng.NormFloat64()*0.3
	p := 990 + 8*math.Sin(float64(ts.YearDay())/5) + rng.NormFloat64()*0.5
	rh := math.Min(100, 75-15*diurnal+rng.NormFloat64()*2)
	if rainy {
		rh = math.Min(100, rh+15)
	}
	vpmax := 6.1078 * math.Exp(17.27*t/(t+237.3))
	vpact := vpmax * rh / 100
	tdew := 237.3 * math.Log(vpact/6.1078) / (17.27 - math.Log(vpact/6.1078))
	sh := 622 * vpact / (p - 0.378*vpact)
	wv := math.Abs(2 + rng.NormFloat64())
	sun := math.Max(0, diurnal) * (300 + 300*season)
	if rainy {
		sun *= 0.3
	}

	var rain, raining float64
	if rainy && rng.Float64() < 0.25 {
		rain = math.Round(rng.Float64()*5) / 10
		if rain > 0 {
			raining = 600
		}
	}

	v := make([]float64, width)
	v[0] = p
	v[1] = t
	v[2] = t + 273.15
	v[3] = tdew
	v[4] = rh
	v[5] = vpmax
	v[6] = vpact
	v[7] = vpmax - vpact
	v[8] = sh
	v[9] = vpact / p * 1000
	v[10] = p * 100 / (287.05 * (t + 273.15)) * 1000
	v[11] = wv
	v[12] = wv * 1.6
	v[13] = math.Mod(180+rng.NormFloat64()*60+360, 360)
	v[14] = rain
	v[15] = raining
	v[16] = sun
	v[17] = sun * 2
	v[18] = sun * 2.2
	v[19] = t + 1.5
	v[20] = 410 + rng.NormFloat64()*5
	for i := range v {
		v[i] = math.Round(v[i]*100) / 100
	}
	return v
}

// WriteCSV writes rows with the archive header, encoded as ISO-8859-1 like
// the archive files.
func WriteCSV(w io.Writer, rows []domain.Observation) error {
	bw := bufio.NewWriter(charmap.ISO8859_1.NewEncoder().Writer(w))
	if err := writeLine(bw, quoteAll(SourceHeader)); err != nil {
		return err
	}
	buf := make([]byte, 0, 256)
	for _, row := range rows {
		buf = buf[:0]
		buf = append(buf, row.Timestamp...)
		for _, v := range row.Values {
			buf = append(buf, ',')
			buf = strconv.AppendFloat(buf, v, 'f', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func quoteAll(fields []string) []byte {
	var b []byte
	for i, f := range fields {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendQuote(b, f)
	}
	return b
}

func writeLine(w *bufio.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return w.WriteByte('\n')
}
