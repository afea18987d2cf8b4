// Package catalog describes the column schema of the Jena climate recordings
// and the subset of columns used to build rain-day samples.
//
// The source files carry a "Date Time" column followed by 21 numeric columns.
// Column headers in the files are not trusted: the loader renames columns by
// position, so the order of [Default] is the contract.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies the column layout. Bump it whenever entries are added,
// removed, or reordered, since selections are index positions into this list.
const Version = "jena-climate-2009"

// DateTimeKey is the name of the leading timestamp column.
const DateTimeKey = "Date Time"

// RainfallIndex is the position of "rain (mm)", the column summed into each
// day's label.
const RainfallIndex = 14

// Entry is one numeric column of the source table.
type Entry struct {
	Index int
	Key   string
	Title string
}

// Catalog is an ordered, immutable list of numeric columns.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from (key, title) pairs, assigning indices by position.
func New(pairs ...[2]string) Catalog {
	entries := make([]Entry, len(pairs))
	for i, p := range pairs {
		entries[i] = Entry{Index: i, Key: p[0], Title: p[1]}
	}
	return Catalog{entries: entries}
}

// Default is the Jena climate schema.
var Default = New(
	[2]string{"p (mbar)", "Pressure"},
	[2]string{"T (degC)", "Temperature"},
	[2]string{"Tpot (K)", "Temperature in Kelvin"},
	[2]string{"Tdew (degC)", "Temperature (dew point)"},
	[2]string{"rh (%)", "Relative Humidity"},
	[2]string{"VPmax (mbar)", "Saturation vapor pressure"},
	[2]string{"VPact (mbar)", "Vapor pressure"},
	[2]string{"VPdef (mbar)", "Vapor pressure deficit"},
	[2]string{"sh (g/kg)", "Specific humidity"},
	[2]string{"H2OC (mmol/mol)", "Water vapor concentration"},
	[2]string{"rho (g/m**3)", "Airtight"},
	[2]string{"wv (m/s)", "Wind speed"},
	[2]string{"max. wv (m/s)", "Maximum wind speed"},
	[2]string{"wd (deg)", "Wind direction in degrees"},
	[2]string{"rain (mm)", "Amount of the rainfall"},
	[2]string{"raining (s)", "Duration of the rainfall"},
	[2]string{"SWDR (W/m**2)", "Global radiation"},
	[2]string{"PAR (mu_mol/m**2/s)", "Photosynthetically radiation"},
	[2]string{"max. PAR (mu_mol/m**2/s)", "Maximum photosynthetically radiation"},
	[2]string{"Tlog (degC)", "Temperature of the data logger"},
	[2]string{"CO2 (ppm)", "CO2 concentration"},
)

// DefaultSelected lists the columns fed to the model: pressure, temperature,
// vapor pressures, humidity, air density, wind, rain, radiation and CO2.
var DefaultSelected = []int{0, 1, 5, 7, 8, 10, 11, 14, 15, 16, 20}

// Len returns the number of numeric columns.
func (c Catalog) Len() int { return len(c.entries) }

// Entry returns the column at position i.
func (c Catalog) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, fmt.Errorf("feature index %d out of range [0,%d)", i, len(c.entries))
	}
	return c.entries[i], nil
}

// Keys returns the raw column keys in catalog order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Header returns the full source header: the timestamp column followed by
// every numeric key.
func (c Catalog) Header() []string {
	return append([]string{DateTimeKey}, c.Keys()...)
}

// Validate checks that a selection is non-empty, in range and free of
// duplicates.
func (c Catalog) Validate(selected []int) error {
	if len(selected) == 0 {
		return fmt.Errorf("feature selection is empty")
	}
	seen := make(map[int]bool, len(selected))
	for _, i := range selected {
		if _, err := c.Entry(i); err != nil {
			return err
		}
		if seen[i] {
			return fmt.Errorf("feature index %d selected twice", i)
		}
		seen[i] = true
	}
	return nil
}

// Titles returns the display titles of the selected columns.
func (c Catalog) Titles(selected []int) ([]string, error) {
	return c.project(selected, func(e Entry) string { return e.Title })
}

// SelectedKeys returns the raw keys of the selected columns.
func (c Catalog) SelectedKeys(selected []int) ([]string, error) {
	return c.project(selected, func(e Entry) string { return e.Key })
}

func (c Catalog) project(selected []int, fn func(Entry) string) ([]string, error) {
	if err := c.Validate(selected); err != nil {
		return nil, err
	}
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = fn(c.entries[idx])
	}
	return out, nil
}

// ParseSelection parses a comma-separated list of column indices, e.g.
// "0,1,5,14".
func ParseSelection(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid feature index %q", part)
		}
		out = append(out, idx)
	}
	return out, nil
}
