package domain

// TimestampLayout is the time.Parse layout of source timestamps.
const TimestampLayout = "02.01.2006 15:04:05"

// dateLen is the length of the "DD.MM.YYYY" prefix of a timestamp.
const dateLen = 10

// Observation is one timestamped row of the source table. Values holds every
// numeric column in catalog order.
type Observation struct {
	Timestamp string
	Values    []float64
}

// Date returns the calendar-date prefix of the timestamp. Timestamps shorter
// than a date are returned unchanged.
func (o Observation) Date() string {
	if len(o.Timestamp) < dateLen {
		return o.Timestamp
	}
	return o.Timestamp[:dateLen]
}

// Select copies the columns at idx into dst, growing it as needed, and
// returns the filled slice. Callers validate idx against the row width.
func (o Observation) Select(dst []float64, idx []int) []float64 {
	dst = dst[:0]
	for _, i := range idx {
		dst = append(dst, o.Values[i])
	}
	return dst
}
