package domain

import (
	"errors"
	"math/rand/v2"
)

// ClassCounts holds the number of days per class after balancing.
type ClassCounts struct {
	NoRain int `json:"no_rain"`
	Rain   int `json:"rain"`
}

// Balance returns a new dataset holding every rain day and an equal number
// of no-rain days drawn from rng without replacement. Sampled no-rain days
// come first in draw order, followed by rain days in their original order.
// It fails with *ClassImbalanceError when either class is empty or there are
// fewer no-rain days than rain days.
func Balance(ds *Dataset, rng *rand.Rand) (*Dataset, ClassCounts, error) {
	if rng == nil {
		return nil, ClassCounts{}, errors.New("balance: random source is required")
	}
	var noRain, rain []int
	for i, label := range ds.labels {
		if label == 0 {
			noRain = append(noRain, i)
		} else {
			rain = append(rain, i)
		}
	}

	if len(rain) == 0 || len(noRain) < len(rain) {
		return nil, ClassCounts{}, &ClassImbalanceError{Rain: len(rain), NoRain: len(noRain)}
	}

	drawn := sampleWithoutReplacement(noRain, len(rain), rng)

	out := NewDataset(ds.steps, ds.features, len(drawn)+len(rain))
	for _, idx := range [][]int{drawn, rain} {
		for _, i := range idx {
			out.values = append(out.values, ds.Window(i)...)
			out.labels = append(out.labels, ds.labels[i])
			out.dates = append(out.dates, ds.dates[i])
		}
	}
	return out, ClassCounts{NoRain: len(drawn), Rain: len(rain)}, nil
}

// sampleWithoutReplacement draws n distinct elements of pool with a partial
// Fisher-Yates shuffle. pool is not modified.
func sampleWithoutReplacement(pool []int, n int, rng *rand.Rand) []int {
	idx := append([]int(nil), pool...)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n:n]
}
