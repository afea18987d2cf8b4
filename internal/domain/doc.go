// Package domain turns a time-ordered table of 10-minute weather observations
// into fixed-shape daily samples labelled with the day's total rainfall.
//
// # Source Conventions
//
// Timestamps are text in the form "DD.MM.YYYY HH:MM:SS", e.g.
// "01.01.2009 00:10:00". The calendar date of a row is the first 10
// characters of its timestamp; timestamps are never parsed during windowing.
//
// A recording day runs from 00:10 to 00:00 of the following date, so the
// midnight row carries the next day's date. The windowing rule below folds
// that row into the day it closes.
//
// # Windowing
//
// Rows are folded through a small state machine:
//
//	Unseeded → Empty → Accumulating → {Emit | Discard} → Empty
//
// The first row of the table only seeds the date marker. Every later row adds
// its rainfall to the running sum. A row whose date differs from the open
// bucket's date is appended to that bucket before it closes, so the closing
// day owns one row of the next date. A closing bucket with exactly the
// expected step count (144 at 10-minute resolution) becomes a [DaySample];
// any other count is dropped and reported in [WindowStats]. The bucket still
// open when the table ends is never emitted.
//
// # Balancing
//
// [Balance] keeps every rain day (label != 0) and draws the same number of
// no-rain days without replacement. The result is class-grouped: sampled
// no-rain days first in draw order, then rain days in table order.
//
// # Normalization
//
// [FitScaler] freezes per-column mean and population standard deviation over a
// training prefix; [Scaler.Apply] scales the whole matrix with those
// statistics. Columns with zero variance in the prefix are centred but not
// scaled and are reported through [DegenerateVarianceWarning].
package domain
