package format

import (
	"fmt"
	"math"
	"time"
)

// Duration renders d as "H:MM:SS". Hours are unbounded and never padded,
// minutes and seconds are always two digits.
func Duration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// Currency rounds amount to the nearest whole euro and appends the sign.
func Currency(amount float64) string {
	return fmt.Sprintf("%d €", int64(math.Round(amount)))
}

// StartTime renders t as zero-padded "HH:MM".
func StartTime(t time.Time) string {
	return t.Format("15:04")
}
