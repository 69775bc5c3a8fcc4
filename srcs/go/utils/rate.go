package utils

import (
	"fmt"
	"time"
)

func Measure(f func() error) (time.Duration, error) {
	t0 := time.Now()
	err := f()
	return time.Since(t0), err
}

// Rate is n per second over d.
func Rate(n int64, d time.Duration) float64 {
	return float64(n) / d.Seconds()
}

var rateUnits = []struct {
	size float64
	name string
}{
	{1 << 30, "GiB/s"},
	{1 << 20, "MiB/s"},
	{1 << 10, "KiB/s"},
}

// ShowRate formats a bytes-per-second rate with a binary unit.
func ShowRate(r float64) string {
	for _, u := range rateUnits {
		if r > u.size {
			return fmt.Sprintf("%.2f %s", r/u.size, u.name)
		}
	}
	return fmt.Sprintf("%.2f B/s", r)
}

// Pluralize renders "1 peer" or "3 peers".
func Pluralize(n int, singular, plural string) string {
	if n > 1 {
		return fmt.Sprintf("%d %s", n, plural)
	}
	return fmt.Sprintf("%d %s", n, singular)
}
