package fsynclog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const microsPerSecond = 1_000_000

// ParseSeconds converts a decimal "seconds.fraction" timestamp into integer
// microseconds. Digits beyond the sixth fractional digit are truncated.
// The conversion is done on the decimal text so that "1.000800" yields
// exactly 1000800.
func ParseSeconds(s string) (int64, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	var secs int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		secs = v
	}
	if secs > math.MaxInt64/microsPerSecond-1 {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	var micros int64
	if frac != "" {
		v, err := strconv.ParseUint(frac+strings.Repeat("0", 6-len(frac)), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		micros = int64(v)
	}
	return secs*microsPerSecond + micros, nil
}

// SecondsToMicros converts a user supplied duration in seconds, rounding to
// the nearest microsecond.
func SecondsToMicros(secs float64) int64 {
	return int64(math.Round(secs * microsPerSecond))
}
