// Package duration parses the duration strings accepted on the command line
// and in config.
//
// Besides Go's own format ("30s", "1h30m") it accepts a bare number of
// seconds ("30"), as environment variables are often written, and day and
// week units ("7d", "2w") for looking back through the audit log.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var unitRe = regexp.MustCompile(`^(\d+)([dw])$`)

// Parse parses s as a Go duration, a bare number of seconds, or Nd / Nw.
// Negative durations are rejected.
func Parse(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
		}
		return time.Duration(n) * time.Second, nil
	}

	if m := unitRe.FindStringSubmatch(s); m != nil {
		num, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("invalid number: %w", err)
		}
		day := 24 * time.Hour
		if m[2] == "w" {
			return time.Duration(num) * 7 * day, nil
		}
		return time.Duration(num) * day, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use 30s, 5m, 7d or a number of seconds)", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return d, nil
}
