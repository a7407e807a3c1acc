package backtest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidPeriod marks a period string that cannot be resolved
var ErrInvalidPeriod = errors.New("invalid period")

var periodPattern = regexp.MustCompile(`^([1-9][0-9]*)(d|wk|mo|y)$`)

// PeriodStart resolves a lookback period such as "5y", "6mo", "ytd" or "max"
// into the first date of the window ending at now. "max" is the zero time.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "max":
		return time.Time{}, nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	}

	m := periodPattern.FindStringSubmatch(period)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidPeriod, period)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidPeriod, period, err)
	}

	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
