// Package duration implements the investment term calculator: parsing
// human-readable duration strings, projecting end dates, and computing
// progressive interest accrual against wall-clock time.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vest-service/vest_service/internal/domain/errors"
)

// CompletedLabel is the sentinel returned once an investment term has
// fully elapsed.
const CompletedLabel = "Investment period completed"

// Unit spans in milliseconds. Months and years are fixed averages
// (30.44-day months, 365.25-day years), not calendar arithmetic, so
// computed end dates stay stable across calendar boundaries.
const (
	millisPerMinute int64 = 60_000
	millisPerHour   int64 = 3_600_000
	millisPerDay    int64 = 86_400_000
	millisPerWeek   int64 = 7 * millisPerDay
	millisPerMonth  int64 = 2_630_016_000
	millisPerYear   int64 = 31_557_600_000
)

var unitMillis = map[string]int64{
	"minute": millisPerMinute,
	"hour":   millisPerHour,
	"day":    millisPerDay,
	"week":   millisPerWeek,
	"month":  millisPerMonth,
	"year":   millisPerYear,
}

var durationPattern = regexp.MustCompile(`^(\d+)\s+(minute|hour|day|week|month|year)s?$`)

// Parse converts a duration expression of the form "<integer> <unit>"
// into a time span. Units may be singular or plural; matching is
// case-insensitive and surrounding whitespace is ignored.
func Parse(s string) (time.Duration, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	match := durationPattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, errors.ValidationError("duration", fmt.Sprintf("invalid duration format: %q", s))
	}

	count, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, errors.ValidationError("duration", fmt.Sprintf("invalid duration count: %q", match[1]))
	}

	return time.Duration(count*unitMillis[match[2]]) * time.Millisecond, nil
}

// EndDate projects the end of a term starting at start
func EndDate(start time.Time, durationStr string) (time.Time, error) {
	span, err := Parse(durationStr)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(span), nil
}

// ProgressiveInterest computes the interest accrued at now for a term
// running from start to end with totalInterest owed at maturity.
// Elapsed time is clamped to the term, and the boundaries return exact
// values so no rounding drift appears at 0% or 100% progress. Interior
// values are rounded half-up to the cent.
func ProgressiveInterest(totalInterest decimal.Decimal, start, end, now time.Time) decimal.Decimal {
	totalMillis := end.Sub(start).Milliseconds()
	elapsedMillis := now.Sub(start).Milliseconds()

	if elapsedMillis <= 0 {
		return decimal.Zero
	}
	if elapsedMillis >= totalMillis {
		return totalInterest
	}

	ratio := decimal.NewFromInt(elapsedMillis).Div(decimal.NewFromInt(totalMillis))
	return totalInterest.Mul(ratio).Round(2)
}

// IsDue reports whether an investment ending at end is due at now.
// The boundary is closed: an investment is due exactly at its expiry
// instant.
func IsDue(end, now time.Time) bool {
	return !now.Before(end)
}

// RemainingMillis returns the milliseconds until end, floored at zero
func RemainingMillis(end, now time.Time) int64 {
	remaining := end.Sub(now).Milliseconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatRemaining renders the time left until end as the coarsest two
// non-zero units among days, hours and minutes. Elapsed terms return
// CompletedLabel.
func FormatRemaining(end, now time.Time) string {
	remaining := end.Sub(now).Milliseconds()
	if remaining <= 0 {
		return CompletedLabel
	}

	days := remaining / millisPerDay
	hours := (remaining % millisPerDay) / millisPerHour
	minutes := (remaining % millisPerHour) / millisPerMinute

	if days > 0 {
		return fmt.Sprintf("%d day%s %d hour%s", days, plural(days), hours, plural(hours))
	}
	if hours > 0 {
		return fmt.Sprintf("%d hour%s %d minute%s", hours, plural(hours), minutes, plural(minutes))
	}
	return fmt.Sprintf("%d minute%s", minutes, plural(minutes))
}

func plural(n int64) string {
	if n > 1 {
		return "s"
	}
	return ""
}
