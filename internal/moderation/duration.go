package moderation

import (
	"fmt"
	"strings"
	"time"
)

// MaxTimeout is the longest communication timeout the platform accepts.
const MaxTimeout = 28 * 24 * time.Hour

// MuteDuration is a timeout duration assembled from optional components.
type MuteDuration struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Duration returns the total duration of all components.
func (d MuteDuration) Duration() time.Duration {
	return time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
}

// Validate checks that the assembled duration is positive and within
// the platform's timeout limit.
func (d MuteDuration) Validate() error {
	if d.Days < 0 || d.Hours < 0 || d.Minutes < 0 || d.Seconds < 0 {
		return NewActionError(CodeInvalidDuration, "duration components must not be negative")
	}

	total := d.Duration()
	if total <= 0 {
		return NewActionError(CodeInvalidDuration, "timeout duration must be at least 1 second")
	}

	if total > MaxTimeout {
		return NewActionError(CodeInvalidDuration, "timeout duration must not exceed 28 days")
	}

	return nil
}

// String formats the components as e.g. "1d 2h 30m".
func (d MuteDuration) String() string {
	return FormatDuration(d.Duration())
}

// FormatDuration renders a duration as compact day/hour/minute/second
// parts, e.g. "1d 2h 3m 4s". Zero durations render as "0s".
func FormatDuration(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}

	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}

	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	if len(parts) == 0 {
		return "0s"
	}

	return strings.Join(parts, " ")
}
