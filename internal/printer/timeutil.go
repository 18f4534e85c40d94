package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a short relative time string from now.
// Examples: "just now", "5s ago", "2m ago", "3h ago", "4d ago".
func TimeAgo(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := now.Sub(t)
	switch {
	case diff < 0:
		return "in the future"
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

// FormatDuration returns a rounded duration for task timings.
// Examples: "120ms", "1.5s", "2m3s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
