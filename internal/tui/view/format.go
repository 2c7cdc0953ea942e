// Package view renders the sections of the day view.
package view

import (
	"fmt"
	"time"
)

// FormatDuration formats minutes as "Xh Ym".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatSpan formats a start and end as "09:00-10:30". An end at the next
// midnight is shown as 24:00.
func FormatSpan(start, end time.Time) string {
	endLabel := end.Format("15:04")
	if end.Hour() == 0 && end.Minute() == 0 && !sameDay(start, end) {
		endLabel = "24:00"
	}
	return start.Format("15:04") + "-" + endLabel
}
