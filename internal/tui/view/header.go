package view

import "time"

// HeaderLabel builds the title of the day view, marking today.
func HeaderLabel(day, today time.Time) string {
	label := day.Format("Monday, 2 January 2006")
	if sameDay(day, today) {
		label = "*" + label + "*"
	}
	return label
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}
