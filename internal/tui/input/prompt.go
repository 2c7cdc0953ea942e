// Package input parses what the user types into the TUI prompt.
package input

import "strings"

// DescriptionSeparator splits the title from the description in the
// prompt, as in "Standup | daily sync".
const DescriptionSeparator = "|"

// SplitTitle returns the title and description typed into the prompt.
func SplitTitle(value string) (title, description string) {
	title, description, _ = strings.Cut(value, DescriptionSeparator)
	return strings.TrimSpace(title), strings.TrimSpace(description)
}

// JoinTitle is the inverse of SplitTitle, used to prefill the prompt when
// editing an event.
func JoinTitle(title, description string) string {
	if description == "" {
		return title
	}
	return title + " " + DescriptionSeparator + " " + description
}
