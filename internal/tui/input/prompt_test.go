package input

import "testing"

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantDesc  string
	}{
		{name: "title_only", input: "Standup", wantTitle: "Standup"},
		{name: "empty", input: "", wantTitle: ""},
		{name: "with_description", input: "Standup | daily sync", wantTitle: "Standup", wantDesc: "daily sync"},
		{name: "trims", input: "  Lunch  |  ", wantTitle: "Lunch"},
		{name: "second_separator_kept", input: "a | b | c", wantTitle: "a", wantDesc: "b | c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc := SplitTitle(tt.input)
			if title != tt.wantTitle || desc != tt.wantDesc {
				t.Fatalf("SplitTitle(%q) = %q, %q, want %q, %q", tt.input, title, desc, tt.wantTitle, tt.wantDesc)
			}
		})
	}
}

func TestJoinTitle_RoundTrip(t *testing.T) {
	for _, pair := range [][2]string{{"Standup", ""}, {"Standup", "daily sync"}} {
		title, desc := SplitTitle(JoinTitle(pair[0], pair[1]))
		if title != pair[0] || desc != pair[1] {
			t.Errorf("round trip of %v = %q, %q", pair, title, desc)
		}
	}
}
