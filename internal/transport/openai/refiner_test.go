package openai

import "testing"

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"ring", "gold diamond ring", "ring"},
		{"earring not shadowed by ring", "diamond earrings", "earring"},
		{"earring singular", "ruby earring with gold hook", "earring"},
		{"necklace", "silver chain necklace", "necklace"},
		{"bangle maps to bracelet", "gold bangle", "bracelet"},
		{"bracelet", "emerald bracelet", "bracelet"},
		{"case insensitive", "Diamond Ring", "ring"},
		{"no match", "loose sapphire stone", ""},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectCategory(tc.query); got != tc.want {
				t.Errorf("detectCategory(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}
