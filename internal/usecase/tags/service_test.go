package tags

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"
)

type mockCatalog struct {
	descriptions []string
}

func (m *mockCatalog) Descriptions() []string { return m.descriptions }

func TestSuggest_SamplesFiveCleanedTags(t *testing.T) {
	cat := &mockCatalog{descriptions: []string{
		"a gold diamond ring",
		"the silver chain necklace",
		"an emerald pendant",
		"pearl stud earrings",
		"rose gold bangle",
		"vintage sapphire brooch",
	}}
	svc := New(cat).WithRand(rand.New(rand.NewSource(1)))

	out := svc.Suggest()
	if len(out) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(out))
	}
	for _, tag := range out {
		if tag == "" {
			t.Error("empty suggestion")
		}
		r, _ := utf8.DecodeRuneInString(tag)
		if r >= 'a' && r <= 'z' {
			t.Errorf("suggestion %q must start capitalized", tag)
		}
		if strings.HasPrefix(strings.ToLower(tag), "a ") ||
			strings.HasPrefix(strings.ToLower(tag), "an ") ||
			strings.HasPrefix(strings.ToLower(tag), "the ") {
			t.Errorf("suggestion %q kept its leading article", tag)
		}
	}
}

func TestSuggest_FewerDescriptionsThanSample(t *testing.T) {
	cat := &mockCatalog{descriptions: []string{"gold ring", "silver chain"}}
	svc := New(cat).WithRand(rand.New(rand.NewSource(1)))

	out := svc.Suggest()
	if len(out) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(out))
	}
}

func TestSuggest_MissingCatalogFallback(t *testing.T) {
	svc := New(nil)
	out := svc.Suggest()
	if len(out) != 4 || out[0] != "Gold Necklace" {
		t.Fatalf("expected static fallback, got %v", out)
	}
}

func TestSuggest_EmptyCorpusFallback(t *testing.T) {
	cat := &mockCatalog{descriptions: []string{"", "   ", ""}}
	out := New(cat).Suggest()
	if len(out) != 4 || out[0] != "Luxury" {
		t.Fatalf("expected empty-corpus fallback, got %v", out)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips article", "a gold ring", "Gold ring"},
		{"strips capital article", "The silver chain", "Silver chain"},
		{"strips an", "an emerald pendant", "Emerald pendant"},
		{"capitalizes", "pearl earrings", "Pearl earrings"},
		{"trims whitespace", "  ruby brooch  ", "Ruby brooch"},
		{"keeps short text", "Bangle", "Bangle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_TruncatesLongText(t *testing.T) {
	got := Clean("an exquisitely detailed handcrafted platinum engagement ring with pave diamonds")
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 45 {
		t.Errorf("expected 45 runes, got %d (%q)", n, got)
	}
}
