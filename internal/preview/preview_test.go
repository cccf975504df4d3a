package preview

import (
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderKeepsText(t *testing.T) {
	out := ansi.ReplaceAllString(Render("# Heading\n\nsome body text", 40), "")
	if !strings.Contains(out, "Heading") || !strings.Contains(out, "body") {
		t.Fatalf("expected rendered output to keep text, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "a\nb\nc", max: 2, want: "a\nb"},
		{in: "a\nb", max: 5, want: "a\nb"},
		{in: "a", max: 0, want: ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
