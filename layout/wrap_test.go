package layout

import (
	"strings"
	"testing"

	"github.com/wudi/tourreport/fonts"
)

func TestWrap(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 100, []string{""}},
		{"blank", "   ", 100, []string{""}},
		{"fits", "hello world", 200, []string{"hello world"}},
		{"breaks at space", "hello world", 40, []string{"hello", "world"}},
		{"hard break", "one\ntwo", 200, []string{"one", "two"}},
		{"blank line kept", "one\n\ntwo", 200, []string{"one", "", "two"}},
		{"crlf", "one\r\ntwo", 200, []string{"one", "two"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrap(tc.text, fonts.Regular, 10, tc.width)
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("wrap(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestWrap_LongWordTerminates(t *testing.T) {
	word := strings.Repeat("x", 10000)
	const width = 100.0
	lines := wrap(word, fonts.Regular, 10, width)
	if len(lines) < 2 {
		t.Fatalf("expected the word to be split, got %d lines", len(lines))
	}
	for i, l := range lines {
		if len([]rune(l)) > 1 && fonts.Regular.Width(l, 10) > width+epsilon {
			t.Fatalf("line %d too wide: %v", i, fonts.Regular.Width(l, 10))
		}
	}
	if strings.Join(lines, "") != word {
		t.Fatalf("split lost characters")
	}
}

func TestWrap_NarrowerThanOneRune(t *testing.T) {
	lines := wrap("WWW", fonts.Bold, 10, 1)
	if len(lines) != 3 {
		t.Fatalf("expected one rune per line, got %q", lines)
	}
}

func TestWrap_NonLatinText(t *testing.T) {
	lines := wrap("東京タワーから富士山までのツアーはとても人気があります", fonts.Regular, 10, 60)
	if len(lines) < 2 {
		t.Fatalf("expected ideographic text to wrap, got %q", lines)
	}
	for _, l := range lines {
		if len([]rune(l)) > 1 && fonts.Regular.Width(l, 10) > 60+epsilon {
			t.Fatalf("line too wide: %q", l)
		}
	}
}
