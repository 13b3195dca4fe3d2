// internal/util/util_test.go
package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		input    string
		maxRunes int
		want     string
	}{
		"short string unchanged":  {"reason", 10, "reason"},
		"exact length unchanged":  {"reason", 6, "reason"},
		"truncated with ellipsis": {"Worker crashed (exit 137)", 14, "Worker crashed…"},
		"multibyte runes counted": {"müde Modelle", 4, "müde…"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := TruncateRunes(tc.input, tc.maxRunes); got != tc.want {
				t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateToWidth(t *testing.T) {
	t.Parallel()

	input := "short\na considerably longer line of text"
	want := "short\na considerably…"
	if got := TruncateToWidth(input, 14); got != want {
		t.Fatalf("TruncateToWidth = %q, want %q", got, want)
	}
}
