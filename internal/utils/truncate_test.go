package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	preview := "<html><table><tr><td>Strengths</td></tr></table></html>"

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "disabled preview", input: preview, limit: 0, expect: ""},
		{name: "short model answer kept", input: "<p>72%</p>", limit: 200, expect: "<p>72%</p>"},
		{name: "long model answer cut", input: preview, limit: 13, expect: "<html><table>..."},
		{name: "multi-byte text cut on rune boundary", input: "<p>Совпадение: 72%</p>", limit: 14, expect: "<p>Совпадение:..."},
		{name: "model padding trimmed before cut", input: "\n\n  <p>ok</p>\n", limit: 9, expect: "<p>ok</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
