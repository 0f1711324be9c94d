package llm

import "testing"

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanJSON(tc.in); got != tc.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanCode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "from manim import *", "from manim import *"},
		{"python fence", "```python\nfrom manim import *\n```", "from manim import *"},
		{"bare fence", "```\nx = 1\n```", "x = 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanCode(tc.in); got != tc.want {
				t.Errorf("CleanCode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
