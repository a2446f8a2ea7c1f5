package extractor

import "testing"

func TestTextFromHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no markup here", "no markup here"},
		{"tags stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"whitespace collapsed", "a\n\n  b\t\tc", "a b c"},
		{"nested markup", `<div class="lesson"><h1>Title</h1><p>Body text.</p></div>`, "Title Body text."},
		{"empty", "", ""},
		{"only tags", "<br/><hr>", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TextFromHTML(tc.in); got != tc.want {
				t.Fatalf("TextFromHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
