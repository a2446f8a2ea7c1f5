// Package chunker slices lesson text into the fixed-size fragments the
// index stores. Splitting is by character count, not semantics.
package chunker

import "fmt"

// Split cuts text into consecutive windows of at most window
// characters. Fragments are non-overlapping, cover the input exactly
// once in original order, and only the last may be shorter than the
// window. Windows count runes so multi-byte text is never cut
// mid-character. Empty input yields nil.
func Split(text string, window int) ([]string, error) {
	if window <= 0 {
		return nil, fmt.Errorf("chunk window must be positive, got %d", window)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	out := make([]string, 0, (len(runes)+window-1)/window)
	for start := 0; start < len(runes); start += window {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out, nil
}
