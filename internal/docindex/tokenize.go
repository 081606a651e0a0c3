package docindex

import "strings"

// tokenize lowercases and splits on non-alphanumeric runs, dropping stop
// words and tokens outside the [3, 20] byte bounds. Tokens are stored
// verbatim, with no normalized-token hashing.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if isStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
