package query

import "strings"

// tokenize lowercases and splits query text on non-alphanumeric runs,
// dropping tokens outside the [3, 20] byte bounds, the same bounds the
// document index's tokenizer applies. The tokens are looked up in the
// store's keywords table, which is filled only through PutKeywords; the
// ingest pipeline does not call it.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || len(f) > 20 {
			continue
		}
		out = append(out, f)
	}
	return out
}
