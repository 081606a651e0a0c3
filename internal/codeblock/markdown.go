package codeblock

import (
	"regexp"
	"strconv"
)

// fencePattern matches a triple-backtick fence, capturing the info
// string (language tag) and the fenced body.
var fencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+#.-]*)\\n(.*?)\\n?```")

// ExtractMarkdown pulls fenced code blocks out of markdown content.
// Each block gets its own block_id since markdown fences have no
// grouping concept.
func ExtractMarkdown(content string) []Extracted {
	matches := fencePattern.FindAllStringSubmatch(content, -1)
	out := make([]Extracted, 0, len(matches))
	for i, m := range matches {
		out = append(out, Extracted{
			BlockID:  "md-" + strconv.Itoa(i),
			Language: normalizeLanguage(m[1]),
			Content:  m[2],
		})
	}
	return out
}
