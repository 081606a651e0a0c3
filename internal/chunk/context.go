package chunk

import (
	"regexp"
	"strings"
)

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	htmlHeadingRe     = regexp.MustCompile(`(?i)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
)

// nearestHeading scans content before pos for the closest preceding
// markdown or HTML heading, returning its text.
func nearestHeading(content string, pos int) string {
	if pos > len(content) {
		pos = len(content)
	}
	preceding := content[:pos]

	best := ""
	bestAt := -1
	for _, m := range markdownHeadingRe.FindAllStringSubmatchIndex(preceding, -1) {
		if m[0] > bestAt {
			bestAt = m[0]
			best = strings.TrimSpace(preceding[m[4]:m[5]])
		}
	}
	for _, m := range htmlHeadingRe.FindAllStringSubmatchIndex(preceding, -1) {
		if m[0] > bestAt {
			bestAt = m[0]
			best = strings.TrimSpace(stripTags(preceding[m[4]:m[5]]))
		}
	}
	return best
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// previewLength bounds the neighbor-preview snippet attached to a
// chunk's surrounding context.
const previewLength = 120

// neighborPreview returns a short preview of the content immediately
// preceding a chunk, for display as surrounding context.
func neighborPreview(content string, start int) string {
	if start <= 0 {
		return ""
	}
	from := start - previewLength
	if from < 0 {
		from = 0
	}
	preview := strings.TrimSpace(content[from:start])
	if len(preview) > previewLength {
		preview = preview[len(preview)-previewLength:]
	}
	return preview
}

// enrichContext populates SurroundingContext and SemanticTopic on each
// piece when addContext is enabled.
func enrichContext(content string, pieces []Piece) []Piece {
	out := make([]Piece, len(pieces))
	for i, p := range pieces {
		p.SemanticTopic = nearestHeading(content, p.StartPosition)
		preview := neighborPreview(content, p.StartPosition)
		switch {
		case p.SemanticTopic != "" && preview != "":
			p.SurroundingContext = p.SemanticTopic + " - " + preview
		case p.SemanticTopic != "":
			p.SurroundingContext = p.SemanticTopic
		default:
			p.SurroundingContext = preview
		}
		out[i] = p
	}
	return out
}
