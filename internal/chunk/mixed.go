package chunk

import "regexp"

var fencedCodeRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n.*?\\n```")

// section is one alternating prose/code region of a mixed-content
// document, with its own content type for strategy selection and its
// absolute start offset for reassembly.
type section struct {
	ct    ContentType
	text  string
	start int
}

// splitMixedSections partitions content into alternating fenced-code
// and prose sections.
func splitMixedSections(content string) []section {
	matches := fencedCodeRe.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return []section{{ct: ContentTypeMarkdown, text: content, start: 0}}
	}

	var sections []section
	cursor := 0
	for _, m := range matches {
		if m[0] > cursor {
			sections = append(sections, section{ct: ContentTypeMarkdown, text: content[cursor:m[0]], start: cursor})
		}
		sections = append(sections, section{ct: ContentTypeCode, text: content[m[0]:m[1]], start: m[0]})
		cursor = m[1]
	}
	if cursor < len(content) {
		sections = append(sections, section{ct: ContentTypeMarkdown, text: content[cursor:], start: cursor})
	}
	return sections
}

// chunkMixed splits a mixed-content document section by section, then
// reassembles global positions by the section's running offset and
// densifies indices across sections.
func chunkMixed(content string, opts Options) []Piece {
	var pieces []Piece
	for _, s := range splitMixedSections(content) {
		if len(s.text) == 0 {
			continue
		}
		sectionOpts := opts.WithDefaults(s.ct)
		sub := splitRecursive(s.text, s.start, separatorsFor(s.ct, opts.Language), sectionOpts.MaxSize, sectionOpts.MinSize)
		pieces = append(pieces, sub...)
	}
	return pieces
}
