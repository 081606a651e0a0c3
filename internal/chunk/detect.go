package chunk

import "regexp"

// voteRules are evaluated against the raw content; each match increments
// that content type's vote count.
var voteRules = []struct {
	ct ContentType
	re *regexp.Regexp
}{
	{ContentTypeCode, regexp.MustCompile("(?m)^\\s*(func|def|class|import|package|public|private|const|let|var|return)\\b")},
	{ContentTypeCode, regexp.MustCompile("[{};]\\s*$")},
	{ContentTypeCode, regexp.MustCompile("```[a-zA-Z0-9_+-]*\\n")},
	{ContentTypeMarkdown, regexp.MustCompile("(?m)^#{1,6} ")},
	{ContentTypeMarkdown, regexp.MustCompile("(?m)^[-*+] ")},
	{ContentTypeMarkdown, regexp.MustCompile("(?m)^\\d+\\. ")},
	{ContentTypeMarkdown, regexp.MustCompile("\\[[^\\]]+\\]\\([^)]+\\)")},
	{ContentTypeHTML, regexp.MustCompile("(?i)<html|<body|<div|<span|<p[ >]|<!DOCTYPE")},
	{ContentTypeHTML, regexp.MustCompile("</[a-zA-Z]+>")},
	{ContentTypePDF, regexp.MustCompile("\\f")}, // form-feed page breaks surviving PDF text extraction
}

// DetectContentType classifies content by regex vote: a code vote count of 2 or more alongside any markdown or HTML
// vote wins "mixed"; otherwise the highest-voting class wins, with ties
// resolved in the fixed order html, markdown, code, pdf; the no-votes
// case falls back to text. explicitType, if non-empty,
// short-circuits detection (e.g. a declared content-type on upload).
func DetectContentType(content string, explicitType string) ContentType {
	switch ContentType(explicitType) {
	case ContentTypeCode, ContentTypeMarkdown, ContentTypeHTML, ContentTypeMixed, ContentTypeText, ContentTypePDF:
		return ContentType(explicitType)
	}

	votes := make(map[ContentType]int)
	for _, rule := range voteRules {
		if rule.re.MatchString(content) {
			votes[rule.ct]++
		}
	}

	if votes[ContentTypeCode] >= 2 && (votes[ContentTypeMarkdown] > 0 || votes[ContentTypeHTML] > 0) {
		return ContentTypeMixed
	}

	best := ContentTypeText
	bestVotes := 0
	// Iterate in a fixed priority order so ties resolve deterministically.
	for _, ct := range []ContentType{ContentTypeHTML, ContentTypeMarkdown, ContentTypeCode, ContentTypePDF} {
		if votes[ct] > bestVotes {
			best = ct
			bestVotes = votes[ct]
		}
	}
	if bestVotes == 0 {
		return ContentTypeText
	}
	return best
}
