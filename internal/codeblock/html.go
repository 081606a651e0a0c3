package codeblock

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ExtractHTML walks an HTML document for <pre><code> blocks, reading
// the language off a "language-X" class token or a data-lang /
// data-language attribute. Sibling code blocks
// sharing a tabbed container (role=tablist, or a class token prefixed
// "tab") are grouped under one block_id so all language variants of the
// same logical snippet are linked.
func ExtractHTML(content string) ([]Extracted, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var out []Extracted
	nextGroupID := 0
	walk(doc, &out, &nextGroupID, "")
	return out, nil
}

func walk(n *html.Node, out *[]Extracted, nextGroupID *int, inheritedGroup string) {
	groupID := inheritedGroup
	if n.Type == html.ElementNode && isTabContainer(n) {
		groupID = "html-tab-" + strconv.Itoa(*nextGroupID)
		*nextGroupID++
	}

	if n.Type == html.ElementNode && n.Data == "pre" {
		if block, ok := extractPreCode(n, groupID, nextGroupID); ok {
			*out = append(*out, block)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, out, nextGroupID, groupID)
	}
}

func isTabContainer(n *html.Node) bool {
	if attr(n, "role") == "tablist" {
		return true
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(class, "tab") {
			return true
		}
	}
	return false
}

func extractPreCode(pre *html.Node, groupID string, nextGroupID *int) (Extracted, bool) {
	code := findChild(pre, "code")
	if code == nil {
		code = pre
	}

	text := textContent(code)
	if strings.TrimSpace(text) == "" {
		return Extracted{}, false
	}

	lang := languageFromAttrs(code)
	if lang == "" {
		lang = languageFromAttrs(pre)
	}

	if groupID == "" {
		groupID = "html-" + strconv.Itoa(*nextGroupID)
		*nextGroupID++
	}

	return Extracted{
		BlockID:  groupID,
		Language: normalizeLanguage(lang),
		Content:  text,
	}, true
}

func languageFromAttrs(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(class, "language-") {
			return strings.TrimPrefix(class, "language-")
		}
		if strings.HasPrefix(class, "lang-") {
			return strings.TrimPrefix(class, "lang-")
		}
	}
	if v := attr(n, "data-lang"); v != "" {
		return v
	}
	if v := attr(n, "data-language"); v != "" {
		return v
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walkText func(*html.Node)
	walkText = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkText(c)
		}
	}
	walkText(n)
	return b.String()
}
