package chunk

// separatorsFor returns the prioritized separator list for a content
// type. The splitter tries each separator in
// order, strongest first, recursing into the remainder with the next
// separator when a group is still oversized. The empty string is
// always last and permits an arbitrary character cut.
func separatorsFor(ct ContentType, language string) []string {
	switch ct {
	case ContentTypeMarkdown:
		return []string{
			"\n## ", "\n### ", "\n#### ",
			"\n```\n", "\n\n", "\n", ". ", " ", "",
		}
	case ContentTypeHTML:
		return []string{
			"</div>", "</section>", "</article>",
			"</p>", "<br>", "<br/>", "\n\n", "\n", ". ", " ", "",
		}
	case ContentTypeCode:
		return codeSeparatorsFor(language)
	case ContentTypePDF:
		return []string{"\f", "\n\n", "\n", ". ", " ", ""}
	case ContentTypeMixed:
		// Mixed content is split into sections before this list is ever
		// consulted; kept as a reasonable fallback for stray sections.
		return []string{"\n\n", "\n", ". ", " ", ""}
	default: // ContentTypeText
		return []string{"\n\n", "\n", ". ", " ", ""}
	}
}

// codeSeparatorsFor returns a language-keyed separator list, falling
// back to a language-agnostic list of block-ish tokens.
func codeSeparatorsFor(language string) []string {
	switch language {
	case "python":
		return []string{"\ndef ", "\nclass ", "\n\n", "\n", " ", ""}
	case "go":
		return []string{"\nfunc ", "\ntype ", "\n\n", "\n", " ", ""}
	case "javascript", "typescript":
		return []string{"\nfunction ", "\nclass ", "\nconst ", "\n\n", "\n", " ", ""}
	case "java", "csharp", "cpp", "c":
		return []string{"\n}\n", "\n\n", "\n", " ", ""}
	default:
		return []string{"\n\n", "\n", "; ", " ", ""}
	}
}
