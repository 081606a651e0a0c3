package docindex

// stopWords is the fixed English function-word list filtered out of
// keyword and title tokenization.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "of": {},
	"to": {}, "in": {}, "on": {}, "at": {}, "by": {}, "for": {}, "with": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"as": {}, "from": {}, "into": {}, "about": {}, "than": {}, "then": {},
	"so": {}, "such": {}, "not": {}, "no": {}, "do": {}, "does": {}, "did": {},
	"has": {}, "have": {}, "had": {}, "can": {}, "could": {}, "will": {},
	"would": {}, "should": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"all": {}, "any": {}, "each": {}, "few": {}, "more": {}, "most": {}, "some": {},
	"if": {}, "else": {}, "when": {}, "where": {}, "while": {}, "because": {},
	"up": {}, "down": {}, "out": {}, "over": {}, "under": {}, "again": {},
	"you": {}, "your": {}, "we": {}, "our": {}, "they": {}, "their": {},
	"he": {}, "she": {}, "his": {}, "her": {}, "i": {}, "me": {}, "my": {},
}

// isStopWord reports whether a lowercased token is a stop word, or whether
// its length falls outside the [3, 20] byte bounds.
func isStopWord(token string) bool {
	if len(token) < 3 || len(token) > 20 {
		return true
	}
	_, ok := stopWords[token]
	return ok
}
