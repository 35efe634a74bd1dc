package text

// stopWords is the English stop word set applied before stemming. Kept
// deliberately small: aggressive lists strip negations that matter for
// sentiment and framing.
var stopWords = map[string]bool{
	"a": true, "about": true, "after": true, "again": true, "all": true,
	"also": true, "am": true, "an": true, "and": true, "any": true,
	"are": true, "as": true, "at": true, "be": true, "because": true,
	"been": true, "before": true, "being": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "him": true, "his": true, "how": true, "i": true,
	"if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "just": true, "me": true, "more": true, "most": true,
	"my": true, "now": true, "of": true, "off": true, "on": true,
	"once": true, "only": true, "or": true, "other": true, "our": true,
	"out": true, "over": true, "own": true, "re": true, "s": true,
	"same": true, "she": true, "so": true, "some": true, "such": true,
	"t": true, "than": true, "that": true, "the": true, "their": true,
	"theirs": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "those": true, "through": true, "to": true,
	"too": true, "under": true, "until": true, "up": true, "very": true,
	"was": true, "we": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "who": true, "whom": true,
	"why": true, "will": true, "with": true, "would": true, "you": true,
	"your": true, "yours": true,
}

// StopWords returns a copy of the stop word set.
func StopWords() map[string]bool {
	out := make(map[string]bool, len(stopWords))
	for w := range stopWords {
		out[w] = true
	}
	return out
}
