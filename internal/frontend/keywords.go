package frontend

// reservedWords lists every word the grammar treats specially, indexed by word length exactly
// like the teacher's rw table (hhramberg-go-vslc/src/frontend/lang.go): a short slice indexed by
// length is a cheap way to avoid a hash table for a handful of reserved words.
//
// Per spec.md §3 only "true", "false", "and" and "or" get distinguished lexer treatment (bool
// literals and operators, respectively); every other entry here still lexes as a plain
// Identifier token — it is the parser, not the lexer, that recognizes these words as structural
// keywords by comparing token text.
var reservedWords = [...][]string{
	{},                                    // length 0, unused
	{},                                    // length 1, unused
	{"if", "do", "or"},                    // length 2
	{"fun", "var", "not", "and"},          // length 3
	{"else", "true", "then", "unit"},      // length 4
	{"while", "false", "break"},           // length 5
	{},                                    // length 6, unused
	{},                                    // length 7, unused
	{"continue"},                          // length 8
}

// isReservedWord reports whether s is a structural keyword or one of true/false/and/or. An
// Identifier token may never carry the text of a reserved word (spec.md §3's identifier rule
// excludes true|false|and|or explicitly; the remaining keywords are excluded by the parser
// refusing to treat them as a bare variable/function name).
func isReservedWord(s string) bool {
	if len(s) == 0 || len(s) >= len(reservedWords) {
		return false
	}
	for _, w := range reservedWords[len(s)] {
		if w == s {
			return true
		}
	}
	return false
}

// wordLexKind classifies a scanned word for the lexer: true/false become bool_literal tokens,
// and/or become operator tokens (despite being word-shaped), everything else is an identifier —
// including every other keyword, which the parser recognizes from its Identifier text.
type wordLexKind int

const (
	wordIdentifier wordLexKind = iota
	wordBoolTrue
	wordBoolFalse
	wordOperator
)

func classifyWord(s string) wordLexKind {
	switch s {
	case "true":
		return wordBoolTrue
	case "false":
		return wordBoolFalse
	case "and", "or":
		return wordOperator
	default:
		return wordIdentifier
	}
}
