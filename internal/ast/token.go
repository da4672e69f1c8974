package ast

import "fmt"

// TokenKind differentiates the lexical category of a Token.
type TokenKind int

// Token kinds, in the order the lexer's state functions detect them: keyword-shaped words beat
// plain identifiers, literals beat operators, operators beat punctuation.
const (
	IntLiteral TokenKind = iota
	BoolLiteral
	Identifier
	Operator
	Punctuation
	Module // synthetic brace wrapping the whole token stream
	End    // sentinel terminator
)

// tokenKindNames gives a print-friendly label per TokenKind, mirroring the teacher's
// length-indexed string tables (see nt/aTyp/iTyp in the retrieved vslc sources).
//
// Note there is no separate "keyword" kind: if/then/else/while/do/var/fun/break/continue/unit
// and the type names Int/Bool/Unit all lex as plain Identifier tokens, exactly as spec.md §3
// describes — the parser, not the lexer, recognizes reserved words by comparing token text.
var tokenKindNames = [...]string{
	"int_literal",
	"bool_literal",
	"identifier",
	"operator",
	"punctuation",
	"module",
	"end",
}

// String returns the print-friendly name of the TokenKind.
func (k TokenKind) String() string {
	if int(k) < 0 || int(k) >= len(tokenKindNames) {
		return "unknown"
	}
	return tokenKindNames[k]
}

// Token is a single lexeme together with its kind and source location.
type Token struct {
	Text     string
	Kind     TokenKind
	Location Location
}

// String renders the token for diagnostics.
func (t Token) String() string {
	if len(t.Text) > 20 {
		return fmt.Sprintf("%.17q...(%s) at %s", t.Text, t.Kind, t.Location)
	}
	return fmt.Sprintf("%q(%s) at %s", t.Text, t.Kind, t.Location)
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}
