// Package frontend implements the lexer and recursive-descent parser: source text in, a typed
// ast.Module out.
//
// The lexer is a Rob-Pike-style state-function scanner, adapted from
// hhramberg-go-vslc/src/frontend/lexer.go and lexerStates.go. Two differences from the teacher,
// both required by spec.md: scanning runs synchronously in the calling goroutine instead of over
// a channel (spec.md §5 specifies a single-threaded, cooperative pipeline with no suspension),
// and comments are stripped per physical line before the character scan, per spec.md §4.1's
// line-oriented algorithm.
package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nnecklace/exprc/internal/ast"
)

// stateFunc is one state of the lexer state machine; it returns the next state, or nil when
// scanning is complete.
type stateFunc func(*lexer) stateFunc

const eof = rune(0)

// lexer scans source text into a slice of ast.Token, synchronously.
type lexer struct {
	file   string
	input  string
	start  int // byte offset of the token currently being scanned
	pos    int // byte offset of the scan cursor
	width  int // width in bytes of the last rune returned by next
	line   int // current line, 1-indexed
	col    int // column on the current line of l.start, 1-indexed
	curCol int // column on the current line of l.pos
	tokens []ast.Token
	err    error
}

// Lex strips `//` and `#` line comments and scans src into a token stream bracketed by
// synthetic Module-kind `{`/`}` tokens, per spec.md §4.1.
func Lex(file, src string) ([]ast.Token, error) {
	l := &lexer{file: file, input: stripComments(src), line: 1, col: 1, curCol: 1}
	l.tokens = append(l.tokens, ast.Token{Text: "{", Kind: ast.Module, Location: ast.Location{File: file, Line: 1, Column: 1}})
	for state := stateFunc(lexGlobal); state != nil && l.err == nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	l.tokens = append(l.tokens, ast.Token{Text: "}", Kind: ast.Module, Location: ast.Location{File: file, Line: l.line, Column: l.curCol}})
	l.tokens = append(l.tokens, ast.Token{Text: "", Kind: ast.End, Location: ast.Location{File: file, Line: l.line, Column: l.curCol}})
	return l.tokens, nil
}

// stripComments removes `//...` and `#...` line comments, preserving line structure (and hence
// every other character) so later column/line accounting stays correct.
func stripComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, ln := range lines {
		if idx := strings.Index(ln, "//"); idx >= 0 {
			ln = ln[:idx]
		}
		if idx := strings.IndexByte(ln, '#'); idx >= 0 {
			ln = ln[:idx]
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.curCol = 1
	} else {
		l.curCol++
	}
	return r
}

func (l *lexer) backup() {
	if l.width == 0 {
		return
	}
	l.pos -= l.width
	if l.input[l.pos] == '\n' {
		l.line--
		// curCol is only used for locating the next token; an exact column after backing up
		// over a newline is not needed because emit() always re-derives location from start.
	} else {
		l.curCol--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// ignore drops the pending lexeme (whitespace) without emitting a token.
func (l *lexer) ignore() {
	l.start = l.pos
	l.col = l.curCol
}

// emit appends a token of the given kind covering [start, pos) to the output and resets start.
func (l *lexer) emit(kind ast.TokenKind) {
	text := l.input[l.start:l.pos]
	l.tokens = append(l.tokens, ast.Token{
		Text:     text,
		Kind:     kind,
		Location: ast.Location{File: l.file, Line: l.line, Column: l.col},
	})
	// If the emitted token spanned a newline (shouldn't happen for this language's tokens) the
	// column bookkeeping below still holds because col tracks where the NEXT token starts.
	l.start = l.pos
	l.col = l.curCol
}

func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = fmt.Errorf(format, args...)
	return nil
}

// lineContent returns the full physical line containing byte offset pos, for caret diagnostics.
func (l *lexer) lineContent(pos int) string {
	start := strings.LastIndexByte(l.input[:pos], '\n') + 1
	end := strings.IndexByte(l.input[pos:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : pos+end]
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// twoCharOps lists the operators the scanner must look ahead one rune to recognize.
var twoCharOps = map[rune]rune{
	'=': '=', // ==
	'!': '=', // !=
	'<': '=', // <=
	'>': '=', // >=
}

// lexGlobal is the default dispatching state, grounded on the teacher's lexGlobal
// (hhramberg-go-vslc/src/frontend/lexerStates.go): longest-applicable-match priority
// (bool_literal > identifier > int_literal > operator > punctuation) falls out naturally here
// because each category is keyed off its leading rune.
func lexGlobal(l *lexer) stateFunc {
	r := l.next()
	switch {
	case r == eof:
		return nil
	case isSpace(r):
		l.ignore()
		return lexGlobal
	case isAlpha(r):
		return lexWord
	case isDigit(r):
		return lexNumber
	case r == '(', r == ')', r == '{', r == '}', r == ',', r == ';', r == ':':
		l.emit(ast.Punctuation)
		return lexGlobal
	case r == '+', r == '-', r == '*', r == '/', r == '%', r == '&':
		l.emit(ast.Operator)
		return lexGlobal
	case r == '=', r == '!', r == '<', r == '>':
		if want, ok := twoCharOps[r]; ok && l.peek() == want {
			l.next()
		} else if r == '!' {
			return l.errorf("unexpected character '!' at %s", ast.Location{File: l.file, Line: l.line, Column: l.col})
		}
		l.emit(ast.Operator)
		return lexGlobal
	default:
		loc := ast.Location{File: l.file, Line: l.line, Column: l.col}
		line := l.lineContent(l.start)
		caret := strings.Repeat(" ", max(0, l.col-1)) + "^"
		return l.errorf("unrecognized character %q at %s\n%s\n%s", r, loc, line, caret)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// lexWord scans an identifier, keyword-shaped word, or true/false/and/or.
func lexWord(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isAlpha(r) && !isDigit(r) {
			l.backup()
			break
		}
	}
	word := l.input[l.start:l.pos]
	switch classifyWord(word) {
	case wordBoolTrue, wordBoolFalse:
		l.emit(ast.BoolLiteral)
	case wordOperator:
		l.emit(ast.Operator)
	default:
		l.emit(ast.Identifier)
	}
	return lexGlobal
}

// lexNumber scans an integer literal. The language has no floating point (spec.md §1
// Non-goals), so there is no decimal-point branch here unlike the teacher's lexNumber.
func lexNumber(l *lexer) stateFunc {
	for isDigit(l.peek()) {
		l.next()
	}
	l.emit(ast.IntLiteral)
	return lexGlobal
}
