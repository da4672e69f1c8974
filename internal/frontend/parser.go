package frontend

import (
	"fmt"
	"strconv"

	"github.com/nnecklace/exprc/internal/ast"
	"github.com/nnecklace/exprc/internal/types"
)

// parser is a recursive-descent parser over a token slice, used as a reversible stack via the
// pos cursor (per spec.md §4.2; a destructive stack is also acceptable — see spec.md §5 — but a
// cursor avoids mutating the token slice the lexer produced).
type parser struct {
	tokens []ast.Token
	pos    int
}

// Parse lexes and parses src into a Module. file is used only for diagnostic locations.
func Parse(file, src string) (*ast.Module, error) {
	toks, err := Lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: toks}
	return p.parseModule()
}

func (p *parser) cur() ast.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() ast.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atPunct(text string) bool {
	t := p.cur()
	return t.Kind == ast.Punctuation && t.Text == text
}

func (p *parser) atOperator(text string) bool {
	t := p.cur()
	return t.Kind == ast.Operator && t.Text == text
}

func (p *parser) atIdentText(text string) bool {
	t := p.cur()
	return t.Kind == ast.Identifier && t.Text == text
}

func (p *parser) atModule(text string) bool {
	t := p.cur()
	return t.Kind == ast.Module && t.Text == text
}

func (p *parser) errorf(format string, args ...interface{}) error {
	loc := p.cur().Location
	return fmt.Errorf("parse error at %s: %s", loc, fmt.Sprintf(format, args...))
}

func (p *parser) expectPunct(text string) (ast.Token, error) {
	if !p.atPunct(text) {
		return ast.Token{}, p.errorf("expected %q, got %s", text, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) expectOperator(text string) (ast.Token, error) {
	if !p.atOperator(text) {
		return ast.Token{}, p.errorf("expected operator %q, got %s", text, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) expectIdentifier() (ast.Token, error) {
	t := p.cur()
	if t.Kind != ast.Identifier {
		return ast.Token{}, p.errorf("expected identifier, got %s", t)
	}
	if isReservedWord(t.Text) {
		return ast.Token{}, p.errorf("expected identifier, got reserved word %q", t.Text)
	}
	return p.advance(), nil
}

// ----------------------------------------------------------------------------
// Module and block grammar, including the separator rule from spec.md §4.2.
// ----------------------------------------------------------------------------

func (p *parser) parseModule() (*ast.Module, error) {
	loc := p.cur().Location
	if !p.atModule("{") {
		return nil, p.errorf("expected top-level module")
	}
	p.advance()
	stmts, trailingSemi, err := p.parseStatementSeq(func() bool { return p.atModule("}") })
	if err != nil {
		return nil, err
	}
	if !p.atModule("}") {
		return nil, p.errorf("expected end of module")
	}
	p.advance()
	if p.cur().Kind != ast.End {
		return nil, p.errorf("unexpected trailing input: %s", p.cur())
	}
	if trailingSemi || len(stmts) == 0 {
		stmts = append(stmts, ast.NewUnitLiteral(loc))
	}
	return ast.NewModule(loc, stmts), nil
}

func (p *parser) parseBlock() (*ast.Block, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	stmts, trailingSemi, err := p.parseStatementSeq(func() bool { return p.atPunct("}") })
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if trailingSemi || len(stmts) == 0 {
		stmts = append(stmts, ast.NewUnitLiteral(open.Location))
	}
	return ast.NewBlock(open.Location, stmts), nil
}

// parseStatementSeq parses `stmt (; stmt)* (;)?` up to (but not consuming) the position where
// atClose reports true, implementing spec.md's separator rule: a semicolon is required between
// two statements unless the preceding statement is itself block-terminated.
func (p *parser) parseStatementSeq(atClose func() bool) ([]ast.Expression, bool, error) {
	var stmts []ast.Expression
	trailingSemi := false
	for !atClose() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, false, err
		}
		stmts = append(stmts, stmt)
		trailingSemi = false
		if p.atPunct(";") {
			p.advance()
			trailingSemi = true
			continue
		}
		if isBlockTerminated(stmt) {
			continue
		}
		if atClose() {
			break
		}
		return nil, false, p.errorf("expected ';' or end of block after statement, got %s", p.cur())
	}
	return stmts, trailingSemi, nil
}

// isBlockTerminated reports whether the last syntactic element of e is a `{…}` block, per
// spec.md §4.2: such a statement does not require a following separator.
func isBlockTerminated(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Block:
		return true
	case *ast.FuncDef:
		return true
	case *ast.Var:
		return isBlockTerminated(n.Initialization)
	case *ast.While:
		return isBlockTerminated(n.Body)
	case *ast.IfThenElse:
		if n.Otherwise != nil {
			return isBlockTerminated(n.Otherwise)
		}
		return isBlockTerminated(n.Then)
	case *ast.BinaryOp:
		if n.Op == "=" {
			return isBlockTerminated(n.Right)
		}
		return false
	default:
		return false
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *parser) parseStatement() (ast.Expression, error) {
	switch {
	case p.atIdentText("var"):
		return p.parseVar()
	case p.atIdentText("fun"):
		return p.parseFuncDef()
	default:
		return p.parseExpression()
	}
}

func (p *parser) parseVar() (ast.Expression, error) {
	loc := p.cur().Location
	p.advance() // "var"
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	nameNode := ast.NewIdentifier(nameTok.Location, nameTok.Text)

	var declared *types.Type
	if p.atPunct(":") {
		p.advance()
		t, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		declared = &t
	}
	if _, err := p.expectOperator("="); err != nil {
		return nil, err
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewVar(loc, nameNode, init, declared), nil
}

// parseTypeAnnotation parses an identifier type name followed by zero or more `*` suffixes,
// per spec.md §4.2, converting them into nested Pointer types. Unrecognized names become
// Unknown.
func (p *parser) parseTypeAnnotation() (types.Type, error) {
	tok := p.cur()
	if tok.Kind != ast.Identifier {
		return types.Unknown, p.errorf("expected type name, got %s", tok)
	}
	p.advance()
	t := typeFromName(tok.Text)
	for p.atOperator("*") {
		p.advance()
		t = types.NewPointer(t)
	}
	return t, nil
}

func typeFromName(name string) types.Type {
	switch name {
	case "Int":
		return types.Int
	case "Bool":
		return types.Bool
	case "Unit":
		return types.Unit
	default:
		return types.Unknown
	}
}

func (p *parser) parseFuncDef() (ast.Expression, error) {
	loc := p.cur().Location
	p.advance() // "fun"
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []*ast.Argument
	for !p.atPunct(")") {
		argTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		t, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.NewArgument(argTok.Location, argTok.Text, t))
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	declared := types.Unit
	if p.atPunct(":") {
		p.advance()
		declared, err = p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDef(loc, nameTok.Text, args, body, declared), nil
}

// ----------------------------------------------------------------------------
// Expression grammar: six left-associative precedence tiers, right-associative assignment,
// prefix unary operators, parentheses. See spec.md §4.2.
// ----------------------------------------------------------------------------

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.atOperator("=") {
		loc := p.cur().Location
		p.advance()
		right, err := p.parseAssignment() // right-associative
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(loc, left, "=", right), nil
	}
	return left, nil
}

func (p *parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atOperator("or") {
		loc := p.cur().Location
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(loc, left, "or", right)
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.atOperator("and") {
		loc := p.cur().Location
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(loc, left, "and", right)
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.atOperator("==") || p.atOperator("!=") {
		op := p.cur()
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(op.Location, left, op.Text, right)
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.atOperator("<") || p.atOperator("<=") || p.atOperator(">") || p.atOperator(">=") {
		op := p.cur()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(op.Location, left, op.Text, right)
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOperator("+") || p.atOperator("-") {
		op := p.cur()
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(op.Location, left, op.Text, right)
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOperator("*") || p.atOperator("/") || p.atOperator("%") {
		op := p.cur()
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(op.Location, left, op.Text, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	switch {
	case p.atOperator("-"):
		loc := p.cur().Location
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(loc, "-", right), nil
	case p.atIdentText("not"):
		loc := p.cur().Location
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(loc, "not", right), nil
	case p.atOperator("*"):
		loc := p.cur().Location
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(loc, "*", right), nil
	case p.atOperator("&"):
		loc := p.cur().Location
		p.advance()
		tok := p.cur()
		if tok.Kind != ast.Identifier || isReservedWord(tok.Text) {
			return nil, p.errorf("'&' must be followed by an identifier, got %s", tok)
		}
		p.advance()
		return ast.NewUnaryOp(loc, "&", ast.NewIdentifier(tok.Location, tok.Text)), nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch {
	case tok.Kind == ast.IntLiteral:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.Text)
		}
		return ast.NewIntLiteral(tok.Location, v), nil
	case tok.Kind == ast.BoolLiteral:
		p.advance()
		return ast.NewBoolLiteral(tok.Location, tok.Text == "true"), nil
	case tok.Kind == ast.Punctuation && tok.Text == "(":
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case tok.Kind == ast.Punctuation && tok.Text == "{":
		return p.parseBlock()
	case p.atIdentText("if"):
		return p.parseIf()
	case p.atIdentText("while"):
		return p.parseWhile()
	case p.atIdentText("break"):
		p.advance()
		return ast.NewBreakContinue(tok.Location, "break"), nil
	case p.atIdentText("continue"):
		p.advance()
		return ast.NewBreakContinue(tok.Location, "continue"), nil
	case p.atIdentText("unit"):
		p.advance()
		return ast.NewUnitLiteral(tok.Location), nil
	case tok.Kind == ast.Identifier:
		if isReservedWord(tok.Text) {
			return nil, p.errorf("unexpected keyword %q", tok.Text)
		}
		p.advance()
		ident := ast.NewIdentifier(tok.Location, tok.Text)
		if p.atPunct("(") {
			return p.parseCallArgs(ident)
		}
		return ident, nil
	default:
		return nil, p.errorf("unexpected token %s", tok)
	}
}

func (p *parser) parseCallArgs(name *ast.Identifier) (ast.Expression, error) {
	loc := name.GetLocation()
	p.advance() // "("
	var args []ast.Expression
	for !p.atPunct(")") {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return ast.NewFuncCall(loc, name, args), nil
}

func (p *parser) parseIf() (ast.Expression, error) {
	loc := p.cur().Location
	p.advance() // "if"
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atIdentText("then") {
		return nil, p.errorf("expected 'then', got %s", p.cur())
	}
	p.advance()
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	var otherwise ast.Expression
	if p.atIdentText("else") {
		p.advance()
		otherwise, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfThenElse(loc, cond, then, otherwise), nil
}

func (p *parser) parseWhile() (ast.Expression, error) {
	loc := p.cur().Location
	p.advance() // "while"
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atIdentText("do") {
		return nil, p.errorf("expected 'do', got %s", p.cur())
	}
	p.advance()
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(loc, cond, body), nil
}
