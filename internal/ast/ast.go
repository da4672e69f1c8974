package ast

import "github.com/nnecklace/exprc/internal/types"

// Expression is implemented by every syntax tree node. The interface shape — a small common
// surface (location, type) backing a closed set of concrete variant structs — mirrors the
// teacher's lir.Value interface (internal/ir/lir/value.go), adapted from LIR operands to typed
// AST nodes.
type Expression interface {
	GetLocation() Location
	GetType() types.Type
	SetType(types.Type)
}

// base holds the fields every Expression carries: its source location and, once the type
// checker has run, its resolved type. Every concrete node embeds base.
type base struct {
	Loc Location
	Typ types.Type
}

func (b *base) GetLocation() Location { return b.Loc }
func (b *base) GetType() types.Type   { return b.Typ }
func (b *base) SetType(t types.Type)  { b.Typ = t }

func newBase(loc Location) base {
	return base{Loc: loc, Typ: types.Unit}
}

// LiteralValue is the tagged union of constant values a Literal may hold.
type LiteralValue struct {
	IsInt  bool
	IsBool bool
	IsUnit bool
	Int    int64
	Bool   bool
}

// Literal is a constant Int, Bool, or Unit value.
type Literal struct {
	base
	Value LiteralValue
}

func NewIntLiteral(loc Location, v int64) *Literal {
	l := &Literal{base: newBase(loc), Value: LiteralValue{IsInt: true, Int: v}}
	l.Typ = types.Int
	return l
}

func NewBoolLiteral(loc Location, v bool) *Literal {
	l := &Literal{base: newBase(loc), Value: LiteralValue{IsBool: true, Bool: v}}
	l.Typ = types.Bool
	return l
}

func NewUnitLiteral(loc Location) *Literal {
	l := &Literal{base: newBase(loc), Value: LiteralValue{IsUnit: true}}
	l.Typ = types.Unit
	return l
}

// Identifier references a bound name: a variable, a function parameter, or a function name.
type Identifier struct {
	base
	Name string
}

func NewIdentifier(loc Location, name string) *Identifier {
	return &Identifier{base: newBase(loc), Name: name}
}

// UnaryOp is a prefix operator application: -, not, * (dereference), or & (address-of).
type UnaryOp struct {
	base
	Op    string
	Right Expression
}

func NewUnaryOp(loc Location, op string, right Expression) *UnaryOp {
	return &UnaryOp{base: newBase(loc), Op: op, Right: right}
}

// BinaryOp is an infix operator application: arithmetic, comparison, and/or, or assignment (=).
type BinaryOp struct {
	base
	Left  Expression
	Op    string
	Right Expression
}

func NewBinaryOp(loc Location, left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{base: newBase(loc), Left: left, Op: op, Right: right}
}

// IfThenElse is a conditional expression. Otherwise is nil when there is no else branch.
type IfThenElse struct {
	base
	Cond      Expression
	Then      Expression
	Otherwise Expression
}

func NewIfThenElse(loc Location, cond, then, otherwise Expression) *IfThenElse {
	return &IfThenElse{base: newBase(loc), Cond: cond, Then: then, Otherwise: otherwise}
}

// While is a loop with a condition checked before each iteration.
type While struct {
	base
	Cond Expression
	Body Expression
}

func NewWhile(loc Location, cond, body Expression) *While {
	return &While{base: newBase(loc), Cond: cond, Body: body}
}

// Var declares a new local binding, optionally with a declared type.
type Var struct {
	base
	Name            *Identifier
	Initialization  Expression
	DeclaredType    *types.Type // nil when not explicitly typed
}

func NewVar(loc Location, name *Identifier, init Expression, declared *types.Type) *Var {
	return &Var{base: newBase(loc), Name: name, Initialization: init, DeclaredType: declared}
}

// Block is a sequence of statements. An empty block, and a semicolon-terminated block, both end
// in an implicit Literal(Unit) — the parser is responsible for appending it.
type Block struct {
	base
	Statements []Expression
}

func NewBlock(loc Location, statements []Expression) *Block {
	return &Block{base: newBase(loc), Statements: statements}
}

// FuncCall applies a named function to a list of argument expressions.
type FuncCall struct {
	base
	Name *Identifier
	Args []Expression
}

func NewFuncCall(loc Location, name *Identifier, args []Expression) *FuncCall {
	return &FuncCall{base: newBase(loc), Name: name, Args: args}
}

// Argument is one declared parameter of a FuncDef.
type Argument struct {
	base
	Name         string
	DeclaredType types.Type
}

func NewArgument(loc Location, name string, declared types.Type) *Argument {
	return &Argument{base: newBase(loc), Name: name, DeclaredType: declared}
}

// FuncDef declares a named function. DeclaredType defaults to Unit when the source omits a
// return type annotation.
type FuncDef struct {
	base
	Name         string
	Args         []*Argument
	Body         *Block
	DeclaredType types.Type
}

func NewFuncDef(loc Location, name string, args []*Argument, body *Block, declared types.Type) *FuncDef {
	return &FuncDef{base: newBase(loc), Name: name, Args: args, Body: body, DeclaredType: declared}
}

// BreakContinue is a loop-control statement: break or continue.
type BreakContinue struct {
	base
	Name string // "break" or "continue"
}

func NewBreakContinue(loc Location, name string) *BreakContinue {
	return &BreakContinue{base: newBase(loc), Name: name}
}

// Module is the top-level compilation unit: a sequence of expressions evaluated in order in the
// implicit "main" namespace.
type Module struct {
	base
	Namespace   string
	Expressions []Expression
}

func NewModule(loc Location, expressions []Expression) *Module {
	return &Module{base: newBase(loc), Namespace: "main", Expressions: expressions}
}
