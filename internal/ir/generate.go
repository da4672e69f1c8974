package ir

import (
	"fmt"
	"strconv"

	"github.com/nnecklace/exprc/internal/ast"
	"github.com/nnecklace/exprc/internal/symtab"
	"github.com/nnecklace/exprc/internal/types"
)

// Program is the lowering's output: every function body, keyed by name, always containing
// "main".
type Program struct {
	Functions map[string][]Instruction
	// Order preserves source declaration order (main first), so printers don't depend on Go's
	// randomized map iteration.
	Order []string
}

// loopLabels is a pair of jump targets for the innermost enclosing while loop.
type loopLabels struct {
	start Variable
	end   Variable
}

// generator lowers one type-checked Module to a Program. It is grounded on
// original_source/src/compiler/ir_generator.py's generate_ir/visit: a single-pass AST walk that
// threads a symbol table mapping source names to IR variables, fresh-name counters, and a stack
// of pending FuncDef bodies emitted after "main".
type generator struct {
	symtab   *symtab.SymbolTable[Variable]
	ins      []Instruction
	loops    []loopLabels
	pending  []*ast.FuncDef
	counters map[string]int
}

func newGenerator() *generator {
	return &generator{
		symtab:   symtab.New[Variable](),
		counters: make(map[string]int),
	}
}

// nextCount returns the next 1-based counter value for key, used both for fresh temp names and
// for the per-construct label indices (if/while/and/or each count independently, per spec.md
// §4.4).
func (g *generator) nextCount(key string) int {
	g.counters[key]++
	return g.counters[key]
}

func (g *generator) newTemp() Variable {
	return Variable{Name: "x" + strconv.Itoa(g.nextCount("x"))}
}

func (g *generator) emit(i Instruction) { g.ins = append(g.ins, i) }

// globalNames lists every identifier the checker pre-registers and that the generator must be
// able to resolve as an IR variable of the same name: arithmetic/comparison/logical operators,
// the four unary intrinsics (the checker type-checks unary_*/unary_& structurally rather than
// through the signature table, but generation still needs a concrete Call target for them), and
// the runtime entry points.
var globalNames = []string{
	"+", "-", "*", "/", "%",
	"<", "<=", ">", ">=",
	"and", "or",
	"unary_-", "unary_not", "unary_*", "unary_&",
	"print_int", "print_bool", "read_int",
}

// Generate lowers mod (which must already be type-checked) into a Program.
func Generate(mod *ast.Module) (*Program, error) {
	g := newGenerator()
	for _, name := range globalNames {
		g.symtab.AddLocal(name, Variable{Name: name})
	}

	g.emit(Label{base: base{Loc: mod.GetLocation()}, Name: Variable{Name: "Start_main"}})

	if len(mod.Expressions) == 0 {
		g.emit(ReturnValue{base: base{Loc: mod.GetLocation()}, Var: Variable{Name: "-1"}})
		prog := &Program{Functions: map[string][]Instruction{"main": g.ins}, Order: []string{"main"}}
		return prog, nil
	}

	var final Variable
	for i, e := range mod.Expressions {
		v, err := g.visit(e)
		if err != nil {
			return nil, err
		}
		if i == len(mod.Expressions)-1 {
			final = v
		}
	}

	finalType := mod.Expressions[len(mod.Expressions)-1].GetType()
	if finalType.Equal(types.Int) {
		g.emit(Call{base: base{Loc: mod.GetLocation()}, Fun: Variable{Name: "print_int"}, Args: []Variable{final}, Dest: g.newTemp()})
	} else if finalType.Equal(types.Bool) {
		g.emit(Call{base: base{Loc: mod.GetLocation()}, Fun: Variable{Name: "print_bool"}, Args: []Variable{final}, Dest: g.newTemp()})
	}
	g.emit(ReturnValue{base: base{Loc: mod.GetLocation()}, Var: Variable{Name: "-1"}})

	prog := &Program{Functions: map[string][]Instruction{"main": g.ins}, Order: []string{"main"}}

	for _, fd := range g.pending {
		body, err := g.generateFunction(fd)
		if err != nil {
			return nil, err
		}
		prog.Functions[fd.Name] = body
		prog.Order = append(prog.Order, fd.Name)
	}
	return prog, nil
}

func (g *generator) generateFunction(fd *ast.FuncDef) ([]Instruction, error) {
	saved := g.ins
	g.ins = nil
	defer func() { g.ins = saved }()

	g.emit(Label{base: base{Loc: fd.GetLocation()}, Name: Variable{Name: "Start_" + fd.Name}})

	g.symtab.PushScope()
	defer g.symtab.PopScope()

	for _, a := range fd.Args {
		param := g.newTemp()
		symbol := Variable{Name: a.Name}
		switch {
		case a.DeclaredType.Equal(types.Int):
			g.emit(LoadIntParam{base: base{Loc: a.GetLocation()}, Symbol: symbol, Dest: param})
		case a.DeclaredType.Equal(types.Bool):
			g.emit(LoadBoolParam{base: base{Loc: a.GetLocation()}, Symbol: symbol, Dest: param})
		default:
			g.emit(LoadPointerParam{base: base{Loc: a.GetLocation()}, Symbol: symbol, Dest: param})
		}
		g.symtab.AddLocal(a.Name, param)
	}

	result, err := g.visit(fd.Body)
	if err != nil {
		return nil, err
	}
	g.emit(ReturnValue{base: base{Loc: fd.GetLocation()}, Var: result})
	return g.ins, nil
}

func (g *generator) visit(e ast.Expression) (Variable, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return g.visitLiteral(n)
	case *ast.Identifier:
		v, err := g.symtab.Require(n.Name, nil)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		return v, nil
	case *ast.BreakContinue:
		return g.visitBreakContinue(n)
	case *ast.FuncDef:
		g.pending = append(g.pending, n)
		g.symtab.AddLocal(n.Name, Variable{Name: n.Name})
		return Unit, nil
	case *ast.FuncCall:
		return g.visitFuncCall(n)
	case *ast.UnaryOp:
		return g.visitUnaryOp(n)
	case *ast.BinaryOp:
		return g.visitBinaryOp(n)
	case *ast.IfThenElse:
		return g.visitIfThenElse(n)
	case *ast.While:
		return g.visitWhile(n)
	case *ast.Var:
		return g.visitVar(n)
	case *ast.Block:
		return g.visitBlock(n)
	}
	return Variable{}, fmt.Errorf("%s: unknown expression type %T", e.GetLocation(), e)
}

func (g *generator) visitLiteral(n *ast.Literal) (Variable, error) {
	switch {
	case n.Value.IsInt:
		v := g.newTemp()
		g.emit(LoadIntConst{base: base{Loc: n.GetLocation()}, Value: n.Value.Int, Dest: v})
		return v, nil
	case n.Value.IsBool:
		v := g.newTemp()
		g.emit(LoadBoolConst{base: base{Loc: n.GetLocation()}, Value: n.Value.Bool, Dest: v})
		return v, nil
	default:
		return Unit, nil
	}
}

func (g *generator) visitBreakContinue(n *ast.BreakContinue) (Variable, error) {
	if len(g.loops) == 0 {
		return Variable{}, fmt.Errorf("%s: %s used outside of a loop", n.GetLocation(), n.Name)
	}
	top := g.loops[len(g.loops)-1]
	if n.Name == "break" {
		g.emit(Jump{base: base{Loc: n.GetLocation()}, Label: top.end})
	} else {
		g.emit(Jump{base: base{Loc: n.GetLocation()}, Label: top.start})
	}
	return Unit, nil
}

func (g *generator) visitFuncCall(n *ast.FuncCall) (Variable, error) {
	args := make([]Variable, len(n.Args))
	for i, a := range n.Args {
		v, err := g.visit(a)
		if err != nil {
			return Variable{}, err
		}
		args[i] = v
	}
	fun, err := g.symtab.Require(n.Name.Name, nil)
	if err != nil {
		return Variable{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}
	result := g.newTemp()
	g.emit(Call{base: base{Loc: n.GetLocation()}, Fun: fun, Args: args, Dest: result})
	return result, nil
}

func (g *generator) visitUnaryOp(n *ast.UnaryOp) (Variable, error) {
	body, err := g.visit(n.Right)
	if err != nil {
		return Variable{}, err
	}
	op, err := g.symtab.Require("unary_"+n.Op, nil)
	if err != nil {
		return Variable{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}
	result := g.newTemp()
	g.emit(Call{base: base{Loc: n.GetLocation()}, Fun: op, Args: []Variable{body}, Dest: result})
	return result, nil
}

func (g *generator) visitBinaryOp(n *ast.BinaryOp) (Variable, error) {
	switch n.Op {
	case "=":
		return g.visitAssign(n)
	case "and", "or":
		return g.visitShortCircuit(n)
	}

	var op Variable
	if n.Op == "==" || n.Op == "!=" {
		op = Variable{Name: n.Op}
	} else {
		v, err := g.symtab.Require(n.Op, nil)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		op = v
	}

	left, err := g.visit(n.Left)
	if err != nil {
		return Variable{}, err
	}
	right, err := g.visit(n.Right)
	if err != nil {
		return Variable{}, err
	}
	result := g.newTemp()
	g.emit(Call{base: base{Loc: n.GetLocation()}, Fun: op, Args: []Variable{left, right}, Dest: result})
	return result, nil
}

// visitAssign lowers `lhs = rhs`. Per spec, only a plain Identifier or a `*expr` dereference may
// appear on the left; this shape check belongs here, at IR generation, not in the type checker
// (original_source/src/compiler/ir_generator.py raises the equivalent error in `visit`, not in
// type_checker.py).
func (g *generator) visitAssign(n *ast.BinaryOp) (Variable, error) {
	switch left := n.Left.(type) {
	case *ast.Identifier:
		right, err := g.visit(n.Right)
		if err != nil {
			return Variable{}, err
		}
		dest, err := g.symtab.Require(left.Name, nil)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		g.emit(Copy{base: base{Loc: n.GetLocation()}, Source: right, Dest: dest})
		return Unit, nil
	case *ast.UnaryOp:
		if left.Op != "*" {
			return Variable{}, fmt.Errorf(
				"%s: left hand side of assignment must be an identifier or a dereference, got unary %q",
				n.GetLocation(), left.Op,
			)
		}
		right, err := g.visit(n.Right)
		if err != nil {
			return Variable{}, err
		}
		target, err := g.visit(left.Right)
		if err != nil {
			return Variable{}, err
		}
		g.emit(CopyPointer{base: base{Loc: n.GetLocation()}, Source: right, Dest: target})
		return Unit, nil
	default:
		return Variable{}, fmt.Errorf(
			"%s: left hand side of assignment must be an identifier or a dereference", n.GetLocation(),
		)
	}
}

// visitShortCircuit lowers `and`/`or` with the three-label scheme from spec.md §4.4: `right` is
// only reached when the left operand does not already determine the result, guaranteeing the
// right operand is unevaluated along the short-circuited path.
func (g *generator) visitShortCircuit(n *ast.BinaryOp) (Variable, error) {
	suffix := strconv.Itoa(g.nextCount(n.Op))
	lRight := Variable{Name: n.Op + "_right" + suffix}
	lSkip := Variable{Name: n.Op + "_skip" + suffix}
	lEnd := Variable{Name: n.Op + "_end" + suffix}

	left, err := g.visit(n.Left)
	if err != nil {
		return Variable{}, err
	}

	loc := n.GetLocation()
	if n.Op == "and" {
		g.emit(CondJump{base: base{Loc: loc}, Cond: left, Then: lRight, Else: lSkip})
	} else {
		g.emit(CondJump{base: base{Loc: loc}, Cond: left, Then: lSkip, Else: lRight})
	}

	g.emit(Label{base: base{Loc: loc}, Name: lRight})
	right, err := g.visit(n.Right)
	if err != nil {
		return Variable{}, err
	}
	result := g.newTemp()
	g.emit(Copy{base: base{Loc: loc}, Source: right, Dest: result})
	g.emit(Jump{base: base{Loc: loc}, Label: lEnd})

	g.emit(Label{base: base{Loc: loc}, Name: lSkip})
	g.emit(LoadBoolConst{base: base{Loc: loc}, Value: n.Op == "or", Dest: result})
	g.emit(Jump{base: base{Loc: loc}, Label: lEnd})

	g.emit(Label{base: base{Loc: loc}, Name: lEnd})
	return result, nil
}

func (g *generator) visitIfThenElse(n *ast.IfThenElse) (Variable, error) {
	loc := n.GetLocation()
	count := strconv.Itoa(g.nextCount("if"))

	cond, err := g.visit(n.Cond)
	if err != nil {
		return Variable{}, err
	}

	if n.Otherwise == nil {
		lThen := Variable{Name: "then" + count}
		lEnd := Variable{Name: "if_end" + count}
		g.emit(CondJump{base: base{Loc: loc}, Cond: cond, Then: lThen, Else: lEnd})
		g.emit(Label{base: base{Loc: loc}, Name: lThen})
		if _, err := g.visit(n.Then); err != nil {
			return Variable{}, err
		}
		g.emit(Label{base: base{Loc: loc}, Name: lEnd})
		return Unit, nil
	}

	lThen := Variable{Name: "then" + count}
	lElse := Variable{Name: "else" + count}
	lEnd := Variable{Name: "if_end" + count}
	g.emit(CondJump{base: base{Loc: loc}, Cond: cond, Then: lThen, Else: lElse})

	g.emit(Label{base: base{Loc: loc}, Name: lThen})
	result := g.newTemp()
	then, err := g.visit(n.Then)
	if err != nil {
		return Variable{}, err
	}
	g.emit(Copy{base: base{Loc: loc}, Source: then, Dest: result})
	g.emit(Jump{base: base{Loc: loc}, Label: lEnd})

	g.emit(Label{base: base{Loc: loc}, Name: lElse})
	otherwise, err := g.visit(n.Otherwise)
	if err != nil {
		return Variable{}, err
	}
	g.emit(Copy{base: base{Loc: loc}, Source: otherwise, Dest: result})

	g.emit(Label{base: base{Loc: loc}, Name: lEnd})
	return result, nil
}

func (g *generator) visitWhile(n *ast.While) (Variable, error) {
	loc := n.GetLocation()
	count := strconv.Itoa(g.nextCount("while"))
	lStart := Variable{Name: "while_start" + count}
	lBody := Variable{Name: "while_body" + count}
	lEnd := Variable{Name: "while_end" + count}

	g.emit(Label{base: base{Loc: loc}, Name: lStart})
	cond, err := g.visit(n.Cond)
	if err != nil {
		return Variable{}, err
	}
	g.emit(CondJump{base: base{Loc: loc}, Cond: cond, Then: lBody, Else: lEnd})
	g.emit(Label{base: base{Loc: loc}, Name: lBody})

	g.loops = append(g.loops, loopLabels{start: lStart, end: lEnd})
	_, err = g.visit(n.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if err != nil {
		return Variable{}, err
	}

	g.emit(Jump{base: base{Loc: loc}, Label: lStart})
	g.emit(Label{base: base{Loc: loc}, Name: lEnd})
	return Unit, nil
}

func (g *generator) visitVar(n *ast.Var) (Variable, error) {
	init, err := g.visit(n.Initialization)
	if err != nil {
		return Variable{}, err
	}
	result := g.newTemp()
	g.emit(Copy{base: base{Loc: n.GetLocation()}, Source: init, Dest: result})
	g.symtab.AddLocal(n.Name.Name, result)
	return result, nil
}

func (g *generator) visitBlock(n *ast.Block) (Variable, error) {
	g.symtab.PushScope()
	defer g.symtab.PopScope()

	if len(n.Statements) == 0 {
		return Unit, nil
	}
	for _, stmt := range n.Statements[:len(n.Statements)-1] {
		if _, err := g.visit(stmt); err != nil {
			return Variable{}, err
		}
	}
	return g.visit(n.Statements[len(n.Statements)-1])
}
