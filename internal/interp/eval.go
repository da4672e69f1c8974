package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nnecklace/exprc/internal/ast"
	"github.com/nnecklace/exprc/internal/symtab"
)

// Env binds names to cells. Grounded on original_source/src/compiler/interpreter.py's
// SymbolTable/find_symbol pair, reusing internal/symtab instead of a hand-rolled linked chain of
// scopes — the same generic stack the type checker and IR generator already use, instantiated
// over *cell so assignment through a pointer and assignment to a plain name share one
// implementation (both just mutate a cell in place).
type Env = symtab.SymbolTable[*cell]

// breakSignal and continueSignal are control-flow errors: evalWhile intercepts them, and any
// that escape a function body (break/continue used outside a loop) surface as ordinary runtime
// errors at the call site.
type breakSignal struct{}

func (breakSignal) Error() string { return "break used outside of a loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue used outside of a loop" }

// Interp evaluates a type-checked module, printing to out and reading read_int's input from in.
type Interp struct {
	out io.Writer
	in  *bufio.Reader
}

// New returns an Interp that writes print_int/print_bool output to out and reads read_int input
// from in.
func New(out io.Writer, in io.Reader) *Interp {
	return &Interp{out: out, in: bufio.NewReader(in)}
}

// Eval runs mod (which must already be type-checked) to completion and returns the value of its
// final top-level expression. FuncDef signatures are bound before any expression is evaluated,
// mirroring internal/check's two-phase pre-registration, so mutual recursion and forward
// references among top-level functions resolve regardless of declaration order.
func (it *Interp) Eval(mod *ast.Module) (Value, error) {
	env := symtab.New[*cell]()
	it.registerBuiltins(env)

	for _, e := range mod.Expressions {
		if fd, ok := e.(*ast.FuncDef); ok {
			env.AddLocal(fd.Name, &cell{V: Value{Kind: KindFunction, Fn: &funcValue{Def: fd, Env: env}}})
		}
	}

	result := unitValue()
	for _, e := range mod.Expressions {
		if _, ok := e.(*ast.FuncDef); ok {
			continue
		}
		v, err := it.eval(e, env)
		if err != nil {
			return Value{}, err
		}
		result = v
	}
	return result, nil
}

func (it *Interp) eval(e ast.Expression, env *Env) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return evalLiteral(n), nil
	case *ast.Identifier:
		return it.evalIdentifier(n, env)
	case *ast.UnaryOp:
		return it.evalUnaryOp(n, env)
	case *ast.BinaryOp:
		return it.evalBinaryOp(n, env)
	case *ast.IfThenElse:
		return it.evalIfThenElse(n, env)
	case *ast.While:
		return it.evalWhile(n, env)
	case *ast.Var:
		return it.evalVar(n, env)
	case *ast.Block:
		return it.evalBlock(n, env)
	case *ast.FuncCall:
		return it.evalFuncCall(n, env)
	case *ast.FuncDef:
		return it.evalFuncDef(n, env)
	case *ast.BreakContinue:
		return evalBreakContinue(n)
	}
	return Value{}, fmt.Errorf("%s: unknown expression type %T", e.GetLocation(), e)
}

func evalLiteral(n *ast.Literal) Value {
	switch {
	case n.Value.IsInt:
		return intValue(n.Value.Int)
	case n.Value.IsBool:
		return boolValue(n.Value.Bool)
	default:
		return unitValue()
	}
}

func lookupCell(name string, env *Env) (*cell, error) {
	c, err := env.Require(name, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (it *Interp) evalIdentifier(n *ast.Identifier, env *Env) (Value, error) {
	c, err := lookupCell(n.Name, env)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}
	return c.V, nil
}

func (it *Interp) evalUnaryOp(n *ast.UnaryOp, env *Env) (Value, error) {
	switch n.Op {
	case "&":
		id, ok := n.Right.(*ast.Identifier)
		if !ok {
			return Value{}, fmt.Errorf("%s: operand of & must be an identifier", n.GetLocation())
		}
		c, err := lookupCell(id.Name, env)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		return Value{Kind: KindPointer, Ptr: c}, nil
	case "*":
		v, err := it.eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != KindPointer {
			return Value{}, fmt.Errorf("%s: cannot dereference a non-pointer value", n.GetLocation())
		}
		return v.Ptr.V, nil
	default:
		v, err := it.eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return it.callBuiltin("unary_"+n.Op, env, v)
	}
}

func (it *Interp) evalBinaryOp(n *ast.BinaryOp, env *Env) (Value, error) {
	switch n.Op {
	case "=":
		return it.evalAssign(n, env)
	case "and":
		l, err := it.eval(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if !l.Bool {
			return boolValue(false), nil
		}
		return it.eval(n.Right, env)
	case "or":
		l, err := it.eval(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if l.Bool {
			return boolValue(true), nil
		}
		return it.eval(n.Right, env)
	}

	l, err := it.eval(n.Left, env)
	if err != nil {
		return Value{}, err
	}
	r, err := it.eval(n.Right, env)
	if err != nil {
		return Value{}, err
	}
	if n.Op == "==" || n.Op == "!=" {
		eq, err := valuesEqual(l, r)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		return boolValue(eq == (n.Op == "==")), nil
	}
	return it.callBuiltin(n.Op, env, l, r)
}

func (it *Interp) evalAssign(n *ast.BinaryOp, env *Env) (Value, error) {
	rv, err := it.eval(n.Right, env)
	if err != nil {
		return Value{}, err
	}
	switch left := n.Left.(type) {
	case *ast.Identifier:
		c, err := lookupCell(left.Name, env)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		c.V = rv
		return rv, nil
	case *ast.UnaryOp:
		if left.Op != "*" {
			return Value{}, fmt.Errorf(
				"%s: left hand side of assignment must be an identifier or a dereference, got unary %q",
				n.GetLocation(), left.Op,
			)
		}
		ptr, err := it.eval(left.Right, env)
		if err != nil {
			return Value{}, err
		}
		if ptr.Kind != KindPointer {
			return Value{}, fmt.Errorf("%s: cannot assign through a non-pointer value", n.GetLocation())
		}
		ptr.Ptr.V = rv
		return rv, nil
	default:
		return Value{}, fmt.Errorf(
			"%s: left hand side of assignment must be an identifier or a dereference", n.GetLocation(),
		)
	}
}

func (it *Interp) evalIfThenElse(n *ast.IfThenElse, env *Env) (Value, error) {
	c, err := it.eval(n.Cond, env)
	if err != nil {
		return Value{}, err
	}
	if c.Bool {
		return it.eval(n.Then, env)
	}
	if n.Otherwise != nil {
		return it.eval(n.Otherwise, env)
	}
	return unitValue(), nil
}

// evalWhile always yields Unit, matching the resolved design decision in internal/check's
// checkWhile (a While expression's static type is always Unit, never the body's type) — nothing
// downstream should observe a While's runtime result as anything but Unit.
func (it *Interp) evalWhile(n *ast.While, env *Env) (Value, error) {
	for {
		c, err := it.eval(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if !c.Bool {
			return unitValue(), nil
		}
		_, err = it.eval(n.Body, env)
		if err != nil {
			if _, ok := err.(breakSignal); ok {
				return unitValue(), nil
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return Value{}, err
		}
	}
}

func (it *Interp) evalVar(n *ast.Var, env *Env) (Value, error) {
	v, err := it.eval(n.Initialization, env)
	if err != nil {
		return Value{}, err
	}
	env.AddLocal(n.Name.Name, &cell{V: v})
	return v, nil
}

func (it *Interp) evalBlock(n *ast.Block, env *Env) (Value, error) {
	env.PushScope()
	defer env.PopScope()

	if len(n.Statements) == 0 {
		return unitValue(), nil
	}
	for _, s := range n.Statements[:len(n.Statements)-1] {
		if _, err := it.eval(s, env); err != nil {
			return Value{}, err
		}
	}
	return it.eval(n.Statements[len(n.Statements)-1], env)
}

func (it *Interp) evalFuncCall(n *ast.FuncCall, env *Env) (Value, error) {
	c, err := lookupCell(n.Name.Name, env)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}
	fn := c.V
	if fn.Kind != KindFunction || fn.Fn == nil {
		return Value{}, fmt.Errorf("%s: %s is not callable", n.GetLocation(), n.Name.Name)
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := it.eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return it.call(fn.Fn, args, n.GetLocation())
}

func (it *Interp) call(fn *funcValue, args []Value, loc ast.Location) (Value, error) {
	if fn.Builtin != nil {
		return fn.Builtin(args)
	}
	if len(args) != len(fn.Def.Args) {
		return Value{}, fmt.Errorf("%s: %s expects %d argument(s), got %d", loc, fn.Def.Name, len(fn.Def.Args), len(args))
	}
	fn.Env.PushScope()
	defer fn.Env.PopScope()
	for i, a := range fn.Def.Args {
		fn.Env.AddLocal(a.Name, &cell{V: args[i]})
	}
	v, err := it.eval(fn.Def.Body, fn.Env)
	if err != nil {
		if _, ok := err.(breakSignal); ok {
			return Value{}, fmt.Errorf("%s: break used outside of a loop", loc)
		}
		if _, ok := err.(continueSignal); ok {
			return Value{}, fmt.Errorf("%s: continue used outside of a loop", loc)
		}
		return Value{}, err
	}
	return v, nil
}

func (it *Interp) evalFuncDef(n *ast.FuncDef, env *Env) (Value, error) {
	if c, err := lookupCell(n.Name, env); err == nil {
		return c.V, nil
	}
	v := Value{Kind: KindFunction, Fn: &funcValue{Def: n, Env: env}}
	env.AddLocal(n.Name, &cell{V: v})
	return v, nil
}

func evalBreakContinue(n *ast.BreakContinue) (Value, error) {
	if n.Name == "break" {
		return Value{}, breakSignal{}
	}
	return Value{}, continueSignal{}
}
