// Package check implements the type checker: it walks a parsed ast.Module, annotates every
// Expression with its resolved types.Type via SetType, and reports the first type error found.
//
// The two-phase shape (pre-register every top-level function signature, then check bodies in
// source order) and the operator/intrinsic dispatch through the symbol table are both grounded on
// original_source/src/compiler/type_checker.py's typecheck_module and type_check_function. The
// scope-per-block/per-call structure and the plain fmt.Errorf error style follow the teacher's
// own symbol-table-walking passes (hhramberg-go-vslc/src/ir/generate.go uses the same push/check
// body/pop shape when it walks functions).
package check

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ast"
	"github.com/nnecklace/exprc/internal/symtab"
	"github.com/nnecklace/exprc/internal/types"
)

// Checker type-checks one module. Its symbol table's root scope holds the built-in operator and
// unary-intrinsic signatures; a Checker is single-use, one Module per Check call.
type Checker struct {
	table *symtab.SymbolTable[types.Type]
}

// New returns a Checker with every arithmetic, comparison, logical, and unary intrinsic
// pre-registered in the root scope.
func New() *Checker {
	c := &Checker{table: symtab.New[types.Type]()}
	c.registerIntrinsics()
	return c
}

func (c *Checker) registerIntrinsics() {
	arith := types.NewFunction([]types.Type{types.Int, types.Int}, types.Int)
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		c.table.AddLocal(op, arith)
	}

	cmp := types.NewFunction([]types.Type{types.Int, types.Int}, types.Bool)
	for _, op := range []string{"<", "<=", ">", ">="} {
		c.table.AddLocal(op, cmp)
	}

	logic := types.NewFunction([]types.Type{types.Bool, types.Bool}, types.Bool)
	c.table.AddLocal("and", logic)
	c.table.AddLocal("or", logic)

	// unary_* and unary_& are resolved specially in checkUnary instead of through a signature
	// here: their result type depends on the operand's pointer structure, which a fixed
	// FunctionSignature can't express.
	c.table.AddLocal("unary_-", types.NewFunction([]types.Type{types.Int}, types.Int))
	c.table.AddLocal("unary_not", types.NewFunction([]types.Type{types.Bool}, types.Bool))

	c.table.AddLocal("print_int", types.NewFunction([]types.Type{types.Int}, types.Unit))
	c.table.AddLocal("print_bool", types.NewFunction([]types.Type{types.Bool}, types.Unit))
	c.table.AddLocal("read_int", types.NewFunction([]types.Type{}, types.Int))
}

// Check type-checks every top-level expression of mod in source order, after pre-registering all
// top-level function signatures so mutually recursive functions can call each other.
func (c *Checker) Check(mod *ast.Module) error {
	for _, e := range mod.Expressions {
		fd, ok := e.(*ast.FuncDef)
		if !ok {
			continue
		}
		argTypes := make([]types.Type, len(fd.Args))
		for i, a := range fd.Args {
			argTypes[i] = a.DeclaredType
		}
		c.table.AddLocal(fd.Name, types.NewFunction(argTypes, fd.DeclaredType))
	}

	for _, e := range mod.Expressions {
		if _, err := c.check(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) check(e ast.Expression) (types.Type, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.GetType(), nil

	case *ast.Identifier:
		t, err := c.table.Require(n.Name, nil)
		if err != nil {
			return types.Unknown, fmt.Errorf("%s: %w", n.GetLocation(), err)
		}
		n.SetType(t)
		return t, nil

	case *ast.BreakContinue:
		n.SetType(types.Unit)
		return types.Unit, nil

	case *ast.UnaryOp:
		return c.checkUnary(n)

	case *ast.BinaryOp:
		return c.checkBinary(n)

	case *ast.IfThenElse:
		return c.checkIfThenElse(n)

	case *ast.While:
		return c.checkWhile(n)

	case *ast.Var:
		return c.checkVar(n)

	case *ast.Block:
		return c.checkBlock(n)

	case *ast.FuncCall:
		return c.checkFuncCall(n)

	case *ast.FuncDef:
		return c.checkFuncDef(n)
	}
	return types.Unknown, fmt.Errorf("%s: unknown expression type %T", e.GetLocation(), e)
}

func (c *Checker) checkUnary(n *ast.UnaryOp) (types.Type, error) {
	rt, err := c.check(n.Right)
	if err != nil {
		return types.Unknown, err
	}

	switch n.Op {
	case "*":
		if rt.Kind != types.KindPointer {
			return types.Unknown, fmt.Errorf("%s: cannot dereference non-pointer type %s", n.GetLocation(), rt)
		}
		result := *rt.Target
		n.SetType(result)
		return result, nil
	case "&":
		result := types.NewPointer(rt)
		n.SetType(result)
		return result, nil
	}

	sig, err := c.table.Require("unary_"+n.Op, nil)
	if err != nil {
		return types.Unknown, fmt.Errorf("%s: unknown unary operator %q", n.GetLocation(), n.Op)
	}
	if !rt.Equal(sig.Args[0]) {
		return types.Unknown, fmt.Errorf("%s: operator %q expects %s, got %s", n.GetLocation(), n.Op, sig.Args[0], rt)
	}
	result := *sig.Return
	n.SetType(result)
	return result, nil
}

func (c *Checker) checkBinary(n *ast.BinaryOp) (types.Type, error) {
	lt, err := c.check(n.Left)
	if err != nil {
		return types.Unknown, err
	}
	rt, err := c.check(n.Right)
	if err != nil {
		return types.Unknown, err
	}

	switch n.Op {
	case "=", "==", "!=":
		if !lt.Equal(rt) {
			return types.Unknown, fmt.Errorf(
				"%s: operator %q expects the type of the right hand side to match the left hand side, got %s and %s",
				n.GetLocation(), n.Op, lt, rt,
			)
		}
		result := rt
		if n.Op != "=" {
			result = types.Bool
		}
		n.SetType(result)
		return result, nil
	}

	sig, err := c.table.Require(n.Op, nil)
	if err != nil {
		return types.Unknown, fmt.Errorf("%s: unknown operator %q", n.GetLocation(), n.Op)
	}
	if !lt.Equal(sig.Args[0]) || !rt.Equal(sig.Args[1]) {
		return types.Unknown, fmt.Errorf(
			"%s: operator %q expects (%s, %s), got (%s, %s)",
			n.GetLocation(), n.Op, sig.Args[0], sig.Args[1], lt, rt,
		)
	}
	result := *sig.Return
	n.SetType(result)
	return result, nil
}

func (c *Checker) checkIfThenElse(n *ast.IfThenElse) (types.Type, error) {
	cond, err := c.check(n.Cond)
	if err != nil {
		return types.Unknown, err
	}
	if !cond.Equal(types.Bool) {
		return types.Unknown, fmt.Errorf("%s: if condition must be bool, got %s", n.GetLocation(), cond)
	}

	then, err := c.check(n.Then)
	if err != nil {
		return types.Unknown, err
	}

	if n.Otherwise != nil {
		otherwise, err := c.check(n.Otherwise)
		if err != nil {
			return types.Unknown, err
		}
		if !then.Equal(otherwise) {
			return types.Unknown, fmt.Errorf(
				"%s: then branch (%s) and else branch (%s) have mismatched types", n.GetLocation(), then, otherwise,
			)
		}
	}

	n.SetType(then)
	return then, nil
}

func (c *Checker) checkWhile(n *ast.While) (types.Type, error) {
	cond, err := c.check(n.Cond)
	if err != nil {
		return types.Unknown, err
	}
	if !cond.Equal(types.Bool) {
		return types.Unknown, fmt.Errorf("%s: while condition must be bool, got %s", n.GetLocation(), cond)
	}

	if _, err := c.check(n.Body); err != nil {
		return types.Unknown, err
	}

	n.SetType(types.Unit)
	return types.Unit, nil
}

func (c *Checker) checkVar(n *ast.Var) (types.Type, error) {
	init, err := c.check(n.Initialization)
	if err != nil {
		return types.Unknown, err
	}
	if n.DeclaredType != nil && !n.DeclaredType.Equal(init) {
		return types.Unknown, fmt.Errorf(
			"%s: variable %s declared as %s but initialized with %s",
			n.GetLocation(), n.Name.Name, *n.DeclaredType, init,
		)
	}

	c.table.AddLocal(n.Name.Name, init)
	n.Name.SetType(init)
	n.SetType(init)
	return init, nil
}

func (c *Checker) checkBlock(n *ast.Block) (types.Type, error) {
	c.table.PushScope()
	defer c.table.PopScope()

	if len(n.Statements) == 0 {
		n.SetType(types.Unit)
		return types.Unit, nil
	}

	for _, stmt := range n.Statements[:len(n.Statements)-1] {
		if _, err := c.check(stmt); err != nil {
			return types.Unknown, err
		}
	}

	last, err := c.check(n.Statements[len(n.Statements)-1])
	if err != nil {
		return types.Unknown, err
	}
	n.SetType(last)
	return last, nil
}

func (c *Checker) checkFuncCall(n *ast.FuncCall) (types.Type, error) {
	sig, err := c.table.Require(n.Name.Name, nil)
	if err != nil {
		return types.Unknown, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}
	if sig.Kind != types.KindFunction {
		return types.Unknown, fmt.Errorf("%s: %s is not a function", n.GetLocation(), n.Name.Name)
	}
	if len(n.Args) != len(sig.Args) {
		return types.Unknown, fmt.Errorf(
			"%s: %s expects %d argument(s), got %d", n.GetLocation(), n.Name.Name, len(sig.Args), len(n.Args),
		)
	}

	for i, arg := range n.Args {
		at, err := c.check(arg)
		if err != nil {
			return types.Unknown, err
		}
		if !at.Equal(sig.Args[i]) {
			return types.Unknown, fmt.Errorf(
				"%s: %s argument %d expects %s, got %s", n.GetLocation(), n.Name.Name, i+1, sig.Args[i], at,
			)
		}
	}

	result := *sig.Return
	n.SetType(result)
	return result, nil
}

func (c *Checker) checkFuncDef(n *ast.FuncDef) (types.Type, error) {
	sig, err := c.table.Require(n.Name, nil)
	if err != nil {
		return types.Unknown, fmt.Errorf("%s: %w", n.GetLocation(), err)
	}

	c.table.PushScope()
	for i, a := range n.Args {
		c.table.AddLocal(a.Name, sig.Args[i])
		a.SetType(sig.Args[i])
	}

	body, err := c.check(n.Body)
	c.table.PopScope()
	if err != nil {
		return types.Unknown, err
	}

	if !sig.Return.Equal(body) {
		return types.Unknown, fmt.Errorf(
			"%s: function %s declared to return %s but body has type %s",
			n.GetLocation(), n.Name, *sig.Return, body,
		)
	}

	n.SetType(sig)
	return sig, nil
}
