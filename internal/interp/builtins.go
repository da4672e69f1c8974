package interp

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ast"
)

// callBuiltin resolves name in env and applies it to args — used for operators and runtime
// functions, which live in the environment exactly like original_source's top_level_symbol_table
// does, rather than being special-cased in the evaluator.
func (it *Interp) callBuiltin(name string, env *Env, args ...Value) (Value, error) {
	c, err := lookupCell(name, env)
	if err != nil {
		return Value{}, err
	}
	if c.V.Kind != KindFunction || c.V.Fn == nil {
		return Value{}, fmt.Errorf("%s is not callable", name)
	}
	return it.call(c.V.Fn, args, ast.Location{})
}

func unary(f func(Value) (Value, error)) *funcValue {
	return &funcValue{Builtin: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, fmt.Errorf("expects 1 argument, got %d", len(args))
		}
		return f(args[0])
	}}
}

func binary(f func(Value, Value) (Value, error)) *funcValue {
	return &funcValue{Builtin: func(args []Value) (Value, error) {
		if len(args) != 2 {
			return Value{}, fmt.Errorf("expects 2 arguments, got %d", len(args))
		}
		return f(args[0], args[1])
	}}
}

func arith(op func(x, y int64) int64) *funcValue {
	return binary(func(a, b Value) (Value, error) { return intValue(op(a.Int, b.Int)), nil })
}

func compare(op func(x, y int64) bool) *funcValue {
	return binary(func(a, b Value) (Value, error) { return boolValue(op(a.Int, b.Int)), nil })
}

// registerBuiltins binds the arithmetic, comparison and unary operators and the runtime entry
// points, mirroring original_source/src/compiler/interpreter.py's top_level_symbol_table bindings
// dict. The address-of and dereference operators (&, *), ==, != and the short-circuiting and/or
// are not bound here: evalUnaryOp and evalBinaryOp handle them directly.
func (it *Interp) registerBuiltins(env *Env) {
	bind := func(name string, fn *funcValue) {
		env.AddLocal(name, &cell{V: Value{Kind: KindFunction, Fn: fn}})
	}

	bind("+", arith(func(x, y int64) int64 { return x + y }))
	bind("-", arith(func(x, y int64) int64 { return x - y }))
	bind("*", arith(func(x, y int64) int64 { return x * y }))
	bind("/", binary(func(a, b Value) (Value, error) {
		if b.Int == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return intValue(a.Int / b.Int), nil
	}))
	bind("%", binary(func(a, b Value) (Value, error) {
		if b.Int == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return intValue(a.Int % b.Int), nil
	}))
	bind("<", compare(func(x, y int64) bool { return x < y }))
	bind("<=", compare(func(x, y int64) bool { return x <= y }))
	bind(">", compare(func(x, y int64) bool { return x > y }))
	bind(">=", compare(func(x, y int64) bool { return x >= y }))
	bind("unary_-", unary(func(a Value) (Value, error) { return intValue(-a.Int), nil }))
	bind("unary_not", unary(func(a Value) (Value, error) { return boolValue(!a.Bool), nil }))

	bind("print_int", unary(func(a Value) (Value, error) {
		fmt.Fprintf(it.out, "%d\n", a.Int)
		return unitValue(), nil
	}))
	bind("print_bool", unary(func(a Value) (Value, error) {
		fmt.Fprintf(it.out, "%t\n", a.Bool)
		return unitValue(), nil
	}))
	bind("read_int", &funcValue{Builtin: func(args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, fmt.Errorf("read_int expects 0 arguments, got %d", len(args))
		}
		var v int64
		if _, err := fmt.Fscan(it.in, &v); err != nil {
			return Value{}, fmt.Errorf("read_int: %w", err)
		}
		return intValue(v), nil
	}})
}
