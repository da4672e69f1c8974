// Package llvmir lowers a generated *ir.Program to textual LLVM IR via tinygo.org/x/go-llvm, an
// alternate, non-core inspection path: spec.md's x86-64 backend never consumes this package's
// output. Grounded on hhramberg-go-vslc/src/ir/llvm/transform.go's genFuncHeader/genFuncBody/
// genMain sequence (one llvm.Context/Builder/Module per run, AddFunction per IR function,
// AddBasicBlock per Label, CreateAlloca/CreateStore/CreateLoad for every variable reference,
// CreateAdd/CreateICmp for the arithmetic/comparison intrinsics, CreateCondBr/CreateBr for control
// flow, CreateCall for both intrinsic and user calls, CreateRet to close a function), simplified
// from the teacher's worker-pool-parallel global-declaration lowering (opt.Threads-gated goroutines
// writing into a mutex-guarded symTab) to a single straight walk — spec.md §5 mandates a
// single-threaded pipeline, and one function's worth of IR is small enough that parallelizing
// across functions buys nothing here.
package llvmir

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ir"
	"tinygo.org/x/go-llvm"
)

// funcEnv holds one function's variable allocas and the basic blocks its Labels open, built before
// the instruction walk so forward jumps (an if's "then" branch jumping past an "else") resolve.
type funcEnv struct {
	vars   map[string]llvm.Value
	blocks map[string]llvm.BasicBlock
}

// Generate lowers prog into a textual LLVM IR module.
func Generate(prog *ir.Program) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()
	m := ctx.NewModule("expr")
	defer m.Dispose()

	i64 := ctx.Int64Type()
	ptrTy := llvm.PointerType(i64, 0)

	funcs := declareRuntime(m, i64)

	for _, name := range prog.Order {
		ftyp := llvm.FunctionType(i64, paramTypesOf(prog.Functions[name], i64, ptrTy), false)
		funcs[name] = llvm.AddFunction(m, name, ftyp)
	}

	for _, name := range prog.Order {
		if err := genFunction(b, m, funcs, funcs[name], prog.Functions[name], i64, ptrTy); err != nil {
			return "", fmt.Errorf("function %s: %w", name, err)
		}
	}

	return m.String(), nil
}

// declareRuntime declares the three externally-provided runtime functions as LLVM function
// declarations (no body), mirroring how the teacher's genPrint resolves printf as an external
// declaration rather than defining it, and returns them keyed by name so genCall can CreateCall
// them exactly like a user-defined function.
func declareRuntime(m llvm.Module, i64 llvm.Type) map[string]llvm.Value {
	return map[string]llvm.Value{
		"print_int":  llvm.AddFunction(m, "print_int", llvm.FunctionType(i64, []llvm.Type{i64}, false)),
		"print_bool": llvm.AddFunction(m, "print_bool", llvm.FunctionType(i64, []llvm.Type{i64}, false)),
		"read_int":   llvm.AddFunction(m, "read_int", llvm.FunctionType(i64, nil, false)),
	}
}

// paramTypesOf counts a function's Load*Param instructions (always its leading instructions after
// the entry Label) to recover its parameter list's types, since ir.Program only carries the lowered
// instruction stream, not the original declaration.
func paramTypesOf(instrs []ir.Instruction, i64, ptrTy llvm.Type) []llvm.Type {
	var types []llvm.Type
	for _, in := range instrs[1:] {
		switch in.(type) {
		case ir.LoadIntParam, ir.LoadBoolParam:
			types = append(types, i64)
		case ir.LoadPointerParam:
			types = append(types, ptrTy)
		default:
			return types
		}
	}
	return types
}

func genFunction(
	b llvm.Builder, m llvm.Module, funcs map[string]llvm.Value, fun llvm.Value,
	instrs []ir.Instruction, i64, ptrTy llvm.Type,
) error {
	env := &funcEnv{vars: make(map[string]llvm.Value), blocks: make(map[string]llvm.BasicBlock)}

	entry := llvm.AddBasicBlock(fun, "entry")
	for _, in := range instrs {
		if l, ok := in.(ir.Label); ok {
			env.blocks[l.Name.Name] = llvm.AddBasicBlock(fun, l.Name.Name)
		}
	}

	b.SetInsertPointAtEnd(entry)
	paramIndex := 0
	for _, in := range instrs[1:] {
		if err := genInstruction(b, m, funcs, fun, in, env, i64, ptrTy, &paramIndex); err != nil {
			return err
		}
	}
	return nil
}

func slot(b llvm.Builder, env *funcEnv, v ir.Variable, ty llvm.Type) llvm.Value {
	if a, ok := env.vars[v.Name]; ok {
		return a
	}
	a := b.CreateAlloca(ty, v.Name)
	env.vars[v.Name] = a
	return a
}

func load(b llvm.Builder, env *funcEnv, v ir.Variable, ty llvm.Type) llvm.Value {
	return b.CreateLoad(slot(b, env, v, ty), "")
}

func store(b llvm.Builder, env *funcEnv, v ir.Variable, ty llvm.Type, val llvm.Value) {
	b.CreateStore(val, slot(b, env, v, ty))
}

func genInstruction(
	b llvm.Builder, m llvm.Module, funcs map[string]llvm.Value, fun llvm.Value,
	in ir.Instruction, env *funcEnv, i64, ptrTy llvm.Type, paramIndex *int,
) error {
	switch n := in.(type) {
	case ir.Label:
		bb := env.blocks[n.Name.Name]
		if !hasTerminator(b) {
			b.CreateBr(bb)
		}
		b.SetInsertPointAtEnd(bb)
	case ir.LoadIntConst:
		store(b, env, n.Dest, i64, llvm.ConstInt(i64, uint64(n.Value), true))
	case ir.LoadBoolConst:
		v := int64(0)
		if n.Value {
			v = 1
		}
		store(b, env, n.Dest, i64, llvm.ConstInt(i64, uint64(v), true))
	case ir.LoadIntParam:
		store(b, env, n.Dest, i64, fun.Param(*paramIndex))
		*paramIndex++
	case ir.LoadBoolParam:
		store(b, env, n.Dest, i64, fun.Param(*paramIndex))
		*paramIndex++
	case ir.LoadPointerParam:
		store(b, env, n.Dest, ptrTy, fun.Param(*paramIndex))
		*paramIndex++
	case ir.Copy:
		store(b, env, n.Dest, i64, load(b, env, n.Source, i64))
	case ir.CopyPointer:
		ptr := load(b, env, n.Dest, ptrTy)
		val := load(b, env, n.Source, i64)
		b.CreateStore(val, ptr)
	case ir.Call:
		return genCall(b, m, funcs, n, env, i64, ptrTy)
	case ir.Jump:
		b.CreateBr(env.blocks[n.Label.Name])
	case ir.CondJump:
		cond := load(b, env, n.Cond, i64)
		truthy := b.CreateICmp(llvm.IntNE, cond, llvm.ConstInt(i64, 0, false), "")
		b.CreateCondBr(truthy, env.blocks[n.Then.Name], env.blocks[n.Else.Name])
	case ir.ReturnValue:
		if n.Var.Name == ir.Unit.Name {
			b.CreateRet(llvm.ConstInt(i64, 0, true))
		} else {
			b.CreateRet(load(b, env, n.Var, i64))
		}
	default:
		return fmt.Errorf("unhandled instruction %T", in)
	}
	return nil
}

// hasTerminator reports whether the current insert block already ends in a br/ret, to avoid a
// malformed "terminator after terminator" block when a Label immediately follows a Jump/CondJump
// the generator already closed the previous block with.
func hasTerminator(b llvm.Builder) bool {
	last := b.GetInsertBlock().LastInstruction()
	return !last.IsNil() && !last.IsATerminatorInst().IsNil()
}

var arithOp = map[string]func(b llvm.Builder, l, r llvm.Value) llvm.Value{
	"+": func(b llvm.Builder, l, r llvm.Value) llvm.Value { return b.CreateAdd(l, r, "") },
	"-": func(b llvm.Builder, l, r llvm.Value) llvm.Value { return b.CreateSub(l, r, "") },
	"*": func(b llvm.Builder, l, r llvm.Value) llvm.Value { return b.CreateMul(l, r, "") },
	"/": func(b llvm.Builder, l, r llvm.Value) llvm.Value { return b.CreateSDiv(l, r, "") },
	"%": func(b llvm.Builder, l, r llvm.Value) llvm.Value { return b.CreateSRem(l, r, "") },
}

var cmpOp = map[string]llvm.IntPredicate{
	"<":  llvm.IntSLT,
	"<=": llvm.IntSLE,
	">":  llvm.IntSGT,
	">=": llvm.IntSGE,
	"==": llvm.IntEQ,
	"!=": llvm.IntNE,
}

func genCall(
	b llvm.Builder, m llvm.Module, funcs map[string]llvm.Value, n ir.Call, env *funcEnv, i64, ptrTy llvm.Type,
) error {
	name := n.Fun.Name
	if op, ok := arithOp[name]; ok {
		l := load(b, env, n.Args[0], i64)
		r := load(b, env, n.Args[1], i64)
		store(b, env, n.Dest, i64, op(b, l, r))
		return nil
	}
	if pred, ok := cmpOp[name]; ok {
		l := load(b, env, n.Args[0], i64)
		r := load(b, env, n.Args[1], i64)
		cmp := b.CreateICmp(pred, l, r, "")
		store(b, env, n.Dest, i64, b.CreateZExt(cmp, i64, ""))
		return nil
	}
	// "and"/"or" never reach here as a Call: the generator lowers them directly to CondJump/Label
	// (see ir/generate.go's visitShortCircuit), so no case for them is needed in this dispatch.
	switch name {
	case "unary_-":
		v := load(b, env, n.Args[0], i64)
		store(b, env, n.Dest, i64, b.CreateNeg(v, ""))
		return nil
	case "unary_not":
		v := load(b, env, n.Args[0], i64)
		one := llvm.ConstInt(i64, 1, false)
		store(b, env, n.Dest, i64, b.CreateXor(v, one, ""))
		return nil
	case "unary_&":
		store(b, env, n.Dest, ptrTy, slot(b, env, n.Args[0], i64))
		return nil
	case "unary_*":
		p := load(b, env, n.Args[0], ptrTy)
		store(b, env, n.Dest, i64, b.CreateLoad(p, ""))
		return nil
	}

	target, ok := funcs[name]
	if !ok {
		return fmt.Errorf("unknown call target %q", name)
	}
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = load(b, env, a, i64)
	}
	store(b, env, n.Dest, i64, b.CreateCall(target, args, ""))
	return nil
}
