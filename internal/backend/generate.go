package backend

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ir"
)

// paramRegs holds the System V integer/pointer argument registers, in order; the seventh and
// later arguments are read from the caller's stack frame instead.
var paramRegs = []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// Generate lowers prog into a single AT&T-syntax assembly text blob: an extern/global prelude
// followed by one emitted body per function, in prog.Order. Grounded on
// original_source/src/compiler/assembly_generator.py's generate_assembly (the prelude shape, the
// per-instruction emission rules, the Locals-slot scheme) and on the teacher's
// src/backend/arm/function.go (compute-frame-size, emit-prologue, walk-body, emit-epilogue
// structure, adapted from AArch64 stp/ldp framing to x86-64 pushq/popq %rbp framing).
func Generate(prog *ir.Program) (string, error) {
	w := &Writer{}
	w.Write(".extern print_int")
	w.Write(".extern print_bool")
	w.Write(".extern read_int")
	for _, name := range prog.Order {
		w.Write(".global %s", name)
		w.Write(".type %s, @function", name)
	}
	w.Blank()
	w.WriteString(".section .text")

	globals := globalSet(prog)
	for _, name := range prog.Order {
		if err := genFunction(w, name, prog.Functions[name], globals); err != nil {
			return "", fmt.Errorf("function %s: %w", name, err)
		}
	}
	return w.String(), nil
}

// globalSet lists every identifier that must never be treated as a local needing a stack slot:
// the operator/unary intrinsics, the runtime entry points, and every user-defined function name
// in the program (a Call's Fun referencing a sibling function is not itself a local variable).
func globalSet(prog *ir.Program) map[string]bool {
	g := map[string]bool{
		"+": true, "-": true, "*": true, "/": true, "%": true,
		"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
		"and": true, "or": true,
		"unary_-": true, "unary_not": true, "unary_*": true, "unary_&": true,
		"print_int": true, "print_bool": true, "read_int": true,
	}
	for _, name := range prog.Order {
		g[name] = true
	}
	return g
}

func genFunction(w *Writer, name string, instrs []ir.Instruction, globals map[string]bool) error {
	if len(instrs) == 0 {
		return fmt.Errorf("function has no instructions")
	}
	entry, ok := instrs[0].(ir.Label)
	if !ok || entry.Name.Name != "Start_"+name {
		return fmt.Errorf("expected the first instruction to be Label(Start_%s), got %s", name, instrs[0])
	}

	loc := newLocals(instrs, globals)

	w.Blank()
	w.Label(name)
	w.Ins1("pushq", "%rbp")
	w.Ins2("movq", "%rsp", "%rbp")
	if loc.stackUsed > 0 {
		w.Ins2("subq", fmt.Sprintf("$%d", loc.stackUsed), "%rsp")
	}

	paramIndex := 0
	for _, instr := range instrs[1:] {
		if err := genInstruction(w, name, instr, loc, &paramIndex); err != nil {
			return err
		}
	}

	w.Ins2("movq", "%rbp", "%rsp")
	w.Ins1("popq", "%rbp")
	w.Ins0("ret")
	return nil
}

func localLabel(fn, name string) string { return ".L" + fn + "_" + name }

func genInstruction(w *Writer, fn string, instr ir.Instruction, loc *locals, paramIndex *int) error {
	switch t := instr.(type) {
	case ir.Label:
		w.Label(localLabel(fn, t.Name.Name))

	case ir.LoadBoolConst:
		v := 0
		if t.Value {
			v = 1
		}
		w.Ins2("movq", fmt.Sprintf("$%d", v), loc.ref(t.Dest.Name))

	case ir.LoadIntConst:
		const min32, max32 = -(1 << 31), (1 << 31) - 1
		if t.Value >= min32 && t.Value <= max32 {
			w.Ins2("movq", fmt.Sprintf("$%d", t.Value), loc.ref(t.Dest.Name))
		} else {
			w.Ins2("movabsq", fmt.Sprintf("$%d", t.Value), "%rax")
			w.Ins2("movq", "%rax", loc.ref(t.Dest.Name))
		}

	case ir.Copy:
		w.Ins2("movq", loc.ref(t.Source.Name), "%rax")
		w.Ins2("movq", "%rax", loc.ref(t.Dest.Name))

	case ir.CopyPointer:
		w.Ins2("movq", loc.ref(t.Source.Name), "%rax")
		w.Ins2("movq", loc.ref(t.Dest.Name), "%rbx")
		w.Ins2("movq", "%rax", "(%rbx)")

	case ir.Jump:
		w.Ins1("jmp", localLabel(fn, t.Label.Name))

	case ir.CondJump:
		w.Ins2("cmpq", "$0", loc.ref(t.Cond.Name))
		w.Ins1("jne", localLabel(fn, t.Then.Name))
		w.Ins1("jmp", localLabel(fn, t.Else.Name))

	case ir.LoadIntParam:
		genLoadParam(w, loc, t.Dest.Name, *paramIndex)
		*paramIndex++
	case ir.LoadBoolParam:
		genLoadParam(w, loc, t.Dest.Name, *paramIndex)
		*paramIndex++
	case ir.LoadPointerParam:
		genLoadParam(w, loc, t.Dest.Name, *paramIndex)
		*paramIndex++

	case ir.Call:
		if err := genCall(w, t, loc); err != nil {
			return err
		}

	case ir.ReturnValue:
		if fn == "main" {
			w.Ins2("movq", "$0", "%rax")
		} else {
			w.Ins2("movq", loc.ref(t.Var.Name), "%rax")
		}

	default:
		return fmt.Errorf("unhandled instruction %s", instr)
	}
	return nil
}

// genLoadParam reads the k'th function parameter: from the System V argument register if k < 6,
// otherwise from the caller's stack frame at 16(%rbp), 24(%rbp), … — spec.md §4.6's single
// counter shared across every Load*Param in the function body, regardless of parameter type.
func genLoadParam(w *Writer, loc *locals, dest string, k int) {
	var src string
	if k < len(paramRegs) {
		src = paramRegs[k]
	} else {
		src = fmt.Sprintf("%d(%%rbp)", 16+8*(k-len(paramRegs)))
	}
	w.Ins2("movq", src, loc.ref(dest))
}

func genCall(w *Writer, c ir.Call, loc *locals) error {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = loc.ref(a.Name)
	}

	switch {
	case isIntrinsic(c.Fun.Name):
		if err := genIntrinsic(w, c.Fun.Name, args); err != nil {
			return err
		}
	case c.Fun.Name == "print_int" || c.Fun.Name == "print_bool":
		w.Ins2("movq", args[0], "%rdi")
		w.Ins1("callq", c.Fun.Name)
	case c.Fun.Name == "read_int":
		w.Ins1("callq", "read_int")
	default:
		genUserCall(w, c.Fun.Name, args)
	}

	w.Ins2("movq", "%rax", loc.ref(c.Dest.Name))
	return nil
}

// genUserCall moves the first six arguments into parameter registers, pushes any remaining
// arguments right-to-left on the stack, calls the function, then restores the stack pointer.
func genUserCall(w *Writer, fn string, args []string) {
	regArgs := args
	var extra []string
	if len(args) > len(paramRegs) {
		regArgs = args[:len(paramRegs)]
		extra = args[len(paramRegs):]
	}
	for i, a := range regArgs {
		w.Ins2("movq", a, paramRegs[i])
	}
	for i := len(extra) - 1; i >= 0; i-- {
		w.Ins1("pushq", extra[i])
	}
	w.Ins1("callq", fn)
	if len(extra) > 0 {
		w.Ins2("addq", fmt.Sprintf("$%d", 8*len(extra)), "%rsp")
	}
}
