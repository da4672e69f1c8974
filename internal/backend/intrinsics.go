package backend

import "fmt"

// isIntrinsic reports whether name is one of the operator/unary intrinsics the backend lowers
// inline, rather than a user-defined function or a runtime entry point.
func isIntrinsic(name string) bool {
	switch name {
	case "+", "-", "*", "/", "%",
		"<", "<=", ">", ">=", "==", "!=",
		"unary_-", "unary_not", "unary_*", "unary_&":
		return true
	}
	return false
}

// genIntrinsic emits an inline instruction sequence for an operator/unary Call, leaving the
// result in %rax — matching spec.md §4.6's "Intrinsics (indicative)" list. Arithmetic and
// comparison intrinsics load their left operand into %rax before operating, since at most one
// operand of most x86-64 instructions may reference memory.
func genIntrinsic(w *Writer, name string, args []string) error {
	switch name {
	case "+", "-", "*":
		w.Ins2("movq", args[0], "%rax")
		w.Ins2(arithOp[name], args[1], "%rax")
	case "/", "%":
		w.Ins2("movq", args[0], "%rax")
		w.Ins0("cqto")
		w.Ins1("idivq", args[1])
		if name == "%" {
			w.Ins2("movq", "%rdx", "%rax")
		}
	case "<", "<=", ">", ">=", "==", "!=":
		w.Ins2("movq", args[0], "%rax")
		w.Ins2("cmpq", args[1], "%rax")
		w.Ins1(setOp[name], "%al")
		w.Ins2("movzbq", "%al", "%rax")
	case "unary_-":
		w.Ins2("movq", args[0], "%rax")
		w.Ins1("negq", "%rax")
	case "unary_not":
		w.Ins2("movq", args[0], "%rax")
		w.Ins2("xorq", "$1", "%rax")
	case "unary_&":
		w.Ins2("leaq", args[0], "%rax")
	case "unary_*":
		w.Ins2("movq", args[0], "%rax")
		w.Ins2("movq", "(%rax)", "%rax")
	default:
		return fmt.Errorf("backend: %q is not a recognised intrinsic", name)
	}
	return nil
}

var arithOp = map[string]string{"+": "addq", "-": "subq", "*": "imulq"}

var setOp = map[string]string{
	"<": "setl", "<=": "setle", ">": "setg", ">=": "setge", "==": "sete", "!=": "setne",
}
