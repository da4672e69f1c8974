package backend

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ir"
)

// locals assigns every non-global IR variable used by one function body a unique stack slot,
// in first-seen order, matching original_source/src/compiler/assembly_generator.py's Locals
// class. Go's static instruction types let this walk each instruction's operands directly by
// type switch rather than the original's generic dataclass-field reflection.
type locals struct {
	slot      map[string]string // variable name -> "-8(%rbp)" style operand text.
	stackUsed int               // bytes of stack space the locals occupy, 8-byte slots.
}

func newLocals(instrs []ir.Instruction, globals map[string]bool) *locals {
	l := &locals{slot: map[string]string{}}
	next := -8
	add := func(name string) {
		if name == "" || name == ir.Unit.Name || globals[name] {
			return
		}
		if _, ok := l.slot[name]; ok {
			return
		}
		l.slot[name] = fmt.Sprintf("%d(%%rbp)", next)
		next -= 8
	}

	for _, instr := range instrs {
		for _, v := range operands(instr) {
			add(v)
		}
	}
	l.stackUsed = -1*next - 8
	return l
}

// ref returns the assembly operand text for a variable: its stack slot, or the literal immediate
// 0 for the distinguished Unit value, which never occupies a slot.
func (l *locals) ref(name string) string {
	if name == ir.Unit.Name {
		return "$0"
	}
	if r, ok := l.slot[name]; ok {
		return r
	}
	return name
}

// operands lists every IR variable name an instruction reads or writes, in the instruction's own
// field order, so locals are discovered in the same order the original generator's field-walk
// would see them.
func operands(instr ir.Instruction) []string {
	switch t := instr.(type) {
	case ir.LoadIntConst:
		return []string{t.Dest.Name}
	case ir.LoadBoolConst:
		return []string{t.Dest.Name}
	case ir.LoadIntParam:
		return []string{t.Symbol.Name, t.Dest.Name}
	case ir.LoadBoolParam:
		return []string{t.Symbol.Name, t.Dest.Name}
	case ir.LoadPointerParam:
		return []string{t.Symbol.Name, t.Dest.Name}
	case ir.Copy:
		return []string{t.Source.Name, t.Dest.Name}
	case ir.CopyPointer:
		return []string{t.Source.Name, t.Dest.Name}
	case ir.Call:
		names := make([]string, 0, len(t.Args)+2)
		names = append(names, t.Fun.Name)
		for _, a := range t.Args {
			names = append(names, a.Name)
		}
		names = append(names, t.Dest.Name)
		return names
	case ir.CondJump:
		return []string{t.Cond.Name}
	default:
		// Jump, Label, ReturnValue reference only labels or a variable that is never itself
		// assigned a fresh stack slot here (ReturnValue's Var was already slotted by whichever
		// instruction produced it).
		return nil
	}
}
