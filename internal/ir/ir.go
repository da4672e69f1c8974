// Package ir implements the three-address intermediate representation the type-checked AST is
// lowered to, and the generator that produces it.
//
// The instruction set (Variable plus the closed set of Instruction variants) is grounded directly
// on original_source/src/compiler/ir_generator.py's imports from compiler.ir (IRVar,
// LoadIntConst, LoadBoolConst, LoadIntParam, LoadBoolParam, LoadPointerParam, Copy, CopyPointer,
// Call, Jump, CondJump, Label, ReturnValue — that module itself was not part of the retrieved
// original sources, but every one of its exported names and call shapes is pinned down by its
// callers). The polymorphic Instruction interface mirrors the teacher's
// internal/ir/lir.Value interface (hhramberg-go-vslc/src/ir/lir/value.go): a small common surface
// — here, Location, Defines and String — backing a closed set of concrete instruction structs.
package ir

import (
	"strconv"

	"github.com/nnecklace/exprc/internal/ast"
)

// Variable is an IR name: a global (an operator symbol like "+", or a runtime/user function name)
// or a generated local ("x1", "x2", …, in generation order) or a label ("while_start1", …).
type Variable struct {
	Name string
}

func (v Variable) String() string { return v.Name }

// Unit is the single shared variable standing in for the Unit value everywhere it is produced.
var Unit = Variable{Name: "unit"}

// Instruction is implemented by every IR instruction variant.
type Instruction interface {
	Location() ast.Location
	// Defines reports the variable this instruction assigns a fresh value to, if any — the
	// dataflow analysis in internal/cfg uses this to build its reaching-definitions transfer
	// function without re-deriving the set of defining instruction kinds itself.
	Defines() (Variable, bool)
	String() string
}

type base struct {
	Loc ast.Location
}

func (b base) Location() ast.Location       { return b.Loc }
func (b base) Defines() (Variable, bool)    { return Variable{}, false }

// LoadIntConst loads an Int literal into Dest.
type LoadIntConst struct {
	base
	Value int64
	Dest  Variable
}

func (i LoadIntConst) String() string {
	return "LoadIntConst(" + strconv.FormatInt(i.Value, 10) + ", " + i.Dest.Name + ")"
}

func (i LoadIntConst) Defines() (Variable, bool) { return i.Dest, true }

// LoadBoolConst loads a Bool literal into Dest.
type LoadBoolConst struct {
	base
	Value bool
	Dest  Variable
}

func (i LoadBoolConst) String() string {
	return "LoadBoolConst(" + boolName(i.Value) + ", " + i.Dest.Name + ")"
}

func (i LoadBoolConst) Defines() (Variable, bool) { return i.Dest, true }

// LoadIntParam copies the Int-valued parameter Symbol into Dest at function entry.
type LoadIntParam struct {
	base
	Symbol Variable
	Dest   Variable
}

func (i LoadIntParam) String() string { return "LoadIntParam(" + i.Symbol.Name + ", " + i.Dest.Name + ")" }

func (i LoadIntParam) Defines() (Variable, bool) { return i.Dest, true }

// LoadBoolParam copies the Bool-valued parameter Symbol into Dest at function entry.
type LoadBoolParam struct {
	base
	Symbol Variable
	Dest   Variable
}

func (i LoadBoolParam) String() string {
	return "LoadBoolParam(" + i.Symbol.Name + ", " + i.Dest.Name + ")"
}

func (i LoadBoolParam) Defines() (Variable, bool) { return i.Dest, true }

// LoadPointerParam copies the pointer-valued parameter Symbol into Dest at function entry.
type LoadPointerParam struct {
	base
	Symbol Variable
	Dest   Variable
}

func (i LoadPointerParam) String() string {
	return "LoadPointerParam(" + i.Symbol.Name + ", " + i.Dest.Name + ")"
}

func (i LoadPointerParam) Defines() (Variable, bool) { return i.Dest, true }

// Copy moves the value of Source into Dest.
type Copy struct {
	base
	Source Variable
	Dest   Variable
}

func (i Copy) String() string { return "Copy(" + i.Source.Name + ", " + i.Dest.Name + ")" }

func (i Copy) Defines() (Variable, bool) { return i.Dest, true }

// CopyPointer stores Source through the pointer held in Dest.
type CopyPointer struct {
	base
	Source Variable
	Dest   Variable
}

func (i CopyPointer) String() string {
	return "CopyPointer(" + i.Source.Name + ", " + i.Dest.Name + ")"
}

// Call applies Fun (an operator symbol, intrinsic, runtime function, or user function) to Args,
// storing the result in Dest.
type Call struct {
	base
	Fun  Variable
	Args []Variable
	Dest Variable
}

func (i Call) String() string {
	s := "Call(" + i.Fun.Name + ", ["
	for idx, a := range i.Args {
		if idx > 0 {
			s += ", "
		}
		s += a.Name
	}
	return s + "], " + i.Dest.Name + ")"
}

func (i Call) Defines() (Variable, bool) { return i.Dest, true }

// Jump transfers control unconditionally to Label.
type Jump struct {
	base
	Label Variable
}

func (i Jump) String() string { return "Jump(" + i.Label.Name + ")" }

// CondJump transfers control to Then if Cond is non-zero, otherwise to Else.
type CondJump struct {
	base
	Cond Variable
	Then Variable
	Else Variable
}

func (i CondJump) String() string {
	return "CondJump(" + i.Cond.Name + ", " + i.Then.Name + ", " + i.Else.Name + ")"
}

// Label marks a jump target. Name carries the label's own identity (it is not itself a dest).
type Label struct {
	base
	Name Variable
}

func (i Label) String() string { return "Label(" + i.Name.Name + ")" }

// ReturnValue terminates a function body, yielding Var as the function's result.
type ReturnValue struct {
	base
	Var Variable
}

func (i ReturnValue) String() string { return "ReturnValue(" + i.Var.Name + ")" }

func boolName(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
