package cfg

import "github.com/nnecklace/exprc/internal/ir"

// VarSet is a reaching-definitions value: the set of instruction indices that may have last
// defined a variable at some program point. -1 marks an imported/global symbol, -2 marks
// not-yet-defined.
type VarSet map[int]bool

// State maps a variable name to its VarSet at one program point.
type State map[string]VarSet

// Result holds the converged in/out reaching-definitions sets, indexed by each instruction's
// program-wide unique Step.Index.
type Result struct {
	In  map[int]State
	Out map[int]State
}

func singleton(v int) VarSet { return VarSet{v: true} }

func cloneState(s State) State {
	out := make(State, len(s))
	for k, v := range s {
		cv := make(VarSet, len(v))
		for idx := range v {
			cv[idx] = true
		}
		out[k] = cv
	}
	return out
}

func emptyLike(s State) State {
	out := make(State, len(s))
	for k := range s {
		out[k] = VarSet{}
	}
	return out
}

func equalState(a, b State) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for idx := range av {
			if !bv[idx] {
				return false
			}
		}
	}
	return true
}

// definedVar reports the destination variable a defining instruction writes, per spec.md §4.5:
// LoadIntConst, LoadBoolConst, Copy, Call, and any Load*Param all define their Dest.
func definedVar(instr ir.Instruction) (string, bool) {
	v, ok := instr.Defines()
	return v.Name, ok
}

// seedInitialState walks every instruction once, recording -2 ("not yet defined") against every
// variable that is ever defined, used as a Call argument, or tested by a CondJump, and -1
// ("imported") against every function name a Call invokes. This mirrors
// original_source/src/compiler/dataflow.py's DataFlow.set_initial_state.
func seedInitialState(funcs []Function) (State, int) {
	init := State{}
	mark := func(name string, v int) {
		if init[name] == nil {
			init[name] = VarSet{}
		}
		init[name][v] = true
	}

	maxIndex := -1
	for _, f := range funcs {
		for _, blk := range f.Blocks {
			for _, step := range blk.Steps {
				if step.Index > maxIndex {
					maxIndex = step.Index
				}
				switch t := step.Instruction.(type) {
				case ir.LoadBoolConst:
					mark(t.Dest.Name, -2)
				case ir.LoadIntConst:
					mark(t.Dest.Name, -2)
				case ir.Copy:
					mark(t.Source.Name, -2)
					mark(t.Dest.Name, -2)
				case ir.Call:
					mark(t.Fun.Name, -1)
					for _, a := range t.Args {
						mark(a.Name, -2)
					}
					mark(t.Dest.Name, -2)
				case ir.CondJump:
					mark(t.Cond.Name, -2)
				case ir.LoadIntParam:
					mark(t.Symbol.Name, -2)
					mark(t.Dest.Name, -2)
				case ir.LoadBoolParam:
					mark(t.Symbol.Name, -2)
					mark(t.Dest.Name, -2)
				case ir.LoadPointerParam:
					mark(t.Symbol.Name, -2)
					mark(t.Dest.Name, -2)
				}
			}
		}
	}
	return init, maxIndex
}

// jumpTargets maps a label name to the indices of every Jump/CondJump step that targets it,
// across the whole program — used to find a Label's predecessors when merging.
func jumpTargets(funcs []Function) map[string][]int {
	targets := make(map[string][]int)
	for _, f := range funcs {
		for _, blk := range f.Blocks {
			last := blk.Steps[len(blk.Steps)-1]
			switch t := last.Instruction.(type) {
			case ir.Jump:
				targets[t.Label.Name] = append(targets[t.Label.Name], last.Index)
			case ir.CondJump:
				targets[t.Then.Name] = append(targets[t.Then.Name], last.Index)
				targets[t.Else.Name] = append(targets[t.Else.Name], last.Index)
			}
		}
	}
	return targets
}

func mergeOut(out map[int]State, jumps []int) State {
	merged := State{}
	for _, j := range jumps {
		for k, v := range out[j] {
			if merged[k] == nil {
				merged[k] = VarSet{}
			}
			for idx := range v {
				merged[k][idx] = true
			}
		}
	}
	return merged
}

// transfer computes out[index] from in[index]: a defining instruction's Dest reaches only from
// index itself; every other variable's reaching set is unchanged (spec.md §4.5).
func transfer(in State, index int, instr ir.Instruction) State {
	out := cloneState(in)
	if dest, ok := definedVar(instr); ok {
		out[dest] = singleton(index)
	}
	return out
}

// Analyze runs the reaching-definitions dataflow analysis to a fixed point over funcs (the output
// of Partition). It repeatedly walks every instruction in program order, merging at each Label the
// out sets of every jump to it and of the preceding block when that block falls through into it,
// and applying transfer, until a full pass changes nothing — equivalent to
// original_source/src/compiler/dataflow.py's DataFlow.compute, with its per-instruction
// change-log bookkeeping (an iteration-count optimization, not part of the result) replaced by a
// plain whole-pass dirty flag.
func Analyze(funcs []Function) Result {
	init, maxIndex := seedInitialState(funcs)
	jumps := jumpTargets(funcs)

	in := make(map[int]State, maxIndex+1)
	out := make(map[int]State, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		in[i] = emptyLike(init)
		out[i] = emptyLike(init)
	}
	in[0] = cloneState(init)

	for {
		changed := false
		for _, f := range funcs {
			for bi, blk := range f.Blocks {
				for pos, step := range blk.Steps {
					idx := step.Index
					if lbl, isLabel := step.Instruction.(ir.Label); isLabel {
						preds := jumps[lbl.Name.Name]
						if pos == 0 && bi > 0 {
							prev := f.Blocks[bi-1].Steps
							last := prev[len(prev)-1]
							switch last.Instruction.(type) {
							case ir.Jump, ir.CondJump:
							default:
								preds = append(append([]int(nil), preds...), last.Index)
							}
						}
						if len(preds) > 0 {
							merged := mergeOut(out, preds)
							if !equalState(in[idx], merged) {
								in[idx] = merged
								changed = true
							}
						}
					}

					newOut := transfer(in[idx], idx, step.Instruction)
					if !equalState(out[idx], newOut) {
						out[idx] = newOut
						changed = true
					}

					if pos+1 < len(blk.Steps) {
						nextIdx := blk.Steps[pos+1].Index
						if !equalState(in[nextIdx], out[idx]) {
							in[nextIdx] = cloneState(out[idx])
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	return Result{In: in, Out: out}
}
