// Package cfg partitions per-function IR instruction streams into basic blocks, builds the
// control-flow graph between them, and runs a reaching-definitions dataflow analysis over the
// whole program.
//
// Every algorithm here is a direct port of original_source/src/compiler/dataflow.py
// (generate_blocks, generate_flow_graph, and the DataFlow class): a single globally unique
// instruction index shared across all functions, the -1/-2 sentinels for imported globals and
// not-yet-defined variables, and the Label-triggered merge-of-predecessors fixed-point loop.
// This is purely an analysis artefact per spec.md §4.5 — the backend does not consume it.
package cfg

import "github.com/nnecklace/exprc/internal/ir"

// Step pairs an instruction with its program-wide unique index, the dataflow analysis's time
// coordinate.
type Step struct {
	Instruction ir.Instruction
	Index       int
}

// Block is a maximal straight-line run of steps: it opens at a Label, at the start of a function,
// or right after a Jump/CondJump, and closes after a Jump/CondJump, just before a Label, or at the
// end of the function's instruction list.
type Block struct {
	Steps []Step
}

// Label reports the block's entry label name, or "" when the block does not begin with a Label.
// Most blocks do, because every function body opens with Start_<name> and most block boundaries
// are opened by a Label. Dead-code blocks that follow an unconditional Jump (for example the
// unreachable tail after a break/continue inside an if/else arm) do not start with a Label at
// all, so this can legitimately report "" — Key, not Label, is what must be used to identify a
// block.
func (b Block) Label() string {
	if len(b.Steps) == 0 {
		return ""
	}
	if l, ok := b.Steps[0].Instruction.(ir.Label); ok {
		return l.Name.Name
	}
	return ""
}

// Key returns the block's globally unique identifier: the program-wide index of its first step.
// Unlike Label, this is never empty or ambiguous, so it is what Graph uses to key blocks and
// edges — two unlabeled dead-code blocks in the same function would otherwise both report
// Label()=="" and collide in a map keyed by label.
func (b Block) Key() int {
	if len(b.Steps) == 0 {
		return -1
	}
	return b.Steps[0].Index
}

// Function is one function's block partition, in textual order.
type Function struct {
	Name   string
	Blocks []Block
}

// Partition splits prog's instruction streams into basic blocks, assigning a single globally
// unique index to every instruction across every function (this shared numbering is what lets
// the dataflow analysis below treat the whole program as one index space, exactly as
// original_source/src/compiler/dataflow.py's generate_blocks does).
func Partition(prog *ir.Program) []Function {
	var funcs []Function
	index := 0
	for _, name := range prog.Order {
		instrs := prog.Functions[name]
		f := Function{Name: name}
		var block Block
		for _, instruction := range instrs {
			if _, isLabel := instruction.(ir.Label); isLabel && len(block.Steps) > 0 {
				f.Blocks = append(f.Blocks, block)
				block = Block{}
			}
			block.Steps = append(block.Steps, Step{Instruction: instruction, Index: index})
			index++
			switch instruction.(type) {
			case ir.Jump, ir.CondJump:
				f.Blocks = append(f.Blocks, block)
				block = Block{}
			}
		}
		if len(block.Steps) > 0 {
			f.Blocks = append(f.Blocks, block)
		}
		funcs = append(funcs, f)
	}
	return funcs
}

// Graph is the control-flow graph over every basic block in the program, keyed by each block's
// Key (its first step's globally unique index) rather than its entry label, since dead-code
// blocks with no Label of their own are still distinct blocks that need distinct map entries.
type Graph struct {
	Blocks map[int]Block
	// Edges maps a block's Key to the Keys of its successors, in edge order (Jump/CondJump's own
	// target order, or the single fall-through successor).
	Edges map[int][]int
}

// BuildGraph computes the flow graph over funcs: outgoing edges are a terminating Jump's target,
// both targets of a terminating CondJump, or — absent either — the next block in textual order.
func BuildGraph(funcs []Function) Graph {
	g := Graph{Blocks: make(map[int]Block), Edges: make(map[int][]int)}

	byLabel := make(map[string]int)
	for _, f := range funcs {
		for _, block := range f.Blocks {
			if l := block.Label(); l != "" {
				byLabel[l] = block.Key()
			}
		}
	}

	for _, f := range funcs {
		for i, block := range f.Blocks {
			key := block.Key()
			g.Blocks[key] = block
			last := block.Steps[len(block.Steps)-1].Instruction
			switch term := last.(type) {
			case ir.Jump:
				g.Edges[key] = []int{byLabel[term.Label.Name]}
			case ir.CondJump:
				g.Edges[key] = []int{byLabel[term.Then.Name], byLabel[term.Else.Name]}
			default:
				if i+1 < len(f.Blocks) {
					g.Edges[key] = []int{f.Blocks[i+1].Key()}
				} else {
					g.Edges[key] = nil
				}
			}
		}
	}
	return g
}
