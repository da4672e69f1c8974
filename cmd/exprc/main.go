// Command exprc is the compiler's CLI entry point: it dispatches one of a fixed set of
// subcommands, each reading source from an optional file argument or standard input. Grounded on
// original_source/src/compiler/__main__.py's command/input_file argument shape (a leading verb,
// then an optional path, "-h"/"--help" printing usage and exiting 0) rather than
// hhramberg-go-vslc/src/util/args.go's flag-heavy ParseArgs, since spec.md §6 itself specifies a
// subcommand-plus-optional-file surface, not a flag-driven one; the plain fmt.Errorf-and-exit-1
// error propagation at the bottom of main does follow the teacher's own src/main.go shape.
package main

import (
	"fmt"
	"os"

	"github.com/nnecklace/exprc/internal/cfg"
	"github.com/nnecklace/exprc/internal/driver"
	"github.com/nnecklace/exprc/internal/frontend"
	"github.com/nnecklace/exprc/internal/interp"
	"github.com/nnecklace/exprc/internal/llvmir"
	"github.com/nnecklace/exprc/internal/util"
)

const usage = `Usage: exprc <command> [source_file]

Commands:
  interpret   evaluate and print the module's final value
  parse       tokenize and parse only, printing the syntax tree
  tc          tokenize/parse/typecheck, printing the decorated syntax tree
  ir          print the per-function instruction map
  flowgraph   print basic blocks and their edges
  dataflow    print the computed in/out reaching-definitions
  asm         print the assembly listing
  compile     produce an executable "out" via the external assembler
  llvmir      print the LLVM IR lowering (non-core, for inspection)

source_file defaults to standard input if omitted.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var command, path string
	for _, a := range args {
		switch {
		case a == "-h" || a == "--help":
			fmt.Print(usage)
			os.Exit(0)
		case command == "":
			command = a
		case path == "":
			path = a
		default:
			return fmt.Errorf("unexpected extra argument: %s", a)
		}
	}
	if command == "" {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("command argument missing")
	}

	handler, ok := commands[command]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}

	src, err := driver.ReadSource(path)
	if err != nil {
		return err
	}
	file := path
	if file == "" {
		file = "<stdin>"
	}
	return handler(file, src)
}

var commands = map[string]func(file, src string) error{
	"interpret": cmdInterpret,
	"parse":     cmdParse,
	"tc":        cmdTypecheck,
	"ir":        cmdIR,
	"flowgraph": cmdFlowgraph,
	"dataflow":  cmdDataflow,
	"asm":       cmdAsm,
	"compile":   cmdCompile,
	"llvmir":    cmdLLVMIR,
}

func cmdInterpret(file, src string) error {
	mod, err := driver.ParseAndCheck(file, src)
	if err != nil {
		return err
	}
	v, err := interp.New(os.Stdout, os.Stdin).Eval(mod)
	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	fmt.Println(v)
	return nil
}

func cmdParse(file, src string) error {
	mod, err := frontend.Parse(file, src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	mod.Dump(os.Stdout)
	return nil
}

func cmdTypecheck(file, src string) error {
	mod, err := driver.ParseAndCheck(file, src)
	if err != nil {
		return err
	}
	mod.Dump(os.Stdout)
	return nil
}

func cmdIR(file, src string) error {
	prog, err := driver.GenerateIR(file, src)
	if err != nil {
		return err
	}
	for _, name := range prog.Order {
		fmt.Printf("function %s:\n", name)
		for _, instr := range prog.Functions[name] {
			fmt.Printf("  %s\n", instr)
		}
	}
	return nil
}

func cmdFlowgraph(file, src string) error {
	prog, err := driver.GenerateIR(file, src)
	if err != nil {
		return err
	}
	funcs := cfg.Partition(prog)
	graph := cfg.BuildGraph(funcs)
	for _, f := range funcs {
		fmt.Printf("function %s:\n", f.Name)
		for _, block := range f.Blocks {
			key := block.Key()
			label := block.Label()
			if label == "" {
				label = "<unlabeled>"
			}
			fmt.Printf("  block %s (%d) -> %v\n", label, key, graph.Edges[key])
		}
	}
	return nil
}

func cmdDataflow(file, src string) error {
	prog, err := driver.GenerateIR(file, src)
	if err != nil {
		return err
	}
	funcs := cfg.Partition(prog)
	result := cfg.Analyze(funcs)
	for _, f := range funcs {
		fmt.Printf("function %s:\n", f.Name)
		for _, block := range f.Blocks {
			for _, step := range block.Steps {
				fmt.Printf("  [%d] %s\n", step.Index, step.Instruction)
				fmt.Printf("      in:  %v\n", result.In[step.Index])
				fmt.Printf("      out: %v\n", result.Out[step.Index])
			}
		}
	}
	return nil
}

func cmdAsm(file, src string) error {
	asm, err := driver.GenerateAssembly(file, src)
	if err != nil {
		return err
	}
	fmt.Print(asm)
	return nil
}

func cmdCompile(file, src string) error {
	asm, err := driver.GenerateAssembly(file, src)
	if err != nil {
		return err
	}
	log := util.NewLogger(os.Stderr, os.Getenv("EXPRC_VERBOSE") != "")
	return driver.Assemble(asm, "out", log)
}

func cmdLLVMIR(file, src string) error {
	prog, err := driver.GenerateIR(file, src)
	if err != nil {
		return err
	}
	out, err := llvmir.Generate(prog)
	if err != nil {
		return fmt.Errorf("llvm lowering error: %w", err)
	}
	fmt.Print(out)
	return nil
}
