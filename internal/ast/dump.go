package ast

import (
	"fmt"
	"io"
)

// Dump recursively prints mod and every expression it contains, indenting one level per nesting
// depth, mirroring hhramberg-go-vslc/src/ir/nodetype.go's Node.Print(depth, showDepth): a
// one-line-per-node textual dump rather than a structured format, since this output is for human
// inspection (cmd/exprc's parse/tc subcommands) and is never parsed back in.
func (m *Module) Dump(w io.Writer) {
	fmt.Fprintf(w, "Module(%s)\n", m.Namespace)
	for _, e := range m.Expressions {
		dump(w, e, 1)
	}
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
}

func dump(w io.Writer, e Expression, depth int) {
	indent(w, depth)
	switch n := e.(type) {
	case *Literal:
		fmt.Fprintf(w, "Literal(%s) : %s\n", literalText(n.Value), n.GetType())
	case *Identifier:
		fmt.Fprintf(w, "Identifier(%s) : %s\n", n.Name, n.GetType())
	case *UnaryOp:
		fmt.Fprintf(w, "UnaryOp(%s) : %s\n", n.Op, n.GetType())
		dump(w, n.Right, depth+1)
	case *BinaryOp:
		fmt.Fprintf(w, "BinaryOp(%s) : %s\n", n.Op, n.GetType())
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *IfThenElse:
		fmt.Fprintf(w, "IfThenElse : %s\n", n.GetType())
		dump(w, n.Cond, depth+1)
		dump(w, n.Then, depth+1)
		if n.Otherwise != nil {
			dump(w, n.Otherwise, depth+1)
		}
	case *While:
		fmt.Fprintf(w, "While : %s\n", n.GetType())
		dump(w, n.Cond, depth+1)
		dump(w, n.Body, depth+1)
	case *Var:
		fmt.Fprintf(w, "Var(%s) : %s\n", n.Name.Name, n.GetType())
		dump(w, n.Initialization, depth+1)
	case *Block:
		fmt.Fprintf(w, "Block : %s\n", n.GetType())
		for _, s := range n.Statements {
			dump(w, s, depth+1)
		}
	case *FuncCall:
		fmt.Fprintf(w, "FuncCall(%s) : %s\n", n.Name.Name, n.GetType())
		for _, a := range n.Args {
			dump(w, a, depth+1)
		}
	case *FuncDef:
		fmt.Fprintf(w, "FuncDef(%s) : %s\n", n.Name, n.GetType())
		for _, a := range n.Args {
			indent(w, depth+1)
			fmt.Fprintf(w, "Argument(%s) : %s\n", a.Name, a.DeclaredType)
		}
		dump(w, n.Body, depth+1)
	case *BreakContinue:
		fmt.Fprintf(w, "BreakContinue(%s)\n", n.Name)
	default:
		fmt.Fprintf(w, "%T\n", e)
	}
}

func literalText(v LiteralValue) string {
	switch {
	case v.IsInt:
		return fmt.Sprintf("%d", v.Int)
	case v.IsBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "unit"
	}
}
