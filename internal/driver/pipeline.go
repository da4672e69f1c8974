package driver

import (
	"fmt"

	"github.com/nnecklace/exprc/internal/ast"
	"github.com/nnecklace/exprc/internal/backend"
	"github.com/nnecklace/exprc/internal/check"
	"github.com/nnecklace/exprc/internal/frontend"
	"github.com/nnecklace/exprc/internal/ir"
)

// ParseAndCheck runs the frontend and type checker over src, the shared prefix of every
// subcommand past "parse": tokenize, parse, then type-check and annotate the resulting tree in
// place. file names the source for error locations, following frontend.Parse's own signature.
func ParseAndCheck(file, src string) (*ast.Module, error) {
	mod, err := frontend.Parse(file, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := check.New().Check(mod); err != nil {
		return nil, fmt.Errorf("type error: %w", err)
	}
	return mod, nil
}

// GenerateIR runs ParseAndCheck then lowers the result to IR.
func GenerateIR(file, src string) (*ir.Program, error) {
	mod, err := ParseAndCheck(file, src)
	if err != nil {
		return nil, err
	}
	prog, err := ir.Generate(mod)
	if err != nil {
		return nil, fmt.Errorf("code generation error: %w", err)
	}
	return prog, nil
}

// GenerateAssembly runs GenerateIR then lowers the result to an AT&T assembly listing.
func GenerateAssembly(file, src string) (string, error) {
	prog, err := GenerateIR(file, src)
	if err != nil {
		return "", err
	}
	asm, err := backend.Generate(prog)
	if err != nil {
		return "", fmt.Errorf("assembly generation error: %w", err)
	}
	return asm, nil
}
