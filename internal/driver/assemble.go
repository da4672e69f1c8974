package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nnecklace/exprc/internal/util"
)

// Assemble writes asm (the program's generated listing) and the runtime stub to temporary .s
// files, then invokes the system's cc to assemble and link them into outPath. Grounded on
// j-alexander3375-Lotus/src/compiler.go's buildBinary: a temp-file-then-exec.Command("gcc", ...)
// shape, CombinedOutput surfaced on failure so a cc diagnostic reaches the caller verbatim, and the
// temp files cleaned up with defer regardless of outcome.
func Assemble(asm, outPath string, log *util.Logger) error {
	dir, err := os.MkdirTemp("", "exprc-asm-*")
	if err != nil {
		return fmt.Errorf("could not create temporary build directory: %w", err)
	}
	defer os.RemoveAll(dir)

	progPath := filepath.Join(dir, "program.s")
	if err := os.WriteFile(progPath, []byte(asm), 0644); err != nil {
		return fmt.Errorf("could not write generated assembly: %w", err)
	}
	runtimePath := filepath.Join(dir, "runtime.s")
	if err := os.WriteFile(runtimePath, []byte(RuntimeStub()), 0644); err != nil {
		return fmt.Errorf("could not write runtime stub: %w", err)
	}

	cmd := exec.Command("cc", "-no-pie", "-o", outPath, progPath, runtimePath)
	log.Printf("assembling: %s\n", cmd.String())

	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("assembler/linker failed:\n%s", out)
		}
		return fmt.Errorf("assembler/linker failed: %w", err)
	}
	return nil
}
