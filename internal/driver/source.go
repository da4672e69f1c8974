// Package driver wires the core pipeline (frontend, check, ir, backend, interp) to the outside
// world: reading source from a file or stdin, and invoking an external assembler/linker to turn a
// generated assembly listing into a runnable binary. This is the out-of-core-scope collaborator
// spec.md names as existing outside the pipeline proper; it stays intentionally thin, grounded on
// original_source/src/compiler/__main__.py's read_source_code (file-path-or-stdin) and
// hhramberg-go-vslc/src/util/io.go's ReadSource for the same fallback shape.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ReadSource reads program text from path, or from stdin if path is empty. Unlike
// hhramberg-go-vslc/src/util/io.go's ReadSource, which races a 500ms timer against a stdin read in
// a goroutine (a concurrency artefact spec.md §5 explicitly drops for the core pipeline), this
// blocks on stdin directly: there is no worker pool here to keep responsive, and a CLI invoked
// with input piped in should simply wait for EOF.
func ReadSource(path string) (string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("could not read source file %q: %w", path, err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", fmt.Errorf("could not read standard input: %w", err)
	}
	return string(b), nil
}
