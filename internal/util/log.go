// Package util holds the ambient stack shared by the driver and CLI: a verbose-print gate and
// error formatting conventions, grounded on hhramberg-go-vslc/src/util/args.go's Verbose field and
// src/main.go's verbose-print branch. The teacher carries no structured-logging or error-wrapping
// library anywhere in its own tree, so this package follows it exactly rather than reaching past it
// for an unrelated dependency: plain fmt.Errorf/fmt.Fprintf, gated by a bool.
package util

import (
	"fmt"
	"io"
)

// Logger gates diagnostic output behind Verbose, mirroring how src/main.go only calls
// ir.Root.Print when opt.Verbose is set rather than always printing compiler statistics.
type Logger struct {
	out     io.Writer
	verbose bool
}

// NewLogger returns a Logger writing to out; diagnostics are suppressed unless verbose is true.
func NewLogger(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, verbose: verbose}
}

// Printf writes a diagnostic line if the Logger is in verbose mode, a no-op otherwise.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Stage announces the start of a named pipeline stage (for example tokenize, parse, typecheck,
// generate or assemble) when the Logger is verbose.
func (l *Logger) Stage(name string) {
	l.Printf("stage: %s\n", name)
}
