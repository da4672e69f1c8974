// Package backend lowers a per-function IR instruction map into a single x86-64 AT&T assembly
// text blob, following the System V calling convention.
//
// The output-buffering shape (write formatted lines into a strings.Builder, expose small
// instruction-emitting helpers rather than raw string concatenation at every call site) is
// grounded on the teacher's util.Writer (src/util/io.go): Write, Label and the Ins-family
// helpers. This Writer drops the teacher's channel-based multi-threaded flush (Flush/Close/
// NewWriter, fed by a package-level wc channel) because assembly generation here is single-
// threaded per spec.md §5 — one Writer is built, filled, and turned directly into a string by its
// caller.
package backend

import (
	"fmt"
	"strings"
)

// Writer accumulates one function's (or the whole program's) assembly text.
type Writer struct {
	sb strings.Builder
}

// Write appends a formatted line with no automatic indentation or trailing punctuation.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
	w.sb.WriteByte('\n')
}

// WriteString appends s verbatim, followed by a newline.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// Blank appends an empty line, used to visually separate functions in the output.
func (w *Writer) Blank() {
	w.sb.WriteByte('\n')
}

// Label writes a bare "name:" line.
func (w *Writer) Label(name string) {
	w.sb.WriteString(name)
	w.sb.WriteString(":\n")
}

// Ins0 writes a zero-operand instruction, e.g. "ret" or "cqto".
func (w *Writer) Ins0(op string) {
	w.sb.WriteString("\t")
	w.sb.WriteString(op)
	w.sb.WriteByte('\n')
}

// Ins1 writes a one-operand instruction, e.g. "pushq %rbp".
func (w *Writer) Ins1(op, operand string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s\n", op, operand))
}

// Ins2 writes a two-operand AT&T instruction in source-then-destination order, e.g.
// "movq %rsp, %rbp".
func (w *Writer) Ins2(op, src, dst string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s\n", op, src, dst))
}

// String returns the accumulated assembly text.
func (w *Writer) String() string { return w.sb.String() }
