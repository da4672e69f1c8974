package ast

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpIncludesEveryTopLevelExpression(t *testing.T) {
	loc := Location{}
	mod := NewModule(loc, []Expression{
		NewIdentifier(loc, "x"),
		NewBreakContinue(loc, "break"),
	})

	var buf bytes.Buffer
	mod.Dump(&buf)
	out := buf.String()

	if !strings.Contains(out, "Module(main)") {
		t.Errorf("expected a Module header, got:\n%s", out)
	}
	if !strings.Contains(out, "Identifier(x)") {
		t.Errorf("expected the identifier to be dumped, got:\n%s", out)
	}
	if !strings.Contains(out, "BreakContinue(break)") {
		t.Errorf("expected the break to be dumped, got:\n%s", out)
	}
}
