package main

import "testing"

func TestCommandsTableCoversEverySpecSubcommand(t *testing.T) {
	want := []string{"interpret", "parse", "tc", "ir", "flowgraph", "dataflow", "asm", "compile", "llvmir"}
	for _, name := range want {
		if _, ok := commands[name]; !ok {
			t.Errorf("missing command handler for %q", name)
		}
	}
}

func TestCmdAsmReportsParseErrors(t *testing.T) {
	if err := cmdAsm("test.expr", "var = ;"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestCmdIRReportsTypeErrors(t *testing.T) {
	if err := cmdIR("test.expr", "1 + true;"); err == nil {
		t.Fatalf("expected a type error")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run([]string{"bogus"}); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestRunRejectsExtraArguments(t *testing.T) {
	if err := run([]string{"parse", "a.expr", "b.expr"}); err == nil {
		t.Fatalf("expected an error for an extra argument")
	}
}
