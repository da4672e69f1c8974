package check

import (
	"strings"
	"testing"

	"github.com/nnecklace/exprc/internal/frontend"
	"github.com/nnecklace/exprc/internal/types"
)

// TestCheckAccepts exercises the programs that should type-check cleanly, across every node kind
// the checker dispatches on.
func TestCheckAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"arithmetic", "1 + 2 * 3 - 4 / 2 % 2;"},
		{"comparison", "1 < 2; 1 <= 2; 1 > 2; 1 >= 2;"},
		{"equality int", "1 == 1; 1 != 2;"},
		{"equality bool", "true == false; true != false;"},
		{"logic", "true and false or true;"},
		{"unary neg", "-5;"},
		{"unary not", "not true;"},
		{"pointer roundtrip", "var x: Int = 5; var p: Int* = &x; *p;"},
		{"var inferred", "var x = 1 + 1;"},
		{"var declared matches", "var x: Bool = true;"},
		{"if without else", "if true then 1;"},
		{"if with else matching", "if true then 1 else 2;"},
		{"while", "while false do 1;"},
		{"break continue", "while true do { break; continue; }"},
		{"block result is last statement", "{ var x = 1; x + 1 }"},
		{"assignment to outer variable", "var x = 1; { x = 2; }"},
		{"function call and mutual recursion", `
			fun isEven(n: Int): Bool { if n == 0 then true else isOdd(n - 1) }
			fun isOdd(n: Int): Bool { if n == 0 then false else isEven(n - 1) }
			isEven(10);
		`},
		{"function with no declared return type defaults to Unit", "fun f() { 1; }"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mod, err := frontend.Parse("test.expr", tc.src)
			if err != nil {
				t.Fatalf("unexpected parse error: %s", err)
			}
			if err := New().Check(mod); err != nil {
				t.Fatalf("unexpected type error: %s", err)
			}
		})
	}
}

// TestCheckRejects exercises programs that must be rejected, and checks the error mentions the
// offending construct so a caller can tell what went wrong.
func TestCheckRejects(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unbound identifier", "x + 1;", "undefined symbol"},
		{"operator type mismatch", "1 + true;", "expects"},
		{"if condition not bool", "if 1 then 2;", "must be bool"},
		{"while condition not bool", "while 1 do 2;", "must be bool"},
		{"branch type mismatch", "if true then 1 else true;", "mismatched"},
		{"var declared type mismatch", "var x: Int = true;", "declared"},
		{"dereference non pointer", "var x = 1; *x;", "non-pointer"},
		{"equality type mismatch", "1 == true;", "expects"},
		{"function arg count mismatch", "fun f(n: Int): Int { n } f(1, 2);", "argument"},
		{"function arg type mismatch", "fun f(n: Int): Int { n } f(true);", "argument"},
		{"function return type mismatch", "fun f(): Int { true }", "return"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mod, err := frontend.Parse("test.expr", tc.src)
			if err != nil {
				t.Fatalf("unexpected parse error: %s", err)
			}
			err = New().Check(mod)
			if err == nil {
				t.Fatalf("expected a type error, got none")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error to mention %q, got: %s", tc.wantErr, err)
			}
		})
	}
}

// TestCheckAnnotatesTypes verifies the checker actually annotates nodes in place, since later
// passes read GetType() rather than re-deriving it.
func TestCheckAnnotatesTypes(t *testing.T) {
	mod, err := frontend.Parse("test.expr", "1 + 2;")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := New().Check(mod); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	got := mod.Expressions[0].GetType()
	if !got.Equal(types.Int) {
		t.Errorf("expected annotated type Int, got %s", got)
	}
}
