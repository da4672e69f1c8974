package llvmir

import (
	"strings"
	"testing"

	"github.com/nnecklace/exprc/internal/check"
	"github.com/nnecklace/exprc/internal/frontend"
	"github.com/nnecklace/exprc/internal/ir"
)

func compile(t *testing.T, src string) *ir.Program {
	t.Helper()
	mod, err := frontend.Parse("test.expr", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := check.New().Check(mod); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	prog, err := ir.Generate(mod)
	if err != nil {
		t.Fatalf("unexpected ir error: %s", err)
	}
	return prog
}

func TestGenerateDeclaresMainFunction(t *testing.T) {
	out, err := Generate(compile(t, "print_int(1 + 2);"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(out, "define i64 @main") {
		t.Errorf("expected a main function definition, got:\n%s", out)
	}
}

func TestGenerateDeclaresRuntimeExterns(t *testing.T) {
	out, err := Generate(compile(t, "print_int(1);"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, name := range []string{"print_int", "print_bool", "read_int"} {
		if !strings.Contains(out, "declare i64 @"+name) {
			t.Errorf("expected a declaration for %s, got:\n%s", name, out)
		}
	}
}

func TestGenerateLowersEqualityAndInequality(t *testing.T) {
	out, err := Generate(compile(t, "print_bool(1 == 2); print_bool(1 != 2);"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(out, "icmp eq") {
		t.Errorf("expected an icmp eq instruction for ==, got:\n%s", out)
	}
	if !strings.Contains(out, "icmp ne") {
		t.Errorf("expected an icmp ne instruction for !=, got:\n%s", out)
	}
}

func TestGenerateUserFunctionBecomesCallableDefinition(t *testing.T) {
	out, err := Generate(compile(t, `
		fun square(x: Int): Int { x * x }
		print_int(square(5));
	`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(out, "define i64 @square") {
		t.Errorf("expected a square function definition, got:\n%s", out)
	}
	if !strings.Contains(out, "call i64 @square") {
		t.Errorf("expected a call to square, got:\n%s", out)
	}
}
