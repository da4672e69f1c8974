package backend

import (
	"strings"
	"testing"

	"github.com/nnecklace/exprc/internal/check"
	"github.com/nnecklace/exprc/internal/frontend"
	"github.com/nnecklace/exprc/internal/ir"
)

func compile(t *testing.T, src string) string {
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
		t.Fatalf("unexpected generation error: %s", err)
	}
	asm, err := Generate(prog)
	if err != nil {
		t.Fatalf("unexpected assembly generation error: %s", err)
	}
	return asm
}

func TestGeneratePrelude(t *testing.T) {
	asm := compile(t, "1 + 1;")
	for _, want := range []string{".extern print_int", ".extern print_bool", ".extern read_int", ".global main", ".type main, @function"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected prelude to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestGenerateMainExitsZero(t *testing.T) {
	asm := compile(t, "1 + 1;")
	if !strings.Contains(asm, "movq\t$0, %rax") {
		t.Errorf("expected main's ReturnValue to lower to movq $0, %%rax, got:\n%s", asm)
	}
}

func TestGenerateFunctionHasPrologueAndEpilogue(t *testing.T) {
	asm := compile(t, `
		fun square(x: Int): Int { x * x }
		print_int(square(5));
	`)
	idx := strings.Index(asm, "square:")
	if idx == -1 {
		t.Fatalf("expected a square: label, got:\n%s", asm)
	}
	body := asm[idx:]
	for _, want := range []string{"pushq\t%rbp", "movq\t%rsp, %rbp", "popq\t%rbp", "ret"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected square's body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestGenerateFirstParamReadFromRDI(t *testing.T) {
	asm := compile(t, `
		fun square(x: Int): Int { x * x }
		print_int(square(5));
	`)
	if !strings.Contains(asm, "movq\t%rdi,") {
		t.Errorf("expected square's first parameter to load from %%rdi, got:\n%s", asm)
	}
}

func TestGenerateArithmeticIntrinsic(t *testing.T) {
	asm := compile(t, "print_int(1 + 2);")
	if !strings.Contains(asm, "addq") {
		t.Errorf("expected an addq instruction for '+', got:\n%s", asm)
	}
}

func TestGenerateDivisionUsesCqtoAndIdiv(t *testing.T) {
	asm := compile(t, "print_int(10 / 3);")
	if !strings.Contains(asm, "cqto") || !strings.Contains(asm, "idivq") {
		t.Errorf("expected cqto/idivq for integer division, got:\n%s", asm)
	}
}

func TestGenerateComparisonUsesSetAndZeroExtend(t *testing.T) {
	asm := compile(t, "print_bool(1 < 2);")
	if !strings.Contains(asm, "setl") || !strings.Contains(asm, "movzbq") {
		t.Errorf("expected setl/movzbq for '<', got:\n%s", asm)
	}
}

func TestGeneratePointerIntrinsics(t *testing.T) {
	asm := compile(t, `
		var x: Int = 1;
		var p: Int* = &x;
		print_int(*p);
	`)
	if !strings.Contains(asm, "leaq") {
		t.Errorf("expected leaq for unary '&', got:\n%s", asm)
	}
	if !strings.Contains(asm, "movq\t(%rax), %rax") {
		t.Errorf("expected a double movq through (%%rax) for unary '*', got:\n%s", asm)
	}
}

func TestGenerateCallToUserFunctionUsesCallq(t *testing.T) {
	asm := compile(t, `
		fun square(x: Int): Int { x * x }
		print_int(square(5));
	`)
	if !strings.Contains(asm, "callq\tsquare") {
		t.Errorf("expected callq square, got:\n%s", asm)
	}
}

func TestGenerateLargeIntConstUsesMovabsq(t *testing.T) {
	asm := compile(t, "print_int(5000000000);")
	if !strings.Contains(asm, "movabsq") {
		t.Errorf("expected movabsq for an out-of-32-bit-range constant, got:\n%s", asm)
	}
}

func TestGenerateSmallIntConstUsesDirectMovq(t *testing.T) {
	asm := compile(t, "print_int(42);")
	if strings.Contains(asm, "movabsq") {
		t.Errorf("did not expect movabsq for a small constant, got:\n%s", asm)
	}
	if !strings.Contains(asm, "$42,") {
		t.Errorf("expected a direct movq of $42, got:\n%s", asm)
	}
}

func TestGenerateCondJumpLowersToCompareAndBranch(t *testing.T) {
	asm := compile(t, `
		var x = 1;
		if x == 1 then { x = 2; } else { x = 3; };
		print_int(x);
	`)
	for _, want := range []string{"cmpq\t$0,", "jne\t", "jmp\t"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected CondJump lowering to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestGenerateSeventhArgumentReadFromStack(t *testing.T) {
	asm := compile(t, `
		fun sum7(a: Int, b: Int, c: Int, d: Int, e: Int, f: Int, g: Int): Int { a }
		print_int(sum7(1, 2, 3, 4, 5, 6, 7));
	`)
	if !strings.Contains(asm, "16(%rbp)") {
		t.Errorf("expected the 7th parameter to be read from 16(%%rbp), got:\n%s", asm)
	}
	if !strings.Contains(asm, "pushq") {
		t.Errorf("expected the 7th call argument to be pushed on the stack, got:\n%s", asm)
	}
}
