package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nnecklace/exprc/internal/check"
	"github.com/nnecklace/exprc/internal/frontend"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	mod, err := frontend.Parse("test.expr", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := check.New().Check(mod); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	var out bytes.Buffer
	_, err = New(&out, strings.NewReader("")).Eval(mod)
	return out.String(), err
}

func TestEvalArithmeticAndPrint(t *testing.T) {
	out, err := run(t, "print_int(1 + 2 * 3);")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "7\n" {
		t.Errorf("expected 7, got %q", out)
	}
}

func TestEvalWhileLoopAccumulatesSum(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var sum = 0;
		while i < 10 do {
			sum = sum + i;
			i = i + 1;
		};
		print_int(sum);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "45\n" {
		t.Errorf("expected 45, got %q", out)
	}
}

func TestEvalFunctionCallSquare(t *testing.T) {
	out, err := run(t, `
		fun square(x: Int): Int { x * x }
		print_int(square(5));
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "25\n" {
		t.Errorf("expected 25, got %q", out)
	}
}

func TestEvalPointerSwap(t *testing.T) {
	out, err := run(t, `
		fun swap(a: Int*, b: Int*): Unit {
			var t = *a;
			*a = *b;
			*b = t;
		}
		var x = 1;
		var y = 2;
		swap(&x, &y);
		print_int(x);
		print_int(y);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "2\n1\n" {
		t.Errorf("expected swapped values 2 then 1, got %q", out)
	}
}

func TestEvalBreakExitsLoop(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while true do {
			i = i + 1;
			if i == 5 then break;
		};
		print_int(i);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "5\n" {
		t.Errorf("expected 5, got %q", out)
	}
}

func TestEvalContinueSkipsRestOfBody(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var count = 0;
		while i < 10 do {
			i = i + 1;
			if i % 2 == 0 then continue;
			count = count + 1;
		};
		print_int(count);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "5\n" {
		t.Errorf("expected 5 odd increments, got %q", out)
	}
}

func TestEvalShortCircuitAndSkipsSideEffect(t *testing.T) {
	out, err := run(t, `
		var x = false;
		var y = true;
		x and { y = false; true };
		print_bool(y);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "true\n" {
		t.Errorf("expected the right operand's side effect to be skipped, got %q", out)
	}
}

func TestEvalMutualRecursion(t *testing.T) {
	out, err := run(t, `
		fun isEven(n: Int): Bool { if n == 0 then true else isOdd(n - 1) }
		fun isOdd(n: Int): Bool { if n == 0 then false else isEven(n - 1) }
		print_bool(isEven(10));
	`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "true\n" {
		t.Errorf("expected true, got %q", out)
	}
}

func TestEvalDivisionByZeroIsError(t *testing.T) {
	_, err := run(t, "print_int(1 / 0);")
	if err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestEvalBreakOutsideLoopIsError(t *testing.T) {
	_, err := run(t, "break;")
	if err == nil {
		t.Fatalf("expected an error for break outside a loop")
	}
}

func TestEvalReadInt(t *testing.T) {
	t.Helper()
	mod, err := frontend.Parse("test.expr", "print_int(read_int() + 1);")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := check.New().Check(mod); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	var out bytes.Buffer
	if _, err := New(&out, strings.NewReader("41")).Eval(mod); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out.String() != "42\n" {
		t.Errorf("expected 42, got %q", out.String())
	}
}
