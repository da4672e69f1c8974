package driver

import "testing"

func TestGenerateAssemblyProducesPrelude(t *testing.T) {
	asm, err := GenerateAssembly("test.expr", "print_int(1 + 2);")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !contains(asm, ".extern print_int") {
		t.Errorf("expected prelude to extern print_int, got:\n%s", asm)
	}
}

func TestGenerateAssemblyPropagatesTypeErrors(t *testing.T) {
	_, err := GenerateAssembly("test.expr", "1 + true;")
	if err == nil {
		t.Fatalf("expected a type error")
	}
}

func TestGenerateAssemblyPropagatesParseErrors(t *testing.T) {
	_, err := GenerateAssembly("test.expr", "var = ;")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
