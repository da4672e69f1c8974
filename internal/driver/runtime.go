package driver

// runtimeStub is the tiny hand-written assembly translation unit providing the three externs
// internal/backend's prelude declares (print_int, print_bool, read_int), per spec.md §6's runtime
// ABI. It is assembled and linked alongside a program's own generated listing so `compile` produces
// a self-contained executable without requiring a separate pre-built runtime library. Each function
// follows the same System V calling convention and pushq/popq %rbp framing internal/backend emits
// for user functions, and defers the actual formatting work to libc's printf/scanf rather than
// hand-rolling decimal conversion in assembly — spec.md only pins down the externally observable
// behavior (decimal integer plus newline, "true"/"false" plus newline, decimal integer read back),
// not the encoding technique.
const runtimeStub = `	.section .rodata
.Lfmt_int:
	.string "%ld\n"
.Lfmt_bool_true:
	.string "true\n"
.Lfmt_bool_false:
	.string "false\n"
.Lfmt_scan:
	.string "%ld"

	.section .text
	.global print_int
	.type print_int, @function
print_int:
	pushq %rbp
	movq %rsp, %rbp
	movq %rdi, %rsi
	leaq .Lfmt_int(%rip), %rdi
	xorq %rax, %rax
	call printf@PLT
	movq %rbp, %rsp
	popq %rbp
	ret

	.global print_bool
	.type print_bool, @function
print_bool:
	pushq %rbp
	movq %rsp, %rbp
	testq %rdi, %rdi
	je .Lprint_bool_false
	leaq .Lfmt_bool_true(%rip), %rdi
	jmp .Lprint_bool_call
.Lprint_bool_false:
	leaq .Lfmt_bool_false(%rip), %rdi
.Lprint_bool_call:
	xorq %rax, %rax
	call printf@PLT
	movq %rbp, %rsp
	popq %rbp
	ret

	.global read_int
	.type read_int, @function
read_int:
	pushq %rbp
	movq %rsp, %rbp
	subq $16, %rsp
	leaq .Lfmt_scan(%rip), %rdi
	leaq -8(%rbp), %rsi
	xorq %rax, %rax
	call scanf@PLT
	movq -8(%rbp), %rax
	movq %rbp, %rsp
	popq %rbp
	ret
`

// RuntimeStub returns the assembly text of the print_int/print_bool/read_int implementations.
func RuntimeStub() string {
	return runtimeStub
}
