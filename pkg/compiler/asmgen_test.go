package compiler

import (
	"strings"
	"testing"
)

func TestFrameSizePadsToOddMultipleOfEight(t *testing.T) {
	tests := []struct {
		storage, vregs int
	}{
		{0, 0},
		{8, 0},
		{16, 0},
		{8, 1},
		{24, 7},
	}
	for _, tt := range tests {
		got := frameSize(tt.storage, tt.vregs)
		if got%16 != 8 {
			t.Errorf("frameSize(%d, %d) = %d, not %%16==8", tt.storage, tt.vregs, got)
		}
	}
}

func TestGenerateAsmProducesWellFormedSections(t *testing.T) {
	toks, err := Lex("t.sp", `PROGRAM p; VAR x: INTEGER; BEGIN x := 1 + 2; WRITE x END.`)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	root, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sema, err := Analyze(root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	seq, storage, vregs, err := GenerateHL(root, sema.Global())
	if err != nil {
		t.Fatalf("GenerateHL failed: %v", err)
	}
	asm, err := GenerateAsm(seq, storage, vregs)
	if err != nil {
		t.Fatalf("GenerateAsm failed: %v", err)
	}

	for _, want := range []string{
		".section .rodata",
		"s_readint_fmt:",
		"s_writeint_fmt:",
		".section .text",
		".globl main",
		"main:",
		"subq $",
		"addq $",
		"movl $0, %eax",
		"ret",
		"call printf",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("generated assembly is missing %q:\n%s", want, asm)
		}
	}
}

func TestGenerateAsmLowersDivisionThroughRaxRdx(t *testing.T) {
	toks, _ := Lex("t.sp", `PROGRAM p; VAR x: INTEGER; BEGIN x := 10 / 3 END.`)
	root, _ := Parse(toks)
	sema, _ := Analyze(root)
	seq, storage, vregs, err := GenerateHL(root, sema.Global())
	if err != nil {
		t.Fatalf("GenerateHL failed: %v", err)
	}
	asm, err := GenerateAsm(seq, storage, vregs)
	if err != nil {
		t.Fatalf("GenerateAsm failed: %v", err)
	}
	if !strings.Contains(asm, "cqto") || !strings.Contains(asm, "idivq") {
		t.Errorf("division should lower through cqto/idivq:\n%s", asm)
	}
}

func TestGenerateAsmReadUsesScanf(t *testing.T) {
	toks, _ := Lex("t.sp", `PROGRAM p; VAR x: INTEGER; BEGIN READ x END.`)
	root, _ := Parse(toks)
	sema, _ := Analyze(root)
	seq, storage, vregs, err := GenerateHL(root, sema.Global())
	if err != nil {
		t.Fatalf("GenerateHL failed: %v", err)
	}
	asm, err := GenerateAsm(seq, storage, vregs)
	if err != nil {
		t.Fatalf("GenerateAsm failed: %v", err)
	}
	if !strings.Contains(asm, "call scanf") {
		t.Errorf("READ should lower to a scanf call:\n%s", asm)
	}
}
