package compiler

import (
	"strings"
	"testing"
)

func mustGenerateHL(t *testing.T, src string) (*InstructionSequence, int, int) {
	t.Helper()
	toks, err := Lex("t.sp", src)
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
	return seq, storage, vregs
}

func TestHLGenAssignEmitsAddAndStore(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `PROGRAM p; VAR x: INTEGER; BEGIN x := 1 + 2 END.`)
	out := seq.String()
	if !strings.Contains(out, "INT_ADD") {
		t.Errorf("expected an INT_ADD instruction:\n%s", out)
	}
	if !strings.Contains(out, "STORE_INT") {
		t.Errorf("expected a STORE_INT instruction:\n%s", out)
	}
}

func TestHLGenWhileLoopsBackwardsAndJumpsForwardFirst(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `
PROGRAM p;
VAR x: INTEGER;
BEGIN
  WHILE x < 10 DO x := x + 1
END.
`)
	// JUMP to Lcond first, Lbody before the body, Lcond before the
	// (non-inverted) condition.
	if seq.Instrs[0].Op != JUMP {
		t.Fatalf("first instruction should be JUMP to the condition, got %s", seq.Instrs[0].Op)
	}
	out := seq.String()
	if !strings.Contains(out, "JLT") {
		t.Errorf("non-inverted '<' condition should emit JLT:\n%s", out)
	}
}

func TestHLGenRepeatInvertsTheUntilCondition(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `
PROGRAM p;
VAR x: INTEGER;
BEGIN
  REPEAT x := x + 1 UNTIL x = 10
END.
`)
	out := seq.String()
	// '=' inverted is JNE (loop back while not yet equal).
	if !strings.Contains(out, "JNE") {
		t.Errorf("inverted '=' condition should emit JNE:\n%s", out)
	}
}

func TestHLGenIfElseEmitsTrailingNOP(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `
PROGRAM p;
VAR x: INTEGER;
BEGIN
  IF x = 1 THEN x := 2 ELSE x := 3
END.
`)
	last := seq.Instrs[len(seq.Instrs)-1]
	if last.Op != NOP {
		t.Errorf("if/else should end with a trailing NOP so Lout is not orphaned, got %s", last.Op)
	}
}

func TestHLGenArrayElementAddressComputation(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `
PROGRAM p;
VAR a: ARRAY 10 OF INTEGER;
BEGIN
  a[0] := 5
END.
`)
	out := seq.String()
	if !strings.Contains(out, "INT_MUL") {
		t.Errorf("array element write should compute offset via INT_MUL:\n%s", out)
	}
	if !strings.Contains(out, "INT_ADD") {
		t.Errorf("array element write should compute address via INT_ADD:\n%s", out)
	}
}

func TestHLGenReadEmitsReadThenStore(t *testing.T) {
	seq, _, _ := mustGenerateHL(t, `PROGRAM p; VAR x: INTEGER; BEGIN READ x END.`)
	if len(seq.Instrs) < 3 {
		t.Fatalf("expected at least 3 instructions, got %d", len(seq.Instrs))
	}
	// x's address is taken first (LOCALADDR); the value is then read and
	// stored through that address.
	if seq.Instrs[0].Op != LOCALADDR || seq.Instrs[1].Op != READ_INT || seq.Instrs[2].Op != STORE_INT {
		t.Errorf("got %s, %s, %s; want LOCALADDR, READ_INT, STORE_INT", seq.Instrs[0].Op, seq.Instrs[1].Op, seq.Instrs[2].Op)
	}
}

func TestHLGenStorageSizeMatchesGlobalScope(t *testing.T) {
	_, storage, _ := mustGenerateHL(t, `PROGRAM p; VAR x, y, z: INTEGER; BEGIN x := 1 END.`)
	if storage != 24 {
		t.Errorf("storage = %d, want 24 (three INTEGER locals)", storage)
	}
}
