package compiler

import (
	"fmt"
	"os"
)

// Result bundles every artifact the pipeline produces along the way, so a
// driver can dump whichever stage it was asked to dump without re-running
// earlier stages.
type Result struct {
	Tokens    []Token
	AST       *Node
	Sema      *SemanticPass
	Seq       *InstructionSequence
	Storage   int
	VRegCount int
	Asm       string
}

// Compile runs the full pipeline over src: Lex → Parse → Analyze →
// GenerateHL → GenerateAsm. file is used only to tag diagnostics.
func Compile(file, src string) (*Result, error) {
	tokens, err := Lex(file, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		return nil, err
	}

	root, err := Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		return nil, err
	}

	sema, err := Analyze(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "semantic error:", err)
		return nil, err
	}

	seq, storage, vregs, err := GenerateHL(root, sema.Global())
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		return nil, err
	}

	asm, err := GenerateAsm(seq, storage, vregs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assembly error:", err)
		return nil, err
	}

	return &Result{
		Tokens:    tokens,
		AST:       root,
		Sema:      sema,
		Seq:       seq,
		Storage:   storage,
		VRegCount: vregs,
		Asm:       asm,
	}, nil
}
