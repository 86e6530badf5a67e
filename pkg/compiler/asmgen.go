package compiler

import (
	"fmt"
	"strings"
)

const (
	readIntFmtLabel  = "s_readint_fmt"
	writeIntFmtLabel = "s_writeint_fmt"
)

// AsmGen lowers a high-level instruction sequence into x86-64 System V,
// AT&T-syntax assembly text, using a fixed spill convention (every virtual
// register backed by one 8-byte stack slot) and a fixed scratch-register
// protocol.
type AsmGen struct {
	storageSize int // S
	vregCount   int // V
	frame       int
	out         strings.Builder
}

// frameSize computes S + V*8, padded by 8 more bytes when that sum is
// already 16-byte aligned, so that %rsp is 16-aligned at every CALL once
// the call instruction's own return-address push is accounted for.
func frameSize(storageSize, vregCount int) int {
	frame := storageSize + vregCount*8
	if frame%16 == 0 {
		frame += 8
	}
	return frame
}

// GenerateAsm lowers seq into a complete assembly program.
func GenerateAsm(seq *InstructionSequence, storageSize, vregCount int) (string, error) {
	g := &AsmGen{
		storageSize: storageSize,
		vregCount:   vregCount,
		frame:       frameSize(storageSize, vregCount),
	}
	if err := g.generate(seq); err != nil {
		return "", err
	}
	return g.out.String(), nil
}

func (g *AsmGen) line(format string, args ...any) {
	fmt.Fprintf(&g.out, format+"\n", args...)
}

// localSlot is the memory operand for local variable offset d: d(%rsp).
func localSlot(d int) string {
	return fmt.Sprintf("%d(%%rsp)", d)
}

// vslot is Slot(v): the memory operand for virtual register v,
// (S + v*8)(%rsp).
func (g *AsmGen) vslot(v int) string {
	return fmt.Sprintf("%d(%%rsp)", g.storageSize+v*8)
}

func (g *AsmGen) slotOf(o Operand) string {
	return g.vslot(o.VRegID)
}

// loadOperand emits the instructions to materialize o's value into reg,
// handling all three operand shapes an arithmetic/compare instruction can
// receive: an immediate, a vreg holding a value, and a vreg holding an
// address that must be read through once more.
func (g *AsmGen) loadOperand(reg string, o Operand) {
	switch o.Kind {
	case OIntLiteral:
		g.line("  movq $%d, %s", o.Int, reg)
	case OVReg:
		g.line("  movq %s, %s", g.slotOf(o), reg)
	case OVRegMemref:
		g.line("  movq %s, %s", g.slotOf(o), reg)
		g.line("  movq (%s), %s", reg, reg)
	default:
		panic(fmt.Sprintf("compiler: internal error: operand kind %d cannot be loaded into a register", o.Kind))
	}
}

func (g *AsmGen) generate(seq *InstructionSequence) error {
	g.line(".section .rodata")
	g.line("%s: .string \"%%ld\"", readIntFmtLabel)
	g.line("%s: .string \"%%ld\\n\"", writeIntFmtLabel)
	g.line("")
	g.line(".section .text")
	g.line(".globl main")
	g.line("main:")
	g.line("  subq $%d, %%rsp", g.frame)

	for i, instr := range seq.Instrs {
		for _, l := range seq.Labels[i] {
			g.line("%s:", l)
		}
		if err := g.lower(instr); err != nil {
			return err
		}
	}
	for _, l := range seq.Labels[len(seq.Instrs)] {
		g.line("%s:", l)
	}

	g.line("  addq $%d, %%rsp", g.frame)
	g.line("  movl $0, %%eax")
	g.line("  ret")
	return nil
}

var jumpMnemonic = map[HINS]string{
	JUMP: "jmp", JE: "je", JNE: "jne", JLT: "jl", JLTE: "jle", JGT: "jg", JGTE: "jge",
}

func (g *AsmGen) lower(instr Instruction) error {
	switch instr.Op {
	case LOCALADDR:
		v, disp := instr.Operands[0], instr.Operands[1]
		g.line("  leaq %s, %%r10", localSlot(int(disp.Int)))
		g.line("  movq %%r10, %s", g.slotOf(v))

	case LOAD_ICONST:
		v, n := instr.Operands[0], instr.Operands[1]
		g.line("  movq $%d, %%r10", n.Int)
		g.line("  movq %%r10, %s", g.slotOf(v))

	case LOAD_INT:
		v, src := instr.Operands[0], instr.Operands[1]
		g.line("  movq %s, %%r11", g.slotOf(src))
		g.line("  movq (%%r11), %%r11")
		g.line("  movq %%r11, %s", g.slotOf(v))

	case STORE_INT:
		dst, src := instr.Operands[0], instr.Operands[1]
		g.line("  movq %s, %%r11", g.slotOf(src))
		g.line("  movq %s, %%r10", g.slotOf(dst))
		g.line("  movq %%r11, (%%r10)")

	case INT_ADD, INT_SUB, INT_MUL:
		d, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		g.loadOperand("%r10", a)
		g.loadOperand("%r11", b)
		switch instr.Op {
		case INT_ADD:
			g.line("  addq %%r11, %%r10")
		case INT_SUB:
			g.line("  subq %%r11, %%r10")
		case INT_MUL:
			g.line("  imulq %%r11, %%r10")
		}
		g.line("  movq %%r10, %s", g.slotOf(d))

	case INT_DIV, INT_MOD:
		d, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		g.loadOperand("%rax", a)
		g.line("  cqto")
		g.loadOperand("%r10", b)
		g.line("  idivq %%r10")
		if instr.Op == INT_DIV {
			g.line("  movq %%rax, %s", g.slotOf(d))
		} else {
			g.line("  movq %%rdx, %s", g.slotOf(d))
		}

	case INT_COMPARE:
		a, b := instr.Operands[0], instr.Operands[1]
		g.loadOperand("%r10", a)
		g.loadOperand("%r11", b)
		g.line("  cmpq %%r11, %%r10")

	case JUMP, JE, JNE, JLT, JLTE, JGT, JGTE:
		target := instr.Operands[0]
		g.line("  %s %s", jumpMnemonic[instr.Op], target.Label)

	case READ_INT:
		v := instr.Operands[0]
		g.line("  movq $%s, %%rdi", readIntFmtLabel)
		g.line("  leaq %s, %%rsi", g.slotOf(v))
		g.line("  call scanf")

	case WRITE_INT:
		v := instr.Operands[0]
		g.line("  movq $%s, %%rdi", writeIntFmtLabel)
		g.line("  movq %s, %%rsi", g.slotOf(v))
		g.line("  call printf")

	case NOP:
		g.line("  nop")

	default:
		return fmt.Errorf("compiler: internal error: unhandled HINS opcode %s in lowering", instr.Op)
	}
	return nil
}
