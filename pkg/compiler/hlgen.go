package compiler

import "fmt"

// HLCodeGen is the high-level code generator: a second AST visitor that
// linearises structured control flow and expressions into a three-address
// instruction sequence over virtual registers and labels.
type HLCodeGen struct {
	seq       *InstructionSequence
	vreg      int // -1 means "none allocated yet in the current statement"
	vregMax   int
	loopIndex int
}

func NewHLCodeGen() *HLCodeGen {
	return &HLCodeGen{seq: NewInstructionSequence(), vreg: -1, vregMax: -1}
}

func (g *HLCodeGen) nextVReg() int {
	g.vreg++
	if g.vreg > g.vregMax {
		g.vregMax = g.vreg
	}
	return g.vreg
}

func (g *HLCodeGen) resetVReg() {
	g.vreg = -1
}

func (g *HLCodeGen) newLabel() string {
	l := fmt.Sprintf(".L%d", g.loopIndex)
	g.loopIndex++
	return l
}

// GenerateHL runs the high-level code generator over a semantically
// analyzed program and returns the instruction sequence, the global scope's
// storage size, and the number of distinct virtual registers used.
func GenerateHL(program *Node, global *SymbolTable) (*InstructionSequence, int, int, error) {
	g := NewHLCodeGen()
	if err := g.visit(program); err != nil {
		return nil, 0, 0, err
	}
	return g.seq, global.TotalSize(), g.vregMax + 1, nil
}

// isAddress reports whether n's operand, once computed, holds the address
// of a storage location rather than an already-loaded value.
func isAddress(n *Node) bool {
	switch n.Kind {
	case NodeVarRef, NodeArrayElemRef, NodeFieldRef:
		return true
	default:
		return false
	}
}

// derefOperand turns an address-node's VReg operand into the VRegMemref
// that reads through it.
func derefOperand(n *Node) Operand {
	return VRegMemrefOperand(n.Operand.VRegID)
}

// loadValue returns the operand to use for n's value in an expression: n's
// own operand if it already holds a value, or a freshly loaded value
// (via LOAD_INT) if n's operand is an address.
func (g *HLCodeGen) loadValue(n *Node) Operand {
	if !isAddress(n) {
		return n.Operand
	}
	v := g.nextVReg()
	g.seq.Emit(LOAD_INT, VRegOperand(v), derefOperand(n))
	return VRegOperand(v)
}

func (g *HLCodeGen) visit(n *Node) error {
	switch n.Kind {
	case NodeProgram:
		// Children[0] is the declarations block (skipped); Children[1] is
		// the top-level statement block.
		return g.visit(n.Children[1])
	case NodeDeclarations:
		return nil
	case NodeBlock:
		for _, stmt := range n.Children {
			if err := g.visit(stmt); err != nil {
				return err
			}
		}
		return nil
	case NodeVarRef:
		return g.visitVarRef(n)
	case NodeIntLiteral:
		return g.visitIntLiteral(n)
	case NodeArrayElemRef:
		return g.visitArrayElemRef(n)
	case NodeFieldRef:
		return g.visitFieldRef(n)
	case NodeBinaryOp:
		return g.visitBinaryOp(n)
	case NodeCompare:
		return g.visitCompare(n)
	case NodeAssign:
		return g.visitAssign(n)
	case NodeRead:
		return g.visitRead(n)
	case NodeWrite:
		return g.visitWrite(n)
	case NodeIf:
		return g.visitIf(n)
	case NodeIfElse:
		return g.visitIfElse(n)
	case NodeWhile:
		return g.visitWhile(n)
	case NodeRepeat:
		return g.visitRepeat(n)
	default:
		return fmt.Errorf("compiler: internal error: unhandled node kind %s in high-level codegen", n.Kind)
	}
}

func (g *HLCodeGen) visitVarRef(n *Node) error {
	v := g.nextVReg()
	g.seq.Emit(LOCALADDR, VRegOperand(v), IntLiteralOperand(int64(n.Sym.Offset)))
	n.Operand = VRegOperand(v)
	return nil
}

func (g *HLCodeGen) visitIntLiteral(n *Node) error {
	v := g.nextVReg()
	g.seq.Emit(LOAD_ICONST, VRegOperand(v), IntLiteralOperand(n.IntValue))
	n.Operand = VRegOperand(v)
	return nil
}

// elementSize returns the size of one element of the array base refers
// to. Falls back to 8 when the base's type could not be resolved, since
// array/field operand typing is not enforced.
func elementSize(base *Node) int {
	if base.Type != nil && base.Type.Kind == ArrayType {
		return base.Type.Element.Size()
	}
	return 8
}

func (g *HLCodeGen) visitArrayElemRef(n *Node) error {
	base, index := n.Children[0], n.Children[1]
	if err := g.visit(base); err != nil {
		return err
	}
	if err := g.visit(index); err != nil {
		return err
	}

	var indexOperand Operand
	if isAddress(index) {
		indexOperand = derefOperand(index)
	} else {
		indexOperand = index.Operand
	}

	offsetV := g.nextVReg()
	g.seq.Emit(INT_MUL, VRegOperand(offsetV), indexOperand, IntLiteralOperand(int64(elementSize(base))))

	addrV := g.nextVReg()
	g.seq.Emit(INT_ADD, VRegOperand(addrV), base.Operand, VRegOperand(offsetV))

	n.Operand = VRegOperand(addrV)
	return nil
}

func fieldOffset(n *Node) int64 {
	if n.Sym != nil {
		return int64(n.Sym.Offset)
	}
	return 0
}

func (g *HLCodeGen) visitFieldRef(n *Node) error {
	base := n.Children[0]
	if err := g.visit(base); err != nil {
		return err
	}

	addrV := g.nextVReg()
	g.seq.Emit(INT_ADD, VRegOperand(addrV), base.Operand, IntLiteralOperand(fieldOffset(n)))

	n.Operand = VRegOperand(addrV)
	return nil
}

var arithOpcode = map[TokenType]HINS{
	PLUS: INT_ADD, MINUS: INT_SUB, STAR: INT_MUL, SLASH: INT_DIV, MOD: INT_MOD,
}

func (g *HLCodeGen) visitBinaryOp(n *Node) error {
	left, right := n.Children[0], n.Children[1]
	if err := g.visit(left); err != nil {
		return err
	}
	if err := g.visit(right); err != nil {
		return err
	}

	leftOperand := g.loadValue(left)
	rightOperand := g.loadValue(right)

	op, ok := arithOpcode[n.Op]
	if !ok {
		return fmt.Errorf("compiler: internal error: unknown binary operator %s in high-level codegen", n.Op)
	}

	dst := g.nextVReg()
	g.seq.Emit(op, VRegOperand(dst), leftOperand, rightOperand)
	n.Operand = VRegOperand(dst)
	return nil
}

func (g *HLCodeGen) visitCompare(n *Node) error {
	left, right := n.Children[0], n.Children[1]
	if err := g.visit(left); err != nil {
		return err
	}
	if err := g.visit(right); err != nil {
		return err
	}

	leftOperand := g.loadValue(left)
	rightOperand := g.loadValue(right)

	g.seq.Emit(INT_COMPARE, leftOperand, rightOperand)

	var jcc HINS
	var ok bool
	if n.Inverted {
		jcc, ok = jccInverted[n.Op]
	} else {
		jcc, ok = jccDirect[n.Op]
	}
	if !ok {
		return fmt.Errorf("compiler: internal error: unknown comparison operator %s in high-level codegen", n.Op)
	}
	g.seq.Emit(jcc, LabelOperand(n.Target))
	return nil
}

func (g *HLCodeGen) visitAssign(n *Node) error {
	lhs, rhs := n.Children[0], n.Children[1]
	if err := g.visit(lhs); err != nil {
		return err
	}
	if err := g.visit(rhs); err != nil {
		return err
	}

	rhsValue := g.loadValue(rhs)
	g.seq.Emit(STORE_INT, lhs.Operand, rhsValue)
	g.resetVReg()
	return nil
}

func (g *HLCodeGen) visitRead(n *Node) error {
	lhs := n.Children[0]
	if err := g.visit(lhs); err != nil {
		return err
	}

	r := g.nextVReg()
	g.seq.Emit(READ_INT, VRegOperand(r))
	g.seq.Emit(STORE_INT, lhs.Operand, VRegOperand(r))
	g.resetVReg()
	return nil
}

func (g *HLCodeGen) visitWrite(n *Node) error {
	arg := n.Children[0]
	if err := g.visit(arg); err != nil {
		return err
	}

	value := g.loadValue(arg)
	g.seq.Emit(WRITE_INT, value)
	g.resetVReg()
	return nil
}

func (g *HLCodeGen) visitIf(n *Node) error {
	lout := g.newLabel()
	cond := n.Children[0]
	cond.Inverted = true
	cond.Target = lout
	if err := g.visit(cond); err != nil {
		return err
	}
	if err := g.visit(n.Children[1]); err != nil {
		return err
	}
	g.seq.DefineLabel(lout)
	return nil
}

func (g *HLCodeGen) visitIfElse(n *Node) error {
	lelse := g.newLabel()
	lout := g.newLabel()

	cond := n.Children[0]
	cond.Inverted = true
	cond.Target = lelse
	if err := g.visit(cond); err != nil {
		return err
	}
	if err := g.visit(n.Children[1]); err != nil {
		return err
	}
	g.seq.Emit(JUMP, LabelOperand(lout))
	g.seq.DefineLabel(lelse)
	if err := g.visit(n.Children[2]); err != nil {
		return err
	}
	g.seq.DefineLabel(lout)
	g.seq.Emit(NOP)
	return nil
}

func (g *HLCodeGen) visitWhile(n *Node) error {
	lbody := g.newLabel()
	lcond := g.newLabel()

	g.seq.Emit(JUMP, LabelOperand(lcond))
	g.seq.DefineLabel(lbody)
	if err := g.visit(n.Children[1]); err != nil {
		return err
	}
	g.seq.DefineLabel(lcond)

	cond := n.Children[0]
	cond.Target = lbody
	cond.Inverted = false
	return g.visit(cond)
}

func (g *HLCodeGen) visitRepeat(n *Node) error {
	lbody := g.newLabel()
	lcond := g.newLabel()

	g.seq.DefineLabel(lbody)
	if err := g.visit(n.Children[0]); err != nil {
		return err
	}
	g.seq.DefineLabel(lcond)

	cond := n.Children[1]
	cond.Target = lbody
	cond.Inverted = true
	return g.visit(cond)
}
