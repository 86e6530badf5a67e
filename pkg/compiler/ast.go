package compiler

import "fmt"

// NodeKind tags a Node with its grammar production.
type NodeKind int

const (
	NodeProgram NodeKind = iota
	NodeDeclarations
	NodeConstDef
	NodeVarDef
	NodeTypeDef
	NodeNamedTypeRef
	NodeArrayTypeRef
	NodeRecordTypeRef
	NodeFieldDecl
	NodeBlock
	NodeAssign
	NodeIf
	NodeIfElse
	NodeWhile
	NodeRepeat
	NodeRead
	NodeWrite
	NodeVarRef
	NodeArrayElemRef
	NodeFieldRef
	NodeIntLiteral
	NodeBinaryOp
	NodeCompare
)

var nodeKindNames = map[NodeKind]string{
	NodeProgram:       "Program",
	NodeDeclarations:  "Declarations",
	NodeConstDef:      "ConstDef",
	NodeVarDef:        "VarDef",
	NodeTypeDef:       "TypeDef",
	NodeNamedTypeRef:  "NamedTypeRef",
	NodeArrayTypeRef:  "ArrayTypeRef",
	NodeRecordTypeRef: "RecordTypeRef",
	NodeFieldDecl:     "FieldDecl",
	NodeBlock:         "Block",
	NodeAssign:        "Assign",
	NodeIf:            "If",
	NodeIfElse:        "IfElse",
	NodeWhile:         "While",
	NodeRepeat:        "Repeat",
	NodeRead:          "Read",
	NodeWrite:         "Write",
	NodeVarRef:        "VarRef",
	NodeArrayElemRef:  "ArrayElemRef",
	NodeFieldRef:      "FieldRef",
	NodeIntLiteral:    "IntLiteral",
	NodeBinaryOp:      "BinaryOp",
	NodeCompare:       "Compare",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Node is the single AST node representation used by every pass. Rather
// than a class hierarchy, each node carries a tag plus a set of
// pass-specific annotation fields; a given field is only meaningful for
// certain kinds (see the comments on each). This tagged-node-plus-dispatch
// shape avoids a forest of virtual-dispatch node types for what is, at
// this scale, a fixed and small set of productions.
type Node struct {
	Kind     NodeKind
	Loc      SourceLoc
	Children []*Node

	// Static, parser-supplied fields.
	Name     string   // identifier text: var/const/type/field name, VarRef/FieldRef name
	Names    []string // VarDef/FieldDecl: the list of names sharing one type
	IntValue int64     // IntLiteral: the literal's value
	Op       TokenType // BinaryOp/Compare: the operator

	// Semantic-pass annotations.
	Type *Type
	Sym  *Symbol

	// High-level-codegen annotations.
	Operand  Operand
	Target   string // Compare: the label to jump to
	Inverted bool   // Compare: jump-when-false instead of jump-when-true
}

func newNode(kind NodeKind, loc SourceLoc, children ...*Node) *Node {
	return &Node{Kind: kind, Loc: loc, Children: children}
}

// String renders one line describing the node, used by the -p AST dump.
func (n *Node) String() string {
	switch n.Kind {
	case NodeIntLiteral:
		return fmt.Sprintf("IntLiteral(%d)", n.IntValue)
	case NodeVarRef:
		return fmt.Sprintf("VarRef(%s)", n.Name)
	case NodeFieldRef:
		return fmt.Sprintf("FieldRef(.%s)", n.Name)
	case NodeBinaryOp, NodeCompare:
		return fmt.Sprintf("%s(%s)", n.Kind, tokenSymbol(n.Op))
	case NodeConstDef, NodeTypeDef, NodeNamedTypeRef:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Name)
	case NodeVarDef, NodeFieldDecl:
		return fmt.Sprintf("%s(%v)", n.Kind, n.Names)
	case NodeProgram:
		return fmt.Sprintf("Program(%s)", n.Name)
	default:
		return n.Kind.String()
	}
}

var tokenSymbols = map[TokenType]string{
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", MOD: "MOD",
	EQ: "=", NEQ: "<>", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
}

func tokenSymbol(t TokenType) string {
	if s, ok := tokenSymbols[t]; ok {
		return s
	}
	return t.String()
}

// PrintAST writes an indented dump of the tree, one node per line, for the
// -p CLI flag.
func PrintAST(n *Node, depth int, emit func(string)) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	emit(fmt.Sprintf("%s%s", indent, n))
	for _, c := range n.Children {
		PrintAST(c, depth+1, emit)
	}
}

// PrintGraphviz writes the tree as a Graphviz DOT digraph, for the -g CLI
// flag. Node identity is expressed by pointer, rendered as a stable
// integer, since AST nodes carry no id field of their own.
func PrintGraphviz(root *Node, emit func(string)) {
	emit("digraph AST {")
	ids := map[*Node]int{}
	next := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, ok := ids[n]; ok {
			return
		}
		ids[n] = next
		id := next
		next++
		emit(fmt.Sprintf("  n%d [label=%q];", id, n.String()))
		for _, c := range n.Children {
			walk(c)
			emit(fmt.Sprintf("  n%d -> n%d;", id, ids[c]))
		}
	}
	walk(root)
	emit("}")
}
