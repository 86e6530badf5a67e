package compiler

import "fmt"

// SemanticPass walks the AST once, populating the symbol table, annotating
// nodes with resolved types, and assigning a stack offset to every
// storage-bearing declaration.
//
// Known gaps, preserved deliberately: constants are not checked for
// reference to yet-unresolved names, and array-element and field-reference
// operands are not type-checked.
type SemanticPass struct {
	types  *TypeCache
	global *SymbolTable
	scope  *SymbolTable
	offset int
}

// NewSemanticPass creates a pass with a fresh global scope at depth 0.
func NewSemanticPass() *SemanticPass {
	global := NewSymbolTable(nil)
	return &SemanticPass{
		types:  NewTypeCache(),
		global: global,
		scope:  global,
	}
}

func (sp *SemanticPass) Global() *SymbolTable { return sp.global }
func (sp *SemanticPass) Types() *TypeCache    { return sp.types }

func errAt(loc SourceLoc, format string, args ...any) error {
	return fmt.Errorf("%s: Error: %s", loc, fmt.Sprintf(format, args...))
}

// Analyze runs the semantic pass over a parsed program.
func Analyze(root *Node) (*SemanticPass, error) {
	sp := NewSemanticPass()
	if err := sp.visit(root); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *SemanticPass) visit(n *Node) error {
	switch n.Kind {
	case NodeProgram:
		return sp.visitChildren(n)
	case NodeDeclarations:
		return sp.visitChildren(n)
	case NodeConstDef:
		return sp.visitConstDef(n)
	case NodeVarDef:
		return sp.visitVarDef(n)
	case NodeTypeDef:
		return sp.visitTypeDef(n)
	case NodeNamedTypeRef:
		return sp.visitNamedTypeRef(n)
	case NodeArrayTypeRef:
		return sp.visitArrayTypeRef(n)
	case NodeRecordTypeRef:
		return sp.visitRecordTypeRef(n)
	case NodeBlock:
		return sp.visitChildren(n)
	case NodeAssign:
		return sp.visitChildren(n)
	case NodeIf, NodeWhile:
		return sp.visitChildren(n)
	case NodeIfElse:
		return sp.visitChildren(n)
	case NodeRepeat:
		return sp.visitChildren(n)
	case NodeRead:
		return sp.visitChildren(n)
	case NodeWrite:
		return sp.visitChildren(n)
	case NodeVarRef:
		return sp.visitVarRef(n)
	case NodeArrayElemRef:
		return sp.visitArrayElemRef(n)
	case NodeFieldRef:
		return sp.visitFieldRef(n)
	case NodeIntLiteral:
		n.Type = sp.types.Integer()
		return nil
	case NodeBinaryOp, NodeCompare:
		if err := sp.visitChildren(n); err != nil {
			return err
		}
		n.Type = sp.types.Integer()
		return nil
	default:
		return fmt.Errorf("compiler: internal error: unhandled node kind %s in semantic pass", n.Kind)
	}
}

func (sp *SemanticPass) visitChildren(n *Node) error {
	for _, c := range n.Children {
		if err := sp.visit(c); err != nil {
			return err
		}
	}
	return nil
}

// declareStorage inserts a single storage-bearing symbol at the current
// offset cursor and advances the cursor, fatal on redeclaration.
func (sp *SemanticPass) declareStorage(name string, kind SymbolKind, typ *Type, loc SourceLoc) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: kind, Type: typ, Offset: sp.offset}
	if sp.scope.Exists(name) {
		return nil, errAt(loc, "Name '%s' is already defined", name)
	}
	if err := sp.scope.Insert(sym); err != nil {
		return nil, errAt(loc, "%s", err)
	}
	sp.offset += typ.Size()
	return sym, nil
}

// declareName inserts a non-storage symbol (a TYPE alias) without touching
// the offset cursor — a TYPE definition names a type, it does not reserve
// a stack slot, so it must not advance sp.offset the way CONST/VARIABLE/
// RECORD_FIELD do. SymbolTable.TotalSize excludes TYPE symbols from its
// sum, so advancing the cursor for one here would push later variables'
// offsets past what the frame actually reserves for them.
func (sp *SemanticPass) declareName(name string, kind SymbolKind, typ *Type, loc SourceLoc) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: kind, Type: typ}
	if sp.scope.Exists(name) {
		return nil, errAt(loc, "Name '%s' is already defined", name)
	}
	if err := sp.scope.Insert(sym); err != nil {
		return nil, errAt(loc, "%s", err)
	}
	return sym, nil
}

func (sp *SemanticPass) visitConstDef(n *Node) error {
	if err := sp.visit(n.Children[0]); err != nil {
		return err
	}
	typ := n.Children[0].Type
	sym, err := sp.declareStorage(n.Name, CONST, typ, n.Loc)
	if err != nil {
		return err
	}
	n.Type = typ
	n.Sym = sym
	return nil
}

func (sp *SemanticPass) visitVarDef(n *Node) error {
	if err := sp.visit(n.Children[0]); err != nil {
		return err
	}
	typ := n.Children[0].Type
	for _, name := range n.Names {
		if _, err := sp.declareStorage(name, VARIABLE, typ, n.Loc); err != nil {
			return err
		}
	}
	n.Type = typ
	return nil
}

func (sp *SemanticPass) visitTypeDef(n *Node) error {
	if err := sp.visit(n.Children[0]); err != nil {
		return err
	}
	typ := n.Children[0].Type
	sym, err := sp.declareName(n.Name, TYPE, typ, n.Loc)
	if err != nil {
		return err
	}
	n.Type = typ
	n.Sym = sym
	return nil
}

func (sp *SemanticPass) visitNamedTypeRef(n *Node) error {
	switch n.Name {
	case "INTEGER":
		n.Type = sp.types.Integer()
		return nil
	case "CHAR":
		n.Type = sp.types.Char()
		return nil
	default:
		sym, ok := sp.scope.Lookup(n.Name)
		if !ok {
			return errAt(n.Loc, "Unknown type '%s'", n.Name)
		}
		n.Type = sym.Type
		return nil
	}
}

func (sp *SemanticPass) visitArrayTypeRef(n *Node) error {
	if err := sp.visitChildren(n); err != nil {
		return err
	}
	length := n.Children[0]
	elem := n.Children[1]
	n.Type = NewArrayType(int(length.IntValue), elem.Type)
	return nil
}

// visitRecordTypeRef opens a fresh nested scope for the record's fields.
// The offset cursor is reset to 0 on entry and restored, unchanged, on
// exit, so field offsets are relative to the record rather than sharing
// the enclosing scope's cursor.
func (sp *SemanticPass) visitRecordTypeRef(n *Node) error {
	outerScope := sp.scope
	outerOffset := sp.offset

	sp.scope = NewSymbolTable(outerScope)
	sp.offset = 0

	for _, field := range n.Children {
		if err := sp.visit(field.Children[0]); err != nil {
			return err
		}
		typ := field.Children[0].Type
		for _, name := range field.Names {
			if _, err := sp.declareStorage(name, RECORD_FIELD, typ, field.Loc); err != nil {
				return err
			}
		}
		field.Type = typ
	}

	fields := sp.scope
	sp.scope = outerScope
	sp.offset = outerOffset

	n.Type = NewRecordType(fields)
	return nil
}

func (sp *SemanticPass) visitVarRef(n *Node) error {
	sym, ok := sp.scope.Lookup(n.Name)
	if !ok {
		return errAt(n.Loc, "Undefined variable '%s'", n.Name)
	}
	n.Sym = sym
	n.Type = sym.Type
	return nil
}

// visitArrayElemRef resolves the base and index but does not type-check
// that the base is actually an array or the index an integer. The element
// type is still attached on a best-effort basis so chained references
// (a[i].f) keep working.
func (sp *SemanticPass) visitArrayElemRef(n *Node) error {
	if err := sp.visitChildren(n); err != nil {
		return err
	}
	base := n.Children[0]
	if base.Type != nil && base.Type.Kind == ArrayType {
		n.Type = base.Type.Element
	}
	return nil
}

// visitFieldRef resolves the base but does not enforce that the base is
// actually a record or that the field exists.
func (sp *SemanticPass) visitFieldRef(n *Node) error {
	if err := sp.visit(n.Children[0]); err != nil {
		return err
	}
	base := n.Children[0]
	if base.Type != nil && base.Type.Kind == RecordType {
		if sym, ok := base.Type.Fields.Lookup(n.Name); ok {
			n.Sym = sym
			n.Type = sym.Type
		}
	}
	return nil
}
