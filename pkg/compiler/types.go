package compiler

import "fmt"

// TypeKind distinguishes the three Type variants.
type TypeKind int

const (
	PrimitiveType TypeKind = iota
	ArrayType
	RecordType
)

// Type is a tagged union describing INTEGER, CHAR, fixed arrays, and
// records. Values are immutable once constructed and freely shared by
// reference — the two primitives are canonical singletons created once
// per compilation (see NewTypeCache).
type Type struct {
	Kind TypeKind

	// PrimitiveType
	Name string // "INTEGER" | "CHAR"

	// ArrayType
	Length  int
	Element *Type

	// RecordType
	Fields *SymbolTable
}

// TypeCache owns the canonical INTEGER/CHAR singletons for one compilation.
// Array and record types are not cached: they may be freely shared but
// nothing in this compiler requires structural deduplication of them.
type TypeCache struct {
	integer *Type
	char    *Type
}

func NewTypeCache() *TypeCache {
	return &TypeCache{
		integer: &Type{Kind: PrimitiveType, Name: "INTEGER"},
		char:    &Type{Kind: PrimitiveType, Name: "CHAR"},
	}
}

func (c *TypeCache) Integer() *Type { return c.integer }
func (c *TypeCache) Char() *Type    { return c.char }

// NewArrayType constructs an array of length elements of elem.
func NewArrayType(length int, elem *Type) *Type {
	return &Type{Kind: ArrayType, Length: length, Element: elem}
}

// NewRecordType constructs a record type backed by the given field scope.
// The scope is owned by the record: ownership is strictly tree-shaped.
func NewRecordType(fields *SymbolTable) *Type {
	return &Type{Kind: RecordType, Fields: fields}
}

// Size returns the type's size in bytes: 8 for primitives, length×element
// size for arrays, and the sum of field sizes for records.
func (t *Type) Size() int {
	switch t.Kind {
	case PrimitiveType:
		return 8
	case ArrayType:
		return t.Length * t.Element.Size()
	case RecordType:
		return t.Fields.TotalSize()
	default:
		panic(fmt.Sprintf("compiler: unhandled type kind %d in Size", t.Kind))
	}
}

// String renders the type the way the symbol table's CSV printer expects:
// INTEGER, CHAR, "ARRAY <n> OF <element>", or "RECORD" (a record's fields
// are printed separately, by SymbolTable.Print).
func (t *Type) String() string {
	switch t.Kind {
	case PrimitiveType:
		return t.Name
	case ArrayType:
		return fmt.Sprintf("ARRAY %d OF %s", t.Length, t.Element.String())
	case RecordType:
		return "RECORD"
	default:
		panic(fmt.Sprintf("compiler: unhandled type kind %d in String", t.Kind))
	}
}
